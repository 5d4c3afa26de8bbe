package document

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/llehouerou/skylark-graphql/types"
)

// String renders the document as minified GraphQL.
//
// E.g. "query GET_Episode($uid:String){getObject:getEpisode(uid:$uid){uid}}".
func (d *Document) String() string {
	var buf bytes.Buffer
	d.WriteTo(&buf)
	return buf.String()
}

// WriteTo writes the minified document to w. Rendering never fails for a
// tree built from this package's node types; write errors are reported
// through the returned count only, like the other writers here.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	op := d.Operation
	if op == "" {
		op = Query
	}
	_, _ = io.WriteString(cw, string(op))
	if d.Name != "" {
		_, _ = io.WriteString(cw, " ")
		_, _ = io.WriteString(cw, d.Name)
	}
	if len(d.Variables) > 0 {
		_, _ = io.WriteString(cw, "(")
		writeVariableDefinitions(cw, d.Variables)
		_, _ = io.WriteString(cw, ")")
	}
	writeSelectionSet(cw, d.SelectionSet)
	return cw.n, cw.err
}

// writeSelectionSet writes "{a,b{c}}". GraphQL has no empty selection
// sets, so an empty set falls back to selecting __typename.
func writeSelectionSet(w io.Writer, set SelectionSet) {
	_, _ = io.WriteString(w, "{")
	if len(set) == 0 {
		_, _ = io.WriteString(w, types.TypenameField)
		_, _ = io.WriteString(w, "}")
		return
	}
	for i, sel := range set {
		if i != 0 {
			_, _ = io.WriteString(w, ",")
		}
		writeSelection(w, sel)
	}
	_, _ = io.WriteString(w, "}")
}

func writeSelection(w io.Writer, sel Selection) {
	switch s := sel.(type) {
	case *Field:
		writeField(w, s)
	case *InlineFragment:
		_, _ = io.WriteString(w, types.FragmentOnPrefix)
		_, _ = io.WriteString(w, s.TypeCondition)
		writeSelectionSet(w, s.SelectionSet)
	}
}

func writeField(w io.Writer, f *Field) {
	if f.Alias != "" && f.Alias != f.Name {
		_, _ = io.WriteString(w, f.Alias)
		_, _ = io.WriteString(w, ":")
	}
	_, _ = io.WriteString(w, f.Name)
	if len(f.Arguments) > 0 {
		_, _ = io.WriteString(w, "(")
		for i, arg := range f.Arguments {
			if i != 0 {
				_, _ = io.WriteString(w, ",")
			}
			_, _ = io.WriteString(w, arg.Name)
			_, _ = io.WriteString(w, ":")
			writeValue(w, arg.Value)
		}
		_, _ = io.WriteString(w, ")")
	}
	if f.SelectionSet != nil {
		writeSelectionSet(w, f.SelectionSet)
	}
}

// writeValue writes a GraphQL literal. A nil value is written as null.
func writeValue(w io.Writer, v Value) {
	switch val := v.(type) {
	case Variable:
		_, _ = io.WriteString(w, "$")
		_, _ = io.WriteString(w, string(val))
	case StringValue:
		_, _ = io.WriteString(w, quote(string(val)))
	case IntValue:
		_, _ = io.WriteString(w, strconv.Itoa(int(val)))
	case BooleanValue:
		_, _ = io.WriteString(w, strconv.FormatBool(bool(val)))
	case EnumValue:
		_, _ = io.WriteString(w, string(val))
	case ListValue:
		_, _ = io.WriteString(w, "[")
		for i, item := range val {
			if i != 0 {
				_, _ = io.WriteString(w, ",")
			}
			writeValue(w, item)
		}
		_, _ = io.WriteString(w, "]")
	case ObjectValue:
		_, _ = io.WriteString(w, "{")
		for i, field := range val {
			if i != 0 {
				_, _ = io.WriteString(w, ",")
			}
			_, _ = io.WriteString(w, field.Name)
			_, _ = io.WriteString(w, ":")
			writeValue(w, field.Value)
		}
		_, _ = io.WriteString(w, "}")
	default:
		_, _ = io.WriteString(w, "null")
	}
}

// quote escapes s as a GraphQL string. JSON string escapes are a subset of
// the GraphQL ones.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
