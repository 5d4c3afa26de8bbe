package compiler

import (
	"github.com/llehouerou/skylark-graphql/document"
)

// Compiled is a document together with the variable values to send with it.
// It holds no references into the schema it was built from.
type Compiled struct {
	Document  *document.Document
	Variables map[string]any
}

// Query returns the rendered document.
func (c *Compiled) Query() string {
	if c == nil || c.Document == nil {
		return ""
	}
	return c.Document.String()
}

// OperationName returns the document's operation name.
func (c *Compiled) OperationName() string {
	if c == nil || c.Document == nil {
		return ""
	}
	return c.Document.Name
}

// builder accumulates one document and its variable values. The first
// binding conflict is kept in err and reported by finish.
type builder struct {
	doc    *document.Document
	values map[string]any
	err    error
}

func newBuilder(op document.OperationType, name string) *builder {
	return &builder{
		doc:    &document.Document{Operation: op, Name: name},
		values: map[string]any{},
	}
}

// binding ties a variable to an argument of a field. A nil value leaves
// the variable unset so its default, or null, applies.
type binding struct {
	variable document.VariableDefinition
	argument string
	value    any
}

// bind declares each binding's variable once and passes it to f. A
// variable shared by several arguments takes the non-null form when any of
// them requires it.
func (b *builder) bind(f *document.Field, bindings ...binding) {
	for _, bd := range bindings {
		if err := b.declare(bd.variable); err != nil {
			if b.err == nil {
				b.err = err
			}
			continue
		}
		f.Arguments = append(f.Arguments, document.Argument{
			Name:  bd.argument,
			Value: document.Variable(bd.variable.Name),
		})
		if bd.value != nil {
			b.values[bd.variable.Name] = bd.value
		}
	}
}

func (b *builder) declare(v document.VariableDefinition) error {
	for i := range b.doc.Variables {
		declared := &b.doc.Variables[i]
		if declared.Name != v.Name {
			continue
		}
		switch {
		case declared.Type == v.Type, declared.Type == v.Type+"!":
		case declared.Type+"!" == v.Type:
			declared.Type = v.Type
		default:
			return compileErr(ErrVariableConflict, "", "$"+v.Name,
				declared.Type+" and "+v.Type)
		}
		return nil
	}
	b.doc.Variables = append(b.doc.Variables, v)
	return nil
}

func (b *builder) add(selections ...document.Selection) {
	b.doc.SelectionSet = append(b.doc.SelectionSet, selections...)
}

func (b *builder) compiled() *Compiled {
	return &Compiled{Document: b.doc, Variables: b.values}
}

// finish returns the compiled document, or the first binding conflict.
func (b *builder) finish() (*Compiled, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.compiled(), nil
}
