// Package jsonutil decodes GraphQL response data that was requested with
// type-scoped aliases.
//
// Polymorphic selections key every field of type T as "__T__field". The
// functions here walk a decoded response and restore the natural field
// names, using each object's own __typename to pick the prefix to strip.
// Objects without a __typename, and keys aliased for a different type, pass
// through unchanged.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/llehouerou/skylark-graphql/internal/aliasparse"
	"github.com/llehouerou/skylark-graphql/types"
)

// UnmarshalGraphQL parses the JSON-encoded GraphQL response data, strips
// type-scoped aliases and stores the result in the value pointed to by v.
func UnmarshalGraphQL(data []byte, v any) error {
	clean, err := Dealias(data)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()
	return dec.Decode(v)
}

// Dealias decodes data, de-aliases every object in it and re-encodes the
// result. Numbers are kept in their original textual form.
func Dealias(data []byte) (json.RawMessage, error) {
	v, err := decode(data)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(DealiasValue(v)); err != nil {
		return nil, fmt.Errorf("failed to encode de-aliased data: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode response data: %w", err)
	}
	tok, err := dec.Token()
	switch err {
	case io.EOF:
		// Expect to get io.EOF. There shouldn't be any more
		// tokens left after we've decoded v successfully.
		return v, nil
	case nil:
		return nil, fmt.Errorf("invalid token '%v' after top-level value", tok)
	default:
		return nil, err
	}
}

// DealiasValue walks a value produced by encoding/json and de-aliases every
// object in it, depth first. Maps are modified in place.
func DealiasValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			v[k] = DealiasValue(child)
		}
		return DealiasObject(v)
	case []any:
		for i, child := range v {
			v[i] = DealiasValue(child)
		}
		return v
	default:
		return v
	}
}

// DealiasObject strips the prefix of obj's __typename from its keys, once.
// Nested values are not visited. An aliased key wins over a natural key of
// the same name.
func DealiasObject(obj map[string]any) map[string]any {
	typename, _ := obj[types.TypenameField].(string)
	if typename == "" {
		return obj
	}
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if _, ok := aliasparse.Strip(k, typename); ok {
			continue
		}
		out[k] = v
	}
	for k, v := range obj {
		if field, ok := aliasparse.Strip(k, typename); ok {
			out[field] = v
		}
	}
	return out
}
