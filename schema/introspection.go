package schema

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// IntrospectionQuery is the standard introspection query. It is the only
// query the extractor needs executed on its behalf.
const IntrospectionQuery = `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    types { ...FullType }
  }
}

fragment FullType on __Type {
  kind
  name
  fields(includeDeprecated: true) {
    name
    args { ...InputValue }
    type { ...TypeRef }
  }
  inputFields { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) { name }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType { kind name }
            }
          }
        }
      }
    }
  }
}`

// Introspection kinds.
const (
	KindScalar      = "SCALAR"
	KindObject      = "OBJECT"
	KindInterface   = "INTERFACE"
	KindUnion       = "UNION"
	KindEnum        = "ENUM"
	KindInputObject = "INPUT_OBJECT"
	KindList        = "LIST"
	KindNonNull     = "NON_NULL"
)

// Introspection is the "__schema" object of an introspection response.
type Introspection struct {
	QueryType    *NamedTypeRef `json:"queryType"`
	MutationType *NamedTypeRef `json:"mutationType"`
	Types        []FullType    `json:"types"`
}

// NamedTypeRef names a root operation type.
type NamedTypeRef struct {
	Name string `json:"name"`
}

// FullType is a complete GraphQL type with the metadata the extractor uses.
type FullType struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Field is a field of an object or interface type.
type Field struct {
	Name string       `json:"name"`
	Args []InputValue `json:"args"`
	Type TypeRef      `json:"type"`
}

// InputValue is an argument or an input object field.
type InputValue struct {
	Name         string  `json:"name"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

// TypeRef is a possibly wrapped type reference.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// EnumValue is a value of an enum type.
type EnumValue struct {
	Name string `json:"name"`
}

// Named returns the innermost named type.
func (t TypeRef) Named() string {
	for cur := &t; cur != nil; cur = cur.OfType {
		if cur.Kind != KindList && cur.Kind != KindNonNull {
			return cur.Name
		}
	}
	return ""
}

// NamedKind returns the kind of the innermost named type.
func (t TypeRef) NamedKind() string {
	for cur := &t; cur != nil; cur = cur.OfType {
		if cur.Kind != KindList && cur.Kind != KindNonNull {
			return cur.Kind
		}
	}
	return ""
}

// IsList reports whether a list wrapper appears anywhere in the reference.
func (t TypeRef) IsList() bool {
	for cur := &t; cur != nil; cur = cur.OfType {
		if cur.Kind == KindList {
			return true
		}
	}
	return false
}

// IsNonNull reports whether the outermost wrapper is NON_NULL.
func (t TypeRef) IsNonNull() bool {
	return t.Kind == KindNonNull
}

// String renders the reference in SDL notation, e.g. "[String!]!".
func (t TypeRef) String() string {
	var b strings.Builder
	writeTypeRef(&b, &t)
	return b.String()
}

func writeTypeRef(b *strings.Builder, t *TypeRef) {
	if t == nil {
		return
	}
	switch t.Kind {
	case KindNonNull:
		writeTypeRef(b, t.OfType)
		b.WriteString("!")
	case KindList:
		b.WriteString("[")
		writeTypeRef(b, t.OfType)
		b.WriteString("]")
	default:
		b.WriteString(t.Name)
	}
}

// ParseIntrospection decodes an introspection result. It accepts a full
// response ({"data":{"__schema":…}}), a data object ({"__schema":…}) or the
// bare schema object.
func ParseIntrospection(data []byte) (*Introspection, error) {
	var envelope struct {
		Data *struct {
			Schema *Introspection `json:"__schema"`
		} `json:"data"`
		Schema *Introspection `json:"__schema"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, errors.Wrap(err, "decoding introspection result")
	}
	switch {
	case envelope.Data != nil && envelope.Data.Schema != nil:
		return envelope.Data.Schema, nil
	case envelope.Schema != nil:
		return envelope.Schema, nil
	}

	var bare Introspection
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, errors.Wrap(err, "decoding introspection schema")
	}
	if bare.QueryType == nil && len(bare.Types) == 0 {
		return nil, errors.Wrap(ErrSchemaIncompatible, "introspection result has no __schema")
	}
	return &bare, nil
}
