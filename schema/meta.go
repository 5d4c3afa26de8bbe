package schema

import (
	"github.com/llehouerou/skylark-graphql/types"
)

// Partition classifies a field by how it is scoped.
type Partition int

const (
	// System fields are identifiers and bookkeeping shared by every type.
	System Partition = iota
	// Translatable fields carry a value per language.
	Translatable
	// Global fields carry one value for all languages.
	Global
)

func (p Partition) String() string {
	switch p {
	case System:
		return "system"
	case Translatable:
		return "translatable"
	case Global:
		return "global"
	default:
		return "unknown"
	}
}

// FieldMeta describes a selectable scalar or enum field.
type FieldMeta struct {
	Name        string
	GraphQLType string // rendered type, e.g. "[String]" or "Int!"
	IsList      bool
	IsRequired  bool
	EnumValues  []string
	Partition   Partition
	// ReadOnly is set for fields that appear in neither the create nor the
	// global input type. They are classified Global.
	ReadOnly bool
}

// Relationship is a named edge to another object type.
type Relationship struct {
	Name       string
	ObjectType string
}

// Argument is a root field argument with its rendered type.
type Argument struct {
	Name string
	Type string
}

// Operation is a root query or mutation field.
type Operation struct {
	Name      string
	Arguments []Argument
	// InputArgument and InputType name the input object argument of create
	// and update operations; both are empty for other operations.
	InputArgument string
	InputType     string
}

// Argument looks up an argument by name.
func (o *Operation) Argument(name string) (Argument, bool) {
	if o == nil {
		return Argument{}, false
	}
	for _, a := range o.Arguments {
		if a.Name == name {
			return a, true
		}
	}
	return Argument{}, false
}

// ArgumentType returns the declared type of argument name, or fallback when
// the operation does not declare it.
func (o *Operation) ArgumentType(name, fallback string) string {
	if a, ok := o.Argument(name); ok {
		return a.Type
	}
	return fallback
}

// Operations holds the per-type root fields. A nil entry means the type does
// not support the operation.
type Operations struct {
	Get     *Operation
	List    *Operation
	Create  *Operation
	Update  *Operation
	Delete  *Operation
	Publish *Operation
}

// DimensionOperations are the root fields used for dimension lookups.
type DimensionOperations struct {
	List string
	Get  string
}

// ObjectTypeMeta is the normalized metadata of one content object type. It
// is built once by Extract and must not be modified afterwards.
type ObjectTypeMeta struct {
	Name          string
	Fields        []FieldMeta
	Relationships []Relationship
	Operations    Operations

	HasContent      bool
	HasContentOf    bool
	HasAvailability bool
	HasDimensions   bool
	HasSegments     bool
	HasConfig       bool
	HasMeta         bool

	// ContentTypes lists the object types a content listing may hold.
	ContentTypes []string
	// Images is the relationship to the built-in image type, if any.
	Images *Relationship

	fieldIndex map[string]int
	relIndex   map[string]int
}

// Field looks up a field by name.
func (m *ObjectTypeMeta) Field(name string) (FieldMeta, bool) {
	idx, ok := m.fieldIndex[name]
	if !ok {
		return FieldMeta{}, false
	}
	return m.Fields[idx], true
}

// Relationship looks up a relationship by name.
func (m *ObjectTypeMeta) Relationship(name string) (Relationship, bool) {
	idx, ok := m.relIndex[name]
	if !ok {
		return Relationship{}, false
	}
	return m.Relationships[idx], true
}

// FieldsIn returns the fields of partition p in declaration order.
func (m *ObjectTypeMeta) FieldsIn(p Partition) []FieldMeta {
	var out []FieldMeta
	for _, f := range m.Fields {
		if f.Partition == p {
			out = append(out, f)
		}
	}
	return out
}

// IsTranslatable reports whether the type has language-scoped fields. The
// built-in availability type never is.
func (m *ObjectTypeMeta) IsTranslatable() bool {
	if m.Name == types.AvailabilityType {
		return false
	}
	for _, f := range m.Fields {
		if f.Partition == Translatable {
			return true
		}
	}
	return false
}

func (m *ObjectTypeMeta) buildIndexes() {
	m.fieldIndex = make(map[string]int, len(m.Fields))
	for i, f := range m.Fields {
		m.fieldIndex[f.Name] = i
	}
	m.relIndex = make(map[string]int, len(m.Relationships))
	for i, r := range m.Relationships {
		m.relIndex[r.Name] = i
	}
}

// Schema is an immutable snapshot of every object type of one schema
// version. A schema change produces a new Schema; existing snapshots stay
// valid for compilers still using them.
type Schema struct {
	Version string
	// Objects is sorted by name.
	Objects []*ObjectTypeMeta
	// GenericGet looks objects up by uid or external id across all types.
	GenericGet *Operation
	Search     *Operation
	Dimensions *DimensionOperations
	// Warnings collects schema oddities the extractor skipped over.
	Warnings []string

	index map[string]*ObjectTypeMeta
}

// Object looks up object type metadata by name. It is safe on a nil Schema.
func (s *Schema) Object(name string) (*ObjectTypeMeta, bool) {
	if s == nil {
		return nil, false
	}
	m, ok := s.index[name]
	return m, ok
}

// ObjectNames returns the object type names in schema order.
func (s *Schema) ObjectNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Objects))
	for _, o := range s.Objects {
		names = append(names, o.Name)
	}
	return names
}
