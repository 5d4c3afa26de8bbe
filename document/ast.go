// Package document holds the explicit GraphQL AST produced by the compilers
// and turns it into query text and parsed gqlparser documents.
//
// The tree is built from a small closed set of node types. A Selection is
// either a *Field or an *InlineFragment, and a Value is one of Variable,
// StringValue, IntValue, BooleanValue, EnumValue, ListValue or ObjectValue.
// Both interfaces carry unexported marker methods, so no other type can be
// placed in a tree.
package document

// OperationType is the root operation kind of a document.
type OperationType string

const (
	Query    OperationType = "query"
	Mutation OperationType = "mutation"
)

// Document is a single named GraphQL operation.
type Document struct {
	Operation    OperationType
	Name         string
	Variables    []VariableDefinition
	SelectionSet SelectionSet
}

// VariableDefinition declares "$Name: Type = Default". Default may be nil.
type VariableDefinition struct {
	Name    string
	Type    string
	Default Value
}

// SelectionSet is an ordered list of selections.
type SelectionSet []Selection

// Selection is a field or an inline fragment.
type Selection interface {
	isSelection()
}

// Field selects Name, optionally under Alias, with arguments and a nested
// selection set. A nil SelectionSet marks a leaf.
type Field struct {
	Alias        string
	Name         string
	Arguments    []Argument
	SelectionSet SelectionSet
}

// ResponseKey is the key the field occupies in the response.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// InlineFragment is a "... on TypeCondition" branch.
type InlineFragment struct {
	TypeCondition string
	SelectionSet  SelectionSet
}

func (*Field) isSelection()          {}
func (*InlineFragment) isSelection() {}

// Argument passes Value to the argument Name.
type Argument struct {
	Name  string
	Value Value
}

// Value is an argument or default value.
type Value interface {
	isValue()
}

type (
	// Variable references "$name".
	Variable string
	// StringValue is a quoted string literal.
	StringValue string
	// IntValue is an integer literal.
	IntValue int
	// BooleanValue is true or false.
	BooleanValue bool
	// EnumValue is a bare enum literal such as ASC.
	EnumValue string
	// ListValue is a list literal.
	ListValue []Value
	// ObjectValue is an input object literal with ordered fields.
	ObjectValue []ObjectField
)

// ObjectField is one "name: value" entry of an ObjectValue.
type ObjectField struct {
	Name  string
	Value Value
}

func (Variable) isValue()     {}
func (StringValue) isValue()  {}
func (IntValue) isValue()     {}
func (BooleanValue) isValue() {}
func (EnumValue) isValue()    {}
func (ListValue) isValue()    {}
func (ObjectValue) isValue()  {}

// Leaf returns a field without a sub-selection.
func Leaf(name string) *Field {
	return &Field{Name: name}
}

// Leaves returns one leaf per name, in order.
func Leaves(names ...string) SelectionSet {
	set := make(SelectionSet, 0, len(names))
	for _, n := range names {
		set = append(set, Leaf(n))
	}
	return set
}

// Object returns a field with the given sub-selection.
func Object(name string, selections ...Selection) *Field {
	return &Field{Name: name, SelectionSet: selections}
}
