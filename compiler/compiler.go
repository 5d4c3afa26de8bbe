// Package compiler synthesizes GraphQL query and mutation documents from
// extracted schema metadata.
//
// Every Compile method is a pure function of its inputs. A nil *Compiled
// with a nil error means the object type does not support the operation;
// callers treat that as a disabled feature. A *CompileError means the
// request names something the schema metadata does not have.
package compiler

import (
	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
	"github.com/llehouerou/skylark-graphql/types"
)

// DefaultPageSize is the listing limit used when a call does not set one.
const DefaultPageSize = 50

// Compiler compiles documents against one schema snapshot. It is safe for
// concurrent use.
type Compiler struct {
	schema   *schema.Schema
	pageSize int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithPageSize sets the default listing limit.
func WithPageSize(n int) Option {
	return func(c *Compiler) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// New returns a compiler for s. A nil schema is allowed; every compiler
// then reports the operation as unsupported.
func New(s *schema.Schema, opts ...Option) *Compiler {
	c := &Compiler{schema: s, pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Schema returns the snapshot the compiler was built for.
func (c *Compiler) Schema() *schema.Schema {
	return c.schema
}

func (c *Compiler) genericGet() *schema.Operation {
	if c.schema == nil {
		return nil
	}
	return c.schema.GenericGet
}

func (c *Compiler) search() *schema.Operation {
	if c.schema == nil {
		return nil
	}
	return c.schema.Search
}

func (c *Compiler) dimensions() *schema.DimensionOperations {
	if c.schema == nil {
		return nil
	}
	return c.schema.Dimensions
}

func (c *Compiler) limit(n int) int {
	if n > 0 {
		return n
	}
	return c.pageSize
}

func (c *Compiler) object(name string) *schema.ObjectTypeMeta {
	m, _ := c.schema.Object(name)
	return m
}

// selectFields returns the field selections of meta, restricted to only
// when it is non-empty. In a polymorphic position every field is keyed
// through AliasFor and claimed in keys.
func selectFields(meta *schema.ObjectTypeMeta, only []string, polymorphic bool, keys keySet) (document.SelectionSet, error) {
	names := make([]string, 0, len(meta.Fields))
	if len(only) == 0 {
		for _, f := range meta.Fields {
			names = append(names, f.Name)
		}
	} else {
		for _, name := range only {
			if _, ok := meta.Field(name); !ok {
				return nil, compileErr(ErrUnknownField, meta.Name, name, "")
			}
			names = append(names, name)
		}
	}

	set := make(document.SelectionSet, 0, len(names)+2)
	for _, name := range names {
		f := document.Leaf(name)
		if polymorphic {
			f.Alias = AliasFor(meta.Name, name)
			if err := keys.claim(f.ResponseKey(), meta.Name, name); err != nil {
				return nil, err
			}
		}
		set = append(set, f)
	}
	if meta.HasConfig {
		set = append(set, configFragment())
	}
	if meta.HasMeta {
		set = append(set, systemMetadataFragment())
	}
	return set, nil
}

// objectSelection selects a single known object type without aliases.
func objectSelection(meta *schema.ObjectTypeMeta, only []string) (document.SelectionSet, error) {
	fields, err := selectFields(meta, only, false, nil)
	if err != nil {
		return nil, err
	}
	return append(document.SelectionSet{document.Leaf(types.TypenameField)}, fields...), nil
}

// previewSelection selects the identifiers of objectType, with the system
// metadata block when the type is known and has one. Unknown targets get
// the identifiers only.
func (c *Compiler) previewSelection(objectType string) document.SelectionSet {
	set := document.Leaves(types.TypenameField, types.UIDField, types.ExternalIDField)
	if target := c.object(objectType); target != nil && target.HasMeta {
		set = append(set, systemMetadataFragment())
	}
	return set
}

// targetSelection selects the objects of a listing targeting objectType.
func (c *Compiler) targetSelection(objectType string) (document.SelectionSet, error) {
	target := c.object(objectType)
	if target == nil {
		return c.previewSelection(objectType), nil
	}
	return objectSelection(target, nil)
}

// polymorphicSelection returns "__typename" followed by one inline fragment
// per object type, all sharing one set of response keys.
func polymorphicSelection(objects []*schema.ObjectTypeMeta, keys keySet) (document.SelectionSet, error) {
	set := document.SelectionSet{document.Leaf(types.TypenameField)}
	for _, meta := range objects {
		fields, err := selectFields(meta, nil, true, keys)
		if err != nil {
			return nil, err
		}
		set = append(set, &document.InlineFragment{TypeCondition: meta.Name, SelectionSet: fields})
	}
	return set, nil
}

// listing wraps objects in the "{next_token objects{…}}" page shape.
func listing(objects document.SelectionSet) document.SelectionSet {
	return document.SelectionSet{
		document.Leaf(nextTokenArg),
		document.Object("objects", objects...),
	}
}

// pagedField returns name(limit: n) with the page shape; callers bind the
// cursor.
func pagedField(name string, limit int, objects document.SelectionSet) *document.Field {
	return &document.Field{
		Name:         name,
		Arguments:    []document.Argument{{Name: limitArg, Value: document.IntValue(limit)}},
		SelectionSet: listing(objects),
	}
}

// rootField returns the operation's root field under alias.
func rootField(alias string, op *schema.Operation, selections document.SelectionSet) *document.Field {
	return &document.Field{Alias: alias, Name: op.Name, SelectionSet: selections}
}
