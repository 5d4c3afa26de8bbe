package compiler

import (
	"strings"

	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
)

// SearchOptions parameterize a free-text search.
type SearchOptions struct {
	Query    string
	Language string
	Offset   int
	Limit    int
	// ObjectTypes restricts the searched types; empty searches all.
	ObjectTypes []string
	Filters     SearchFilters
}

// CompileSearchQuery compiles SEARCH (or SEARCH_<T1>_<T2>… when restricted
// to some types). Results are polymorphic, so each type is an aliased
// inline fragment branch.
func (c *Compiler) CompileSearchQuery(opts SearchOptions) (*Compiled, error) {
	op := c.search()
	if op == nil {
		return nil, nil
	}
	objects, err := c.objectsNamed(opts.ObjectTypes)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	results, err := polymorphicSelection(objects, keySet{})
	if err != nil {
		return nil, err
	}

	name := "SEARCH"
	if len(opts.ObjectTypes) > 0 {
		name += "_" + joinNames(objects)
	}
	b := newBuilder(document.Query, name)
	root := rootField("search", op, document.SelectionSet{
		document.Leaf("total_count"),
		document.Object("objects", results...),
	})
	if arg, ok := op.Argument("query"); ok {
		b.bind(root, binding{
			variable: document.VariableDefinition{Name: "queryString", Type: arg.Type},
			argument: "query",
			value:    opts.Query,
		})
	}
	if arg, ok := op.Argument("offset"); ok {
		b.bind(root, binding{
			variable: document.VariableDefinition{Name: "offset", Type: arg.Type},
			argument: "offset",
			value:    opts.Offset,
		})
	}
	if arg, ok := op.Argument(limitArg); ok {
		b.bind(root, binding{
			variable: document.VariableDefinition{Name: "limit", Type: arg.Type},
			argument: limitArg,
			value:    c.limit(opts.Limit),
		})
	}
	b.bind(root, languageFragment("", op, opts.Language)...)
	b.bind(root, searchAvailabilityFragment(op, opts.Filters)...)
	b.add(root)
	return b.finish()
}

// ListOptions page through several object types in one request.
type ListOptions struct {
	ObjectTypes []string
	// NextTokens holds the cursor of each object type by name.
	NextTokens map[string]string
	Language   string
	Limit      int
	// Fields restricts the selected fields of every type; empty selects
	// all of them.
	Fields []string
}

// CompileListQuery compiles LIST_<T1>_<T2>…: one root field per object type,
// aliased to the type name and paged on its own $<T>NextToken cursor. Types
// without a list operation are left out; the document is unsupported when
// none remain.
func (c *Compiler) CompileListQuery(opts ListOptions) (*Compiled, error) {
	if len(opts.ObjectTypes) == 0 {
		return nil, nil
	}
	candidates, err := c.objectsNamed(opts.ObjectTypes)
	if err != nil {
		return nil, err
	}
	objects := make([]*schema.ObjectTypeMeta, 0, len(candidates))
	for _, meta := range candidates {
		if meta.Operations.List != nil {
			objects = append(objects, meta)
		}
	}
	if len(objects) == 0 {
		return nil, nil
	}

	b := newBuilder(document.Query, "LIST_"+joinNames(objects))
	limit := c.limit(opts.Limit)
	for _, meta := range objects {
		items, err := objectSelection(meta, opts.Fields)
		if err != nil {
			return nil, err
		}
		op := meta.Operations.List
		root := rootField(meta.Name, op, listing(items))
		if _, ok := op.Argument(limitArg); ok {
			root.Arguments = append(root.Arguments, document.Argument{Name: limitArg, Value: document.IntValue(limit)})
		}
		if _, ok := op.Argument(nextTokenArg); ok {
			b.bind(root, cursorFragment(meta.Name+"NextToken", opts.NextTokens[meta.Name]))
		}
		b.bind(root, languageFragment(meta.Name, op, opts.Language)...)
		b.add(root)
	}
	return b.finish()
}

func joinNames(objects []*schema.ObjectTypeMeta) string {
	names := make([]string, 0, len(objects))
	for _, meta := range objects {
		names = append(names, meta.Name)
	}
	return strings.Join(names, "_")
}
