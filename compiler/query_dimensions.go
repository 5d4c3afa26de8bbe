package compiler

import (
	"strings"

	"github.com/llehouerou/skylark-graphql/document"
)

// DimensionsOptions page through the dimensions of the account.
type DimensionsOptions struct {
	NextToken string
	Limit     int
}

// CompileDimensionsQuery compiles LIST_DIMENSIONS.
func (c *Compiler) CompileDimensionsQuery(opts DimensionsOptions) (*Compiled, error) {
	ops := c.dimensions()
	if ops == nil {
		return nil, nil
	}
	b := newBuilder(document.Query, "LIST_DIMENSIONS")
	root := &document.Field{
		Name:         ops.List,
		Arguments:    []document.Argument{{Name: limitArg, Value: document.IntValue(c.limit(opts.Limit))}},
		SelectionSet: listing(document.Leaves(dimensionFields...)),
	}
	b.bind(root, cursorFragment(nextTokenVar, opts.NextToken))
	b.add(root)
	return b.finish()
}

// DimensionValuesOptions page through the values of several dimensions at
// once.
type DimensionValuesOptions struct {
	// Dimensions lists dimension uids.
	Dimensions []string
	// NextTokens holds the cursor of each dimension by uid.
	NextTokens map[string]string
	Limit      int
}

// CompileDimensionValuesQuery compiles LIST_DIMENSION_VALUES: one root field
// per dimension, aliased dimension_<uid>, each paged on its own
// $<alias>NextToken cursor.
func (c *Compiler) CompileDimensionValuesQuery(opts DimensionValuesOptions) (*Compiled, error) {
	ops := c.dimensions()
	if ops == nil || len(opts.Dimensions) == 0 {
		return nil, nil
	}
	b := newBuilder(document.Query, "LIST_DIMENSION_VALUES")
	keys := keySet{}
	seen := make(map[string]bool, len(opts.Dimensions))
	limit := c.limit(opts.Limit)
	for _, uid := range opts.Dimensions {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		alias := DimensionAlias(uid)
		if err := keys.claim(alias, "Dimension", uid); err != nil {
			return nil, err
		}
		values := pagedField("values", limit, document.Leaves(dimensionFields...))
		b.bind(values, cursorFragment(alias+"NextToken", opts.NextTokens[uid]))
		b.add(&document.Field{
			Alias:     alias,
			Name:      ops.Get,
			Arguments: []document.Argument{{Name: uidArg, Value: document.StringValue(uid)}},
			SelectionSet: document.SelectionSet{
				document.Leaf(uidArg),
				values,
			},
		})
	}
	return b.finish()
}

// DimensionAlias is the root alias of a dimension's values. Characters
// outside [_0-9A-Za-z] are replaced with "_".
func DimensionAlias(uid string) string {
	return "dimension_" + strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		}
		return '_'
	}, uid)
}
