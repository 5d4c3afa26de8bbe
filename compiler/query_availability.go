package compiler

import (
	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
	"github.com/llehouerou/skylark-graphql/types"
)

// dimensionFields are selected on dimensions and dimension values, which
// are not Metadata types and so have no extracted field table.
var dimensionFields = []string{types.UIDField, "title", "slug", "description"}

// CompileAvailabilityQuery compiles GET_<T>_AVAILABILITY: the availability
// rules attached to one object. The availability listing is never language
// scoped, so opts.Language is ignored.
func (c *Compiler) CompileAvailabilityQuery(meta *schema.ObjectTypeMeta, opts PageOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || !meta.HasAvailability {
		return nil, nil
	}
	objects, err := c.targetSelection(types.AvailabilityType)
	if err != nil {
		return nil, err
	}
	return c.compileObjectListing(meta, opts, "GET_"+meta.Name+"_AVAILABILITY", "getObjectAvailability", "availability", objects)
}

// CompileAvailabilityDimensionsQuery compiles GET_<T>_DIMENSIONS: the
// dimensions an availability rule is scoped to, each with its values.
func (c *Compiler) CompileAvailabilityDimensionsQuery(meta *schema.ObjectTypeMeta, opts PageOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || !meta.HasDimensions {
		return nil, nil
	}
	limit := c.limit(opts.Limit)
	objects := append(document.Leaves(dimensionFields...),
		pagedField("values", limit, document.Leaves(dimensionFields...)))
	return c.compileObjectListing(meta, opts, "GET_"+meta.Name+"_DIMENSIONS", "getAvailabilityDimensions", "dimensions", objects)
}

// CompileAvailabilitySegmentsQuery compiles GET_<T>_SEGMENTS: the audience
// segments an availability rule is scoped to.
func (c *Compiler) CompileAvailabilitySegmentsQuery(meta *schema.ObjectTypeMeta, opts PageOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || !meta.HasSegments {
		return nil, nil
	}
	objects, err := c.targetSelection(types.AudienceSegmentType)
	if err != nil {
		return nil, err
	}
	return c.compileObjectListing(meta, opts, "GET_"+meta.Name+"_SEGMENTS", "getAvailabilitySegments", "segments", objects)
}

// compileObjectListing compiles "alias: get<T>(…){uid listing(…){…}}" for
// a listing paged on $nextToken.
func (c *Compiler) compileObjectListing(meta *schema.ObjectTypeMeta, opts PageOptions, name, alias, field string, objects document.SelectionSet) (*Compiled, error) {
	b := newBuilder(document.Query, name)
	list := pagedField(field, c.limit(opts.Limit), objects)
	b.bind(list, cursorFragment(nextTokenVar, opts.NextToken))

	root := rootField(alias, meta.Operations.Get, document.SelectionSet{
		document.Leaf(types.UIDField),
		list,
	})
	c.bindGetRoot(b, root, meta, opts.UID, "", "", opts.IgnoreAvailability)
	b.add(root)
	return b.finish()
}
