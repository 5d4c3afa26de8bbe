package compiler

import (
	"sort"

	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
	"github.com/llehouerou/skylark-graphql/types"
)

// Input fields of an update carrying linked entities.
const (
	contentInput       = "content"
	relationshipsInput = "relationships"
	availabilityInput  = "availability"
	dimensionsInput    = "dimensions"
	segmentsInput      = "segments"
)

// ContentUpdateOptions carry the current and desired content of a set.
type ContentUpdateOptions struct {
	UID string
	// Current and Desired are ordered; every Ref needs its ObjectType.
	Current []Ref
	Desired []Ref
	// Limit caps the content returned by the mutation.
	Limit int
}

// CompileUpdateContentMutation compiles UPDATE_OBJECT_CONTENT_<T>. The
// desired list is emitted in full with positions 1..N so that order never
// depends on what the server held before.
func (c *Compiler) CompileUpdateContentMutation(meta *schema.ObjectTypeMeta, opts ContentUpdateOptions) (*Compiled, error) {
	op := updateOperation(meta)
	if op == nil || !meta.HasContent {
		return nil, nil
	}
	allowed := make(map[string]bool, len(meta.ContentTypes))
	for _, t := range meta.ContentTypes {
		allowed[t] = true
	}
	for _, refs := range [][]Ref{opts.Current, opts.Desired} {
		for _, r := range refs {
			if r.UID == "" {
				return nil, compileErr(ErrMalformedDiff, meta.Name, contentInput, "content item has no uid")
			}
			if !allowed[r.ObjectType] {
				return nil, compileErr(ErrUnknownObjectType, r.ObjectType, "", "not a content type of "+meta.Name)
			}
		}
	}

	objects, err := c.objectsNamed(meta.ContentTypes)
	if err != nil {
		return nil, err
	}
	itemObject := document.SelectionSet{document.Leaf(types.TypenameField)}
	for _, o := range objects {
		itemObject = append(itemObject, &document.InlineFragment{
			TypeCondition: o.Name,
			SelectionSet:  document.Leaves(types.UIDField),
		})
	}
	selection := document.SelectionSet{
		document.Leaf(types.UIDField),
		contentField(c.limit(opts.Limit), document.SelectionSet{
			document.Leaf("position"),
			document.Object("object", itemObject...),
		}),
	}

	diff := ComputeContentDiff(opts.Current, opts.Desired)
	return c.compileLinkMutation(meta, op, "UPDATE_OBJECT_CONTENT_", "updateObjectContent", opts.UID,
		map[string]any{contentInput: diff}, selection), nil
}

// RelationshipUpdateOptions carry relationship state keyed by relationship
// name. Diffs, when set for a name, is used as is instead of diffing
// Current against Desired.
type RelationshipUpdateOptions struct {
	UID     string
	Current map[string][]string
	Desired map[string][]string
	Diffs   map[string]DiffSet
}

// CompileUpdateRelationshipsMutation compiles
// UPDATE_OBJECT_RELATIONSHIPS_<T>. Only relationships with changes are
// sent.
func (c *Compiler) CompileUpdateRelationshipsMutation(meta *schema.ObjectTypeMeta, opts RelationshipUpdateOptions) (*Compiled, error) {
	op := updateOperation(meta)
	if op == nil || len(meta.Relationships) == 0 {
		return nil, nil
	}
	names := map[string]bool{}
	for _, m := range []map[string][]string{opts.Current, opts.Desired} {
		for name := range m {
			names[name] = true
		}
	}
	for name := range opts.Diffs {
		names[name] = true
	}
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	changes := make(map[string]LinkChanges, len(ordered))
	for _, name := range ordered {
		if _, ok := meta.Relationship(name); !ok {
			return nil, compileErr(ErrUnknownRelationship, meta.Name, name, "")
		}
		d, ok := opts.Diffs[name]
		if !ok {
			d = ComputeDiff(UIDRefs(opts.Current[name]), UIDRefs(opts.Desired[name]))
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if !d.IsEmpty() {
			changes[name] = linkChanges(d)
		}
	}
	return c.compileLinkMutation(meta, op, "UPDATE_OBJECT_RELATIONSHIPS_", "updateObjectRelationships", opts.UID,
		map[string]any{relationshipsInput: changes}, document.Leaves(types.UIDField)), nil
}

// LinkUpdateOptions carry a flat list of linked uids. Diff, when set, is
// used as is instead of diffing Current against Desired.
type LinkUpdateOptions struct {
	UID     string
	Current []string
	Desired []string
	Diff    *DiffSet
}

func (o LinkUpdateOptions) diff() (DiffSet, error) {
	d := ComputeDiff(UIDRefs(o.Current), UIDRefs(o.Desired))
	if o.Diff != nil {
		d = *o.Diff
	}
	return d, d.Validate()
}

// CompileUpdateAvailabilityMutation compiles UPDATE_OBJECT_AVAILABILITY_<T>:
// availability rules linked to or unlinked from an object.
func (c *Compiler) CompileUpdateAvailabilityMutation(meta *schema.ObjectTypeMeta, opts LinkUpdateOptions) (*Compiled, error) {
	op := updateOperation(meta)
	if op == nil || !meta.HasAvailability {
		return nil, nil
	}
	d, err := opts.diff()
	if err != nil {
		return nil, err
	}
	return c.compileLinkMutation(meta, op, "UPDATE_OBJECT_AVAILABILITY_", "updateObjectAvailability", opts.UID,
		map[string]any{availabilityInput: linkChanges(d)}, document.Leaves(types.UIDField)), nil
}

// CompileUpdateAudienceSegmentsMutation compiles
// UPDATE_AVAILABILITY_SEGMENTS_<T>.
func (c *Compiler) CompileUpdateAudienceSegmentsMutation(meta *schema.ObjectTypeMeta, opts LinkUpdateOptions) (*Compiled, error) {
	op := updateOperation(meta)
	if op == nil || !meta.HasSegments {
		return nil, nil
	}
	d, err := opts.diff()
	if err != nil {
		return nil, err
	}
	return c.compileLinkMutation(meta, op, "UPDATE_AVAILABILITY_SEGMENTS_", "updateAvailabilitySegments", opts.UID,
		map[string]any{segmentsInput: linkChanges(d)}, document.Leaves(types.UIDField)), nil
}

// DimensionUpdateOptions carry dimension assignments as dimension slug to
// value slugs.
type DimensionUpdateOptions struct {
	UID     string
	Current map[string][]string
	Desired map[string][]string
}

// CompileUpdateAvailabilityDimensionsMutation compiles
// UPDATE_AVAILABILITY_DIMENSIONS_<T>.
func (c *Compiler) CompileUpdateAvailabilityDimensionsMutation(meta *schema.ObjectTypeMeta, opts DimensionUpdateOptions) (*Compiled, error) {
	op := updateOperation(meta)
	if op == nil || !meta.HasDimensions {
		return nil, nil
	}
	changes := ComputeDimensionDiff(opts.Current, opts.Desired)
	return c.compileLinkMutation(meta, op, "UPDATE_AVAILABILITY_DIMENSIONS_", "updateAvailabilityDimensions", opts.UID,
		map[string]any{dimensionsInput: changes}, document.Leaves(types.UIDField)), nil
}

func updateOperation(meta *schema.ObjectTypeMeta) *schema.Operation {
	if meta == nil || meta.Operations.Update == nil || meta.Operations.Update.InputArgument == "" {
		return nil
	}
	return meta.Operations.Update
}

func (c *Compiler) compileLinkMutation(meta *schema.ObjectTypeMeta, op *schema.Operation, prefix, alias, uid string, input map[string]any, selection document.SelectionSet) *Compiled {
	b := newBuilder(document.Mutation, prefix+meta.Name)
	root := rootField(alias, op, selection)
	b.bind(root, uidFragment(op, uid), inputFragment(op, input))
	b.add(root)
	return b.compiled()
}
