package compiler

import (
	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
	"github.com/llehouerou/skylark-graphql/types"
)

// RelationshipsOptions page through the relationships of one object.
type RelationshipsOptions struct {
	UID      string
	Language string
	// Relationships restricts the listed relationships; empty lists all.
	Relationships []string
	// NextTokens holds the cursor of each relationship by name.
	NextTokens         map[string]string
	Limit              int
	IgnoreAvailability *bool
}

// CompileRelationshipsQuery compiles GET_<T>_RELATIONSHIPS. Each
// relationship is paged on its own cursor, $<relationship>NextToken.
func (c *Compiler) CompileRelationshipsQuery(meta *schema.ObjectTypeMeta, opts RelationshipsOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || len(meta.Relationships) == 0 {
		return nil, nil
	}
	rels := meta.Relationships
	if len(opts.Relationships) > 0 {
		rels = make([]schema.Relationship, 0, len(opts.Relationships))
		seen := make(map[string]bool, len(opts.Relationships))
		for _, name := range opts.Relationships {
			rel, ok := meta.Relationship(name)
			if !ok {
				return nil, compileErr(ErrUnknownRelationship, meta.Name, name, "")
			}
			if !seen[name] {
				seen[name] = true
				rels = append(rels, rel)
			}
		}
	}

	b := newBuilder(document.Query, "GET_"+meta.Name+"_RELATIONSHIPS")
	selection := document.SelectionSet{document.Leaf(types.UIDField)}
	limit := c.limit(opts.Limit)
	for _, rel := range rels {
		objects, err := c.targetSelection(rel.ObjectType)
		if err != nil {
			return nil, err
		}
		field := pagedField(rel.Name, limit, objects)
		b.bind(field, cursorFragment(rel.Name+"NextToken", opts.NextTokens[rel.Name]))
		selection = append(selection, field)
	}

	root := rootField("getObjectRelationships", meta.Operations.Get, selection)
	c.bindGetRoot(b, root, meta, opts.UID, "", opts.Language, opts.IgnoreAvailability)
	b.add(root)
	return b.finish()
}

// PageOptions page through one listing of one object.
type PageOptions struct {
	UID                string
	Language           string
	NextToken          string
	Limit              int
	IgnoreAvailability *bool
}

// CompileContentQuery compiles GET_<T>_CONTENT: the positioned content of a
// set-like object. Items may be of any content type, so each type is an
// aliased inline fragment. Item order is given by position only.
func (c *Compiler) CompileContentQuery(meta *schema.ObjectTypeMeta, opts PageOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || !meta.HasContent || len(meta.ContentTypes) == 0 {
		return nil, nil
	}
	objects, err := c.objectsNamed(meta.ContentTypes)
	if err != nil {
		return nil, err
	}
	itemObject, err := polymorphicSelection(objects, keySet{})
	if err != nil {
		return nil, err
	}

	b := newBuilder(document.Query, "GET_"+meta.Name+"_CONTENT")
	content := contentField(c.limit(opts.Limit), document.SelectionSet{
		document.Leaf("position"),
		document.Object("object", itemObject...),
	})
	b.bind(content, cursorFragment(nextTokenVar, opts.NextToken))

	root := rootField("getObjectContent", meta.Operations.Get, document.SelectionSet{
		document.Leaf(types.UIDField),
		content,
	})
	c.bindGetRoot(b, root, meta, opts.UID, "", opts.Language, opts.IgnoreAvailability)
	b.add(root)
	return b.finish()
}

// contentField returns content(order: ASC, limit: n) with the page shape.
func contentField(limit int, items document.SelectionSet) *document.Field {
	return &document.Field{
		Name: "content",
		Arguments: []document.Argument{
			{Name: orderArg, Value: document.EnumValue("ASC")},
			{Name: limitArg, Value: document.IntValue(limit)},
		},
		SelectionSet: listing(items),
	}
}

// CompileContentOfQuery compiles GET_<T>_CONTENT_OF: the sets an object is
// content of.
func (c *Compiler) CompileContentOfQuery(meta *schema.ObjectTypeMeta, opts PageOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || !meta.HasContentOf {
		return nil, nil
	}
	objects, err := c.targetSelection(types.SetType)
	if err != nil {
		return nil, err
	}

	b := newBuilder(document.Query, "GET_"+meta.Name+"_CONTENT_OF")
	contentOf := pagedField("content_of", c.limit(opts.Limit), objects)
	b.bind(contentOf, cursorFragment(nextTokenVar, opts.NextToken))

	root := rootField("getObjectContentOf", meta.Operations.Get, document.SelectionSet{
		document.Leaf(types.UIDField),
		contentOf,
	})
	c.bindGetRoot(b, root, meta, opts.UID, "", opts.Language, opts.IgnoreAvailability)
	b.add(root)
	return b.finish()
}
