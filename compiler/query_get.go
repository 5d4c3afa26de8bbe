package compiler

import (
	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
)

// GetOptions identify one object and shape its selection.
type GetOptions struct {
	UID        string
	ExternalID string
	Language   string
	// IgnoreAvailability overrides the $ignoreAvailability default of true.
	IgnoreAvailability *bool
	// Fields restricts the selected fields; empty selects all of them.
	Fields []string
	// Limit caps the relationship previews.
	Limit int
}

// VersionOptions identify one historical version of an object.
type VersionOptions struct {
	GetOptions
	GlobalVersion   int
	LanguageVersion int
}

const (
	globalVersionArg   = "global_version"
	languageVersionArg = "language_version"
)

// bindGetRoot binds the arguments every per-type get root shares.
func (c *Compiler) bindGetRoot(b *builder, root *document.Field, meta *schema.ObjectTypeMeta, uid, externalID, language string, ignore *bool) {
	op := meta.Operations.Get
	b.bind(root, identifierFragment(op, uid, externalID)...)
	b.bind(root, languageFragment(meta.Name, op, language)...)
	b.bind(root, ignoreAvailabilityFragment(op, true, false, ignore)...)
}

// CompileGetQuery compiles GET_<T>: one object with its fields, images and
// a preview of every relationship. Content and availability are left to
// their own paginated queries.
func (c *Compiler) CompileGetQuery(meta *schema.ObjectTypeMeta, opts GetOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil {
		return nil, nil
	}
	selection, err := objectSelection(meta, opts.Fields)
	if err != nil {
		return nil, err
	}

	limit := c.limit(opts.Limit)
	for _, rel := range meta.Relationships {
		var objects document.SelectionSet
		if meta.Images != nil && rel.Name == meta.Images.Name {
			if objects, err = c.targetSelection(rel.ObjectType); err != nil {
				return nil, err
			}
		} else {
			objects = c.previewSelection(rel.ObjectType)
		}
		selection = append(selection, pagedField(rel.Name, limit, objects))
	}

	b := newBuilder(document.Query, "GET_"+meta.Name)
	root := rootField("getObject", meta.Operations.Get, selection)
	c.bindGetRoot(b, root, meta, opts.UID, opts.ExternalID, opts.Language, opts.IgnoreAvailability)
	b.add(root)
	return b.finish()
}

// CompileGetVersionQuery compiles GET_<T>_VERSION: the object's fields as
// they were at the requested global and language versions. It is
// unsupported when the get root takes no version arguments.
func (c *Compiler) CompileGetVersionQuery(meta *schema.ObjectTypeMeta, opts VersionOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil {
		return nil, nil
	}
	op := meta.Operations.Get
	globalArg, hasGlobal := op.Argument(globalVersionArg)
	languageArg, hasLanguage := op.Argument(languageVersionArg)
	if !hasGlobal && !hasLanguage {
		return nil, nil
	}
	selection, err := objectSelection(meta, opts.Fields)
	if err != nil {
		return nil, err
	}

	b := newBuilder(document.Query, "GET_"+meta.Name+"_VERSION")
	root := rootField("getObject", op, selection)
	c.bindGetRoot(b, root, meta, opts.UID, opts.ExternalID, opts.Language, opts.IgnoreAvailability)
	if hasGlobal {
		b.bind(root, binding{
			variable: document.VariableDefinition{Name: "globalVersion", Type: globalArg.Type},
			argument: globalVersionArg,
			value:    optionalInt(opts.GlobalVersion),
		})
	}
	if hasLanguage {
		b.bind(root, binding{
			variable: document.VariableDefinition{Name: "languageVersion", Type: languageArg.Type},
			argument: languageVersionArg,
			value:    optionalInt(opts.LanguageVersion),
		})
	}
	b.add(root)
	return b.finish()
}

// CompileVersionHistoryQuery compiles GET_<T>_VERSIONS: the language and
// global version history of one object.
func (c *Compiler) CompileVersionHistoryQuery(meta *schema.ObjectTypeMeta, opts GetOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Get == nil || !meta.HasMeta {
		return nil, nil
	}
	b := newBuilder(document.Query, "GET_"+meta.Name+"_VERSIONS")
	root := rootField("getObjectVersions", meta.Operations.Get, document.SelectionSet{
		document.Leaf("uid"),
		versionHistoryFragment(),
	})
	c.bindGetRoot(b, root, meta, opts.UID, opts.ExternalID, opts.Language, opts.IgnoreAvailability)
	b.add(root)
	return b.finish()
}

// GenericGetOptions identify an object whose type is not known yet.
type GenericGetOptions struct {
	UID        string
	ExternalID string
	Language   string
	// ObjectTypes restricts the inline fragment branches; empty means every
	// object type of the schema.
	ObjectTypes []string
}

// CompileGenericGetQuery compiles GET_OBJECT_GENERIC: a lookup across all
// object types with one aliased branch per type. Availability filtering is
// applied by the server, so no $ignoreAvailability is bound.
func (c *Compiler) CompileGenericGetQuery(opts GenericGetOptions) (*Compiled, error) {
	op := c.genericGet()
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
	selection, err := polymorphicSelection(objects, keySet{})
	if err != nil {
		return nil, err
	}

	b := newBuilder(document.Query, "GET_OBJECT_GENERIC")
	root := rootField("getObject", op, selection)
	b.bind(root, identifierFragment(op, opts.UID, opts.ExternalID)...)
	b.bind(root, languageFragment("", op, opts.Language)...)
	b.add(root)
	return b.finish()
}

// objectsNamed resolves names to object types in the given order, dropping
// repeats. Empty names select every object type.
func (c *Compiler) objectsNamed(names []string) ([]*schema.ObjectTypeMeta, error) {
	if c.schema == nil {
		return nil, nil
	}
	if len(names) == 0 {
		return c.schema.Objects, nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]*schema.ObjectTypeMeta, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		meta := c.object(name)
		if meta == nil {
			return nil, compileErr(ErrUnknownObjectType, name, "", "")
		}
		out = append(out, meta)
	}
	return out, nil
}

func optionalInt(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}
