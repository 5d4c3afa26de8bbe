// Package schema turns a GraphQL introspection result into normalized
// per-object-type metadata.
//
// Content types are the possible types of the Metadata interface. Their
// operations, fields, relationships and capabilities are found by naming
// convention; see Conventions.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/llehouerou/skylark-graphql/types"
)

// ErrSchemaIncompatible is returned when the introspection result lacks the
// shapes the extractor relies on.
var ErrSchemaIncompatible = errors.New("schema incompatible")

// Conventions are the names the extractor looks for.
type Conventions struct {
	MetadataInterface   string `mapstructure:"metadata_interface"`
	GlobalInputSuffix   string `mapstructure:"global_input_suffix"`
	GenericGetField     string `mapstructure:"generic_get_field"`
	SearchField         string `mapstructure:"search_field"`
	ListDimensionsField string `mapstructure:"list_dimensions_field"`
	GetDimensionField   string `mapstructure:"get_dimension_field"`
}

// DefaultConventions returns the conventions of a Skylark deployment.
func DefaultConventions() Conventions {
	return Conventions{
		MetadataInterface:   "Metadata",
		GlobalInputSuffix:   "GlobalInput",
		GenericGetField:     "getObject",
		SearchField:         "search",
		ListDimensionsField: "listDimensions",
		GetDimensionField:   "getDimension",
	}
}

// withDefaults fills empty names from DefaultConventions.
func (c Conventions) withDefaults() Conventions {
	d := DefaultConventions()
	if c.MetadataInterface == "" {
		c.MetadataInterface = d.MetadataInterface
	}
	if c.GlobalInputSuffix == "" {
		c.GlobalInputSuffix = d.GlobalInputSuffix
	}
	if c.GenericGetField == "" {
		c.GenericGetField = d.GenericGetField
	}
	if c.SearchField == "" {
		c.SearchField = d.SearchField
	}
	if c.ListDimensionsField == "" {
		c.ListDimensionsField = d.ListDimensionsField
	}
	if c.GetDimensionField == "" {
		c.GetDimensionField = d.GetDimensionField
	}
	return c
}

// Object fields that carry capabilities rather than values.
const (
	relationshipsInputField = "relationships"
	listingObjectsField     = "objects"
	contentField            = "content"
	contentItemObjectField  = "object"
	contentOfField          = "content_of"
	availabilityField       = "availability"
	dimensionsField         = "dimensions"
	segmentsField           = "segments"
	configField             = "_config"
	metaField               = "_meta"
)

// Root field prefixes, e.g. "get" + "Episode".
const (
	getPrefix     = "get"
	listPrefix    = "list"
	createPrefix  = "create"
	updatePrefix  = "update"
	deletePrefix  = "delete"
	publishPrefix = "publish"
)

type extractor struct {
	conv     Conventions
	types    map[string]*FullType
	query    map[string]*Field
	mutation map[string]*Field
	metadata map[string]bool
	warnings []string
}

// Extract builds a Schema from an introspection result using conv. Empty
// convention names fall back to DefaultConventions.
func Extract(in *Introspection, conv Conventions) (*Schema, error) {
	if in == nil {
		return nil, errors.Wrap(ErrSchemaIncompatible, "no introspection result")
	}
	ex := &extractor{
		conv:     conv.withDefaults(),
		types:    make(map[string]*FullType, len(in.Types)),
		metadata: make(map[string]bool),
	}
	for i := range in.Types {
		ex.types[in.Types[i].Name] = &in.Types[i]
	}

	if in.QueryType == nil {
		return nil, errors.Wrap(ErrSchemaIncompatible, "schema has no query type")
	}
	queryType, ok := ex.types[in.QueryType.Name]
	if !ok {
		return nil, errors.Wrapf(ErrSchemaIncompatible, "query type %q is not defined", in.QueryType.Name)
	}
	ex.query = fieldsByName(queryType.Fields)
	ex.mutation = map[string]*Field{}
	if in.MutationType != nil {
		if mutationType, ok := ex.types[in.MutationType.Name]; ok {
			ex.mutation = fieldsByName(mutationType.Fields)
		}
	}

	iface, ok := ex.types[ex.conv.MetadataInterface]
	if !ok || iface.Kind != KindInterface {
		return nil, errors.Wrapf(ErrSchemaIncompatible, "interface %q is not defined", ex.conv.MetadataInterface)
	}
	if len(iface.PossibleTypes) == 0 {
		return nil, errors.Wrapf(ErrSchemaIncompatible, "interface %q has no possible types", ex.conv.MetadataInterface)
	}

	names := make([]string, 0, len(iface.PossibleTypes))
	for _, pt := range iface.PossibleTypes {
		if pt.Name == "" || ex.metadata[pt.Name] {
			continue
		}
		ex.metadata[pt.Name] = true
		names = append(names, pt.Name)
	}
	sort.Strings(names)

	s := &Schema{
		Objects: make([]*ObjectTypeMeta, 0, len(names)),
		index:   make(map[string]*ObjectTypeMeta, len(names)),
	}
	for _, name := range names {
		t, ok := ex.types[name]
		if !ok || t.Kind != KindObject {
			return nil, errors.Wrapf(ErrSchemaIncompatible, "possible type %q of %q is not an object type", name, ex.conv.MetadataInterface)
		}
		meta := ex.object(t)
		s.Objects = append(s.Objects, meta)
		s.index[meta.Name] = meta
	}

	s.GenericGet = ex.rootQuery(ex.conv.GenericGetField)
	s.Search = ex.rootQuery(ex.conv.SearchField)
	if ex.query[ex.conv.ListDimensionsField] != nil && ex.query[ex.conv.GetDimensionField] != nil {
		s.Dimensions = &DimensionOperations{
			List: ex.conv.ListDimensionsField,
			Get:  ex.conv.GetDimensionField,
		}
	}
	s.Warnings = ex.warnings
	return s, nil
}

func fieldsByName(fields []Field) map[string]*Field {
	out := make(map[string]*Field, len(fields))
	for i := range fields {
		out[fields[i].Name] = &fields[i]
	}
	return out
}

func (ex *extractor) warnf(format string, args ...any) {
	ex.warnings = append(ex.warnings, fmt.Sprintf(format, args...))
}

func (ex *extractor) rootQuery(name string) *Operation {
	return ex.operation(ex.query[name])
}

func (ex *extractor) operation(f *Field) *Operation {
	if f == nil {
		return nil
	}
	op := &Operation{Name: f.Name, Arguments: make([]Argument, 0, len(f.Args))}
	for _, arg := range f.Args {
		op.Arguments = append(op.Arguments, Argument{Name: arg.Name, Type: arg.Type.String()})
		if op.InputArgument == "" && ex.kindOf(arg.Type) == KindInputObject {
			op.InputArgument = arg.Name
			op.InputType = arg.Type.String()
		}
	}
	return op
}

// kindOf resolves the kind of the named type behind t. Introspection
// results always set it; SDL conversions may not know it for wrappers.
func (ex *extractor) kindOf(t TypeRef) string {
	if k := t.NamedKind(); k != "" {
		return k
	}
	if nt, ok := ex.types[t.Named()]; ok {
		return nt.Kind
	}
	return ""
}

func (ex *extractor) object(t *FullType) *ObjectTypeMeta {
	meta := &ObjectTypeMeta{
		Name: t.Name,
		Operations: Operations{
			Get:     ex.operation(ex.query[getPrefix+t.Name]),
			List:    ex.operation(ex.query[listPrefix+t.Name]),
			Create:  ex.operation(ex.mutation[createPrefix+t.Name]),
			Update:  ex.operation(ex.mutation[updatePrefix+t.Name]),
			Delete:  ex.operation(ex.mutation[deletePrefix+t.Name]),
			Publish: ex.operation(ex.mutation[publishPrefix+t.Name]),
		},
	}

	input := ex.inputType(meta.Operations.Create)
	if input == nil {
		input = ex.inputType(meta.Operations.Update)
	}
	inputFields := inputFieldSet(input)
	var globalFields map[string]bool
	if global, ok := ex.types[t.Name+ex.conv.GlobalInputSuffix]; ok && global.Kind == KindInputObject {
		globalFields = inputFieldSet(global)
	}

	objectFields := make(map[string]*Field)
	for i := range t.Fields {
		f := &t.Fields[i]
		switch f.Name {
		case configField:
			meta.HasConfig = true
			continue
		case metaField:
			meta.HasMeta = true
			continue
		}
		if strings.HasPrefix(f.Name, "_") {
			continue
		}
		switch ex.kindOf(f.Type) {
		case KindScalar, KindEnum:
			meta.Fields = append(meta.Fields, ex.fieldMeta(f, inputFields, globalFields))
		default:
			objectFields[f.Name] = f
		}
	}

	_, meta.HasContent = objectFields[contentField]
	_, meta.HasContentOf = objectFields[contentOfField]
	_, hasAvailability := objectFields[availabilityField]
	meta.HasAvailability = hasAvailability && t.Name != types.AvailabilityType
	_, meta.HasDimensions = objectFields[dimensionsField]
	_, meta.HasSegments = objectFields[segmentsField]

	meta.Relationships = ex.relationships(t.Name, input, objectFields)
	for i := range meta.Relationships {
		if meta.Relationships[i].ObjectType == types.ImageType {
			rel := meta.Relationships[i]
			meta.Images = &rel
			break
		}
	}
	if meta.HasContent {
		meta.ContentTypes = ex.contentTypes(t.Name, objectFields[contentField])
	}

	meta.buildIndexes()
	return meta
}

func (ex *extractor) inputType(op *Operation) *FullType {
	if op == nil || op.InputType == "" {
		return nil
	}
	name := strings.Trim(op.InputType, "[]!")
	t, ok := ex.types[name]
	if !ok || t.Kind != KindInputObject {
		return nil
	}
	return t
}

func inputFieldSet(t *FullType) map[string]bool {
	if t == nil {
		return nil
	}
	out := make(map[string]bool, len(t.InputFields))
	for _, f := range t.InputFields {
		out[f.Name] = true
	}
	return out
}

// fieldMeta classifies f. A field in the create input but not in the
// global input is translatable; the rule only applies when the type
// declares a global input at all.
func (ex *extractor) fieldMeta(f *Field, inputFields, globalFields map[string]bool) FieldMeta {
	fm := FieldMeta{
		Name:        f.Name,
		GraphQLType: f.Type.String(),
		IsList:      f.Type.IsList(),
		IsRequired:  f.Type.IsNonNull(),
	}
	if nt, ok := ex.types[f.Type.Named()]; ok && nt.Kind == KindEnum {
		for _, v := range nt.EnumValues {
			fm.EnumValues = append(fm.EnumValues, v.Name)
		}
	}

	inInput := inputFields[f.Name]
	inGlobal := globalFields[f.Name]
	switch {
	case types.IsSystemField(f.Name):
		fm.Partition = System
	case inInput && globalFields != nil && !inGlobal:
		fm.Partition = Translatable
	default:
		fm.Partition = Global
		fm.ReadOnly = !inInput && !inGlobal
	}
	return fm
}

func (ex *extractor) relationships(owner string, input *FullType, objectFields map[string]*Field) []Relationship {
	if input == nil {
		return nil
	}
	var relInput *FullType
	for _, f := range input.InputFields {
		if f.Name == relationshipsInputField {
			relInput = ex.types[f.Type.Named()]
			break
		}
	}
	if relInput == nil {
		return nil
	}

	rels := make([]Relationship, 0, len(relInput.InputFields))
	for _, rf := range relInput.InputFields {
		target, ok := ex.listingTarget(objectFields[rf.Name])
		if !ok {
			ex.warnf("%s: relationship %q has no resolvable listing field", owner, rf.Name)
			continue
		}
		rels = append(rels, Relationship{Name: rf.Name, ObjectType: target})
	}
	return rels
}

// listingTarget resolves "field { objects: [Target] }" to Target.
func (ex *extractor) listingTarget(f *Field) (string, bool) {
	if f == nil {
		return "", false
	}
	listing, ok := ex.types[f.Type.Named()]
	if !ok {
		return "", false
	}
	for _, lf := range listing.Fields {
		if lf.Name == listingObjectsField {
			return lf.Type.Named(), lf.Type.Named() != ""
		}
	}
	return "", false
}

// contentTypes resolves content { objects: [{ object: U }] } to the object
// types U can hold.
func (ex *extractor) contentTypes(owner string, f *Field) []string {
	item, ok := ex.listingTarget(f)
	if !ok {
		ex.warnf("%s: content field has no resolvable listing", owner)
		return nil
	}
	itemType, ok := ex.types[item]
	if !ok {
		return nil
	}
	var objectRef *TypeRef
	for i := range itemType.Fields {
		if itemType.Fields[i].Name == contentItemObjectField {
			objectRef = &itemType.Fields[i].Type
			break
		}
	}
	if objectRef == nil {
		ex.warnf("%s: content items have no %q field", owner, contentItemObjectField)
		return nil
	}

	target, ok := ex.types[objectRef.Named()]
	if !ok {
		return nil
	}
	var out []string
	switch target.Kind {
	case KindUnion, KindInterface:
		for _, pt := range target.PossibleTypes {
			if ex.metadata[pt.Name] {
				out = append(out, pt.Name)
			}
		}
	default:
		if ex.metadata[target.Name] {
			out = append(out, target.Name)
		}
	}
	sort.Strings(out)
	return out
}
