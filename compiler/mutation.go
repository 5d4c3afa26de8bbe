package compiler

import (
	"sort"

	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
	"github.com/llehouerou/skylark-graphql/types"
)

// MetadataOptions carry the field values of a create or update.
type MetadataOptions struct {
	// UID identifies the object to update; create ignores it.
	UID      string
	Language string
	// Metadata maps field names to values and is sent as given.
	Metadata map[string]any
}

// CompileCreateMutation compiles CREATE_OBJECT_<T>. The language variable
// is bound only for translatable types.
func (c *Compiler) CompileCreateMutation(meta *schema.ObjectTypeMeta, opts MetadataOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Create == nil || meta.Operations.Create.InputArgument == "" {
		return nil, nil
	}
	return c.compileMetadataMutation(meta, meta.Operations.Create, "CREATE_OBJECT_", "createObject", opts, false)
}

// CompileUpdateMetadataMutation compiles UPDATE_OBJECT_METADATA_<T>. The
// metadata is resubmitted as given; callers decide which fields changed.
func (c *Compiler) CompileUpdateMetadataMutation(meta *schema.ObjectTypeMeta, opts MetadataOptions) (*Compiled, error) {
	if meta == nil || meta.Operations.Update == nil || meta.Operations.Update.InputArgument == "" {
		return nil, nil
	}
	return c.compileMetadataMutation(meta, meta.Operations.Update, "UPDATE_OBJECT_METADATA_", "updateObjectMetadata", opts, true)
}

func (c *Compiler) compileMetadataMutation(meta *schema.ObjectTypeMeta, op *schema.Operation, prefix, alias string, opts MetadataOptions, withUID bool) (*Compiled, error) {
	if err := checkMetadata(meta, opts.Metadata); err != nil {
		return nil, err
	}
	selection, err := objectSelection(meta, nil)
	if err != nil {
		return nil, err
	}

	b := newBuilder(document.Mutation, prefix+meta.Name)
	root := rootField(alias, op, selection)
	if withUID {
		b.bind(root, uidFragment(op, opts.UID))
	}
	input := make(map[string]any, len(opts.Metadata))
	for k, v := range opts.Metadata {
		input[k] = v
	}
	b.bind(root, inputFragment(op, input))
	b.bind(root, mutationLanguageFragment(meta, op, opts.Language)...)
	b.add(root)
	return b.finish()
}

// checkMetadata rejects fields the input type cannot carry.
func checkMetadata(meta *schema.ObjectTypeMeta, metadata map[string]any) error {
	names := make([]string, 0, len(metadata))
	for name := range metadata {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f, ok := meta.Field(name)
		switch {
		case !ok:
			return compileErr(ErrUnknownField, meta.Name, name, "")
		case f.ReadOnly:
			return compileErr(ErrUnknownField, meta.Name, name, "field is read-only")
		case name == types.UIDField:
			return compileErr(ErrUnknownField, meta.Name, name, "uid is assigned by the server")
		}
	}
	return nil
}

// mutationLanguageFragment binds $language for translatable types only.
func mutationLanguageFragment(meta *schema.ObjectTypeMeta, op *schema.Operation, language string) []binding {
	if !meta.IsTranslatable() {
		return nil
	}
	return languageFragment(meta.Name, op, language)
}

// uidFragment binds the required $uid of a mutation. The value is always
// sent.
func uidFragment(op *schema.Operation, uid string) binding {
	return binding{
		variable: document.VariableDefinition{Name: uidVar, Type: op.ArgumentType(uidArg, "String!")},
		argument: uidArg,
		value:    uid,
	}
}

// inputFragment binds the whole input object as one variable named after
// the operation's input argument.
func inputFragment(op *schema.Operation, value any) binding {
	return binding{
		variable: document.VariableDefinition{Name: op.InputArgument, Type: op.InputType},
		argument: op.InputArgument,
		value:    value,
	}
}

// CompileDeleteMutation compiles DELETE_<T>.
func (c *Compiler) CompileDeleteMutation(meta *schema.ObjectTypeMeta, uid string) (*Compiled, error) {
	if meta == nil || meta.Operations.Delete == nil {
		return nil, nil
	}
	return c.compileUIDMutation(meta.Operations.Delete, "DELETE_"+meta.Name, "deleteObject", uid), nil
}

// CompilePublishMutation compiles PUBLISH_<T>.
func (c *Compiler) CompilePublishMutation(meta *schema.ObjectTypeMeta, uid string) (*Compiled, error) {
	if meta == nil || meta.Operations.Publish == nil {
		return nil, nil
	}
	return c.compileUIDMutation(meta.Operations.Publish, "PUBLISH_"+meta.Name, "publishObject", uid), nil
}

func (c *Compiler) compileUIDMutation(op *schema.Operation, name, alias string, uid string) *Compiled {
	b := newBuilder(document.Mutation, name)
	root := rootField(alias, op, document.Leaves(types.UIDField))
	b.bind(root, uidFragment(op, uid))
	b.add(root)
	return b.compiled()
}
