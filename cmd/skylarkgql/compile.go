package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/llehouerou/skylark-graphql/compiler"
	"github.com/llehouerou/skylark-graphql/schema"
)

var compileCmd subCommand

func init() {
	compileCmd.Cmd = &cobra.Command{
		Use:   "compile <operation> [object type]",
		Short: "Print the document compiled for an operation",
		Long: `
Print the document and variables the compiler produces for one operation.

Operations taking an object type: ` + strings.Join(operationNames(true), ", ") + `.
Operations without one: ` + strings.Join(operationNames(false), ", ") + `.
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args)
		},
	}

	flag := compileCmd.Cmd.Flags()
	flag.String("uid", "", "Object uid.")
	flag.String("external_id", "", "Object external id.")
	flag.String("language", "", "Language code, e.g. en-GB.")
	flag.StringSlice("fields", nil, "Fields to select; all when empty.")
	flag.StringSlice("types", nil, "Object types to search, list or look up.")
	flag.StringSlice("relationships", nil, "Relationships to fetch; all when empty.")
	flag.StringSlice("dimensions", nil, "Dimension uids to list values of.")
	flag.String("query", "", "Search text.")
	flag.Int("offset", 0, "Search offset.")
	flag.Int("limit", 0, "Page size; the configured page_size when zero.")
	flag.String("next_token", "", "Cursor of the page to fetch.")
	flag.Int("global_version", 0, "Global version to fetch.")
	flag.Int("language_version", 0, "Language version to fetch.")
	flag.Bool("ignore_availability", true, "Ignore availability rules on get queries.")
	flag.String("metadata", "{}", "Field values of a create or update, as a JSON object.")
	flag.String("relationship", "", "Relationship changed by update-relationships.")
	flag.StringSlice("current", nil,
		"Current links: Type:uid refs for update-content, slug=value pairs for update-dimensions, uids otherwise.")
	flag.StringSlice("desired", nil, "Desired links, in the format of --current.")
	flag.Bool("minify", false, "Print the document on one line instead of formatting it.")

	register(&compileCmd)
}

// compileFlags are the compile flag values of one run.
type compileFlags struct {
	conf *viper.Viper
	cmd  *cobra.Command
}

func (f compileFlags) str(name string) string    { return f.conf.GetString(name) }
func (f compileFlags) num(name string) int       { return f.conf.GetInt(name) }
func (f compileFlags) list(name string) []string { return f.conf.GetStringSlice(name) }
func (f compileFlags) changed(name string) bool  { return f.cmd.Flags().Changed(name) }
func (f compileFlags) boolean(name string) bool  { return f.conf.GetBool(name) }

func (f compileFlags) ignoreAvailability() *bool {
	if !f.changed("ignore_availability") {
		return nil
	}
	v := f.boolean("ignore_availability")
	return &v
}

func (f compileFlags) get() compiler.GetOptions {
	return compiler.GetOptions{
		UID:                f.str("uid"),
		ExternalID:         f.str("external_id"),
		Language:           f.str("language"),
		IgnoreAvailability: f.ignoreAvailability(),
		Fields:             f.list("fields"),
		Limit:              f.num("limit"),
	}
}

func (f compileFlags) page() compiler.PageOptions {
	return compiler.PageOptions{
		UID:                f.str("uid"),
		Language:           f.str("language"),
		NextToken:          f.str("next_token"),
		Limit:              f.num("limit"),
		IgnoreAvailability: f.ignoreAvailability(),
	}
}

func (f compileFlags) metadata() (compiler.MetadataOptions, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(f.str("metadata")), &m); err != nil {
		return compiler.MetadataOptions{}, fmt.Errorf("decoding --metadata: %w", err)
	}
	return compiler.MetadataOptions{UID: f.str("uid"), Language: f.str("language"), Metadata: m}, nil
}

type typedCompile func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error)

type untypedCompile func(c *compiler.Compiler, f compileFlags) (*compiler.Compiled, error)

var typedOperations = map[string]typedCompile{
	"get": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileGetQuery(meta, f.get())
	},
	"version": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileGetVersionQuery(meta, compiler.VersionOptions{
			GetOptions:      f.get(),
			GlobalVersion:   f.num("global_version"),
			LanguageVersion: f.num("language_version"),
		})
	},
	"versions": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileVersionHistoryQuery(meta, f.get())
	},
	"relationships": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileRelationshipsQuery(meta, compiler.RelationshipsOptions{
			UID:                f.str("uid"),
			Language:           f.str("language"),
			Relationships:      f.list("relationships"),
			Limit:              f.num("limit"),
			IgnoreAvailability: f.ignoreAvailability(),
		})
	},
	"content": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileContentQuery(meta, f.page())
	},
	"content-of": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileContentOfQuery(meta, f.page())
	},
	"availability": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileAvailabilityQuery(meta, f.page())
	},
	"availability-dimensions": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileAvailabilityDimensionsQuery(meta, f.page())
	},
	"availability-segments": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileAvailabilitySegmentsQuery(meta, f.page())
	},
	"create": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		opts, err := f.metadata()
		if err != nil {
			return nil, err
		}
		return c.CompileCreateMutation(meta, opts)
	},
	"update": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		opts, err := f.metadata()
		if err != nil {
			return nil, err
		}
		return c.CompileUpdateMetadataMutation(meta, opts)
	},
	"update-content": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		current, err := parseRefs(f.list("current"))
		if err != nil {
			return nil, err
		}
		desired, err := parseRefs(f.list("desired"))
		if err != nil {
			return nil, err
		}
		return c.CompileUpdateContentMutation(meta, compiler.ContentUpdateOptions{
			UID:     f.str("uid"),
			Current: current,
			Desired: desired,
			Limit:   f.num("limit"),
		})
	},
	"update-relationships": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		rel := f.str("relationship")
		if rel == "" {
			return nil, fmt.Errorf("update-relationships needs --relationship")
		}
		return c.CompileUpdateRelationshipsMutation(meta, compiler.RelationshipUpdateOptions{
			UID:     f.str("uid"),
			Current: map[string][]string{rel: f.list("current")},
			Desired: map[string][]string{rel: f.list("desired")},
		})
	},
	"update-availability": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileUpdateAvailabilityMutation(meta, compiler.LinkUpdateOptions{
			UID:     f.str("uid"),
			Current: f.list("current"),
			Desired: f.list("desired"),
		})
	},
	"update-segments": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileUpdateAudienceSegmentsMutation(meta, compiler.LinkUpdateOptions{
			UID:     f.str("uid"),
			Current: f.list("current"),
			Desired: f.list("desired"),
		})
	},
	"update-dimensions": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		current, err := parseAssignments(f.list("current"))
		if err != nil {
			return nil, err
		}
		desired, err := parseAssignments(f.list("desired"))
		if err != nil {
			return nil, err
		}
		return c.CompileUpdateAvailabilityDimensionsMutation(meta, compiler.DimensionUpdateOptions{
			UID:     f.str("uid"),
			Current: current,
			Desired: desired,
		})
	},
	"delete": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileDeleteMutation(meta, f.str("uid"))
	},
	"publish": func(c *compiler.Compiler, meta *schema.ObjectTypeMeta, f compileFlags) (*compiler.Compiled, error) {
		return c.CompilePublishMutation(meta, f.str("uid"))
	},
}

var untypedOperations = map[string]untypedCompile{
	"generic-get": func(c *compiler.Compiler, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileGenericGetQuery(compiler.GenericGetOptions{
			UID:         f.str("uid"),
			ExternalID:  f.str("external_id"),
			Language:    f.str("language"),
			ObjectTypes: f.list("types"),
		})
	},
	"search": func(c *compiler.Compiler, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileSearchQuery(compiler.SearchOptions{
			Query:       f.str("query"),
			Language:    f.str("language"),
			Offset:      f.num("offset"),
			Limit:       f.num("limit"),
			ObjectTypes: f.list("types"),
		})
	},
	"list": func(c *compiler.Compiler, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileListQuery(compiler.ListOptions{
			ObjectTypes: f.list("types"),
			Language:    f.str("language"),
			Limit:       f.num("limit"),
			Fields:      f.list("fields"),
		})
	},
	"list-dimensions": func(c *compiler.Compiler, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileDimensionsQuery(compiler.DimensionsOptions{
			NextToken: f.str("next_token"),
			Limit:     f.num("limit"),
		})
	},
	"dimension-values": func(c *compiler.Compiler, f compileFlags) (*compiler.Compiled, error) {
		return c.CompileDimensionValuesQuery(compiler.DimensionValuesOptions{
			Dimensions: f.list("dimensions"),
			Limit:      f.num("limit"),
		})
	},
}

func operationNames(typed bool) []string {
	var names []string
	if typed {
		for name := range typedOperations {
			names = append(names, name)
		}
	} else {
		for name := range untypedOperations {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func runCompile(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(&compileCmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	name := args[0]
	typed, isTyped := typedOperations[name]
	untyped, isUntyped := untypedOperations[name]
	switch {
	case isTyped && len(args) != 2:
		return fmt.Errorf("%s needs an object type", name)
	case isUntyped && len(args) != 1:
		return fmt.Errorf("%s takes no object type", name)
	case !isTyped && !isUntyped:
		return fmt.Errorf("unknown operation %q", name)
	}

	s, err := loadSchema(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c := compiler.New(s, compiler.WithPageSize(cfg.PageSize))
	f := compileFlags{conf: compileCmd.Conf, cmd: cmd}

	var compiled *compiler.Compiled
	if isTyped {
		meta, ok := s.Object(args[1])
		if !ok {
			return fmt.Errorf("unknown object type %q", args[1])
		}
		compiled, err = typed(c, meta, f)
	} else {
		compiled, err = untyped(c, f)
	}
	if err != nil {
		return err
	}
	if compiled == nil {
		if isTyped {
			return fmt.Errorf("%s is not supported for %s by this schema", name, args[1])
		}
		return fmt.Errorf("%s is not supported by this schema", name)
	}
	return printCompiled(cmd.OutOrStdout(), compiled, f.boolean("minify"))
}

func printCompiled(w io.Writer, compiled *compiler.Compiled, minify bool) error {
	query := compiled.Query()
	if !minify {
		formatted, err := compiled.Document.Format()
		if err != nil {
			return err
		}
		query = formatted
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(query, "\n")); err != nil {
		return err
	}
	if len(compiled.Variables) == 0 {
		return nil
	}
	vars, err := json.MarshalIndent(compiled.Variables, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\nvariables: %s\n", vars)
	return err
}

// parseRefs parses Type:uid references.
func parseRefs(values []string) ([]compiler.Ref, error) {
	refs := make([]compiler.Ref, 0, len(values))
	for _, v := range values {
		objectType, uid, ok := strings.Cut(v, ":")
		if !ok || objectType == "" || uid == "" {
			return nil, fmt.Errorf("invalid reference %q, want Type:uid", v)
		}
		refs = append(refs, compiler.Ref{UID: uid, ObjectType: objectType})
	}
	return refs, nil
}

// parseAssignments parses dimension=value pairs into dimension slug to
// value slugs.
func parseAssignments(values []string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, v := range values {
		dimension, value, ok := strings.Cut(v, "=")
		if !ok || dimension == "" || value == "" {
			return nil, fmt.Errorf("invalid dimension assignment %q, want dimension=value", v)
		}
		out[dimension] = append(out[dimension], value)
	}
	return out, nil
}
