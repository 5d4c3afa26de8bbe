package schema_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/llehouerou/skylark-graphql/internal/testschema"
	"github.com/llehouerou/skylark-graphql/schema"
)

func TestExtract_objectTypes(t *testing.T) {
	s := testschema.Schema(t)

	want := []string{
		"Availability",
		"Episode",
		"Movie",
		"Season",
		"SkylarkAudienceSegment",
		"SkylarkImage",
		"SkylarkSet",
	}
	if diff := cmp.Diff(want, s.ObjectNames()); diff != "" {
		t.Errorf("object names mismatch (-want +got):\n%s", diff)
	}
	if _, ok := s.Object("Dimension"); ok {
		t.Error("got Dimension as an object type, want it excluded: it does not implement Metadata")
	}
}

func TestExtract_partitions(t *testing.T) {
	s := testschema.Schema(t)
	episode := testschema.Object(t, s, "Episode")

	tests := []struct {
		field     string
		partition schema.Partition
		readOnly  bool
	}{
		{"uid", schema.System, false},
		{"external_id", schema.System, false},
		{"data_source_id", schema.System, false},
		{"slug", schema.Translatable, false},
		{"title", schema.Translatable, false},
		{"synopsis", schema.Translatable, false},
		{"episode_number", schema.Global, false},
		{"release_date", schema.Global, false},
		{"type", schema.Global, false},
		{"tags", schema.Global, false},
		{"internal_score", schema.Global, true},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f, ok := episode.Field(tt.field)
			if !ok {
				t.Fatalf("field %q not found", tt.field)
			}
			if f.Partition != tt.partition {
				t.Errorf("got partition %v, want %v", f.Partition, tt.partition)
			}
			if f.ReadOnly != tt.readOnly {
				t.Errorf("got ReadOnly %v, want %v", f.ReadOnly, tt.readOnly)
			}
		})
	}

	// Every selectable field lands in exactly one partition.
	total := len(episode.FieldsIn(schema.System)) +
		len(episode.FieldsIn(schema.Translatable)) +
		len(episode.FieldsIn(schema.Global))
	if total != len(episode.Fields) {
		t.Errorf("got %d partitioned fields, want %d", total, len(episode.Fields))
	}
	if _, ok := episode.Field("_meta"); ok {
		t.Error("got _meta as a selectable field, want it skipped")
	}
	if _, ok := episode.Field("images"); ok {
		t.Error("got images as a selectable field, want it treated as an object field")
	}
}

func TestExtract_fieldTypes(t *testing.T) {
	s := testschema.Schema(t)
	episode := testschema.Object(t, s, "Episode")

	tests := []struct {
		field string
		want  schema.FieldMeta
	}{
		{
			field: "uid",
			want:  schema.FieldMeta{Name: "uid", GraphQLType: "String!", IsRequired: true, Partition: schema.System},
		},
		{
			field: "tags",
			want:  schema.FieldMeta{Name: "tags", GraphQLType: "[String]", IsList: true, Partition: schema.Global},
		},
		{
			field: "type",
			want: schema.FieldMeta{
				Name:        "type",
				GraphQLType: "EpisodeType",
				EnumValues:  []string{"FULL", "TRAILER"},
				Partition:   schema.Global,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := episode.Field(tt.field)
			if !ok {
				t.Fatalf("field %q not found", tt.field)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("field mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtract_translatable(t *testing.T) {
	s := testschema.Schema(t)
	tests := []struct {
		name string
		want bool
	}{
		{"Episode", true},
		{"SkylarkSet", true},
		{"Availability", false},
		{"SkylarkAudienceSegment", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testschema.Object(t, s, tt.name).IsTranslatable(); got != tt.want {
				t.Errorf("got IsTranslatable %v, want %v", got, tt.want)
			}
		})
	}

	// Availability declares no global input, so nothing is translatable.
	availability := testschema.Object(t, s, "Availability")
	if got := availability.FieldsIn(schema.Translatable); len(got) != 0 {
		t.Errorf("got translatable Availability fields %v, want none", got)
	}
}

func TestExtract_operations(t *testing.T) {
	s := testschema.Schema(t)

	episode := testschema.Object(t, s, "Episode").Operations
	if episode.Get == nil || episode.Get.Name != "getEpisode" {
		t.Fatalf("got Episode get %+v, want getEpisode", episode.Get)
	}
	if got, want := episode.Get.ArgumentType("uid", ""), "String"; got != want {
		t.Errorf("got uid argument type %q, want %q", got, want)
	}
	if episode.Update == nil {
		t.Fatal("got nil Episode update")
	}
	if got, want := episode.Update.ArgumentType("uid", ""), "String!"; got != want {
		t.Errorf("got update uid argument type %q, want %q", got, want)
	}
	if got, want := episode.Update.InputArgument, "episode"; got != want {
		t.Errorf("got update input argument %q, want %q", got, want)
	}
	if got, want := episode.Update.InputType, "EpisodeInput!"; got != want {
		t.Errorf("got update input type %q, want %q", got, want)
	}
	if episode.Delete == nil || episode.Publish == nil {
		t.Error("got nil Episode delete or publish")
	}

	movie := testschema.Object(t, s, "Movie").Operations
	if movie.Delete != nil || movie.Publish != nil {
		t.Errorf("got Movie delete %+v publish %+v, want both nil", movie.Delete, movie.Publish)
	}

	segment := testschema.Object(t, s, "SkylarkAudienceSegment").Operations
	if segment.Create != nil || segment.Update != nil {
		t.Error("got SkylarkAudienceSegment create or update, want nil")
	}
	if segment.Get == nil || segment.List == nil {
		t.Error("got nil SkylarkAudienceSegment get or list")
	}

	var nilOp *schema.Operation
	if got := nilOp.ArgumentType("uid", "String"); got != "String" {
		t.Errorf("got %q from nil operation, want fallback", got)
	}

	if s.GenericGet == nil || s.GenericGet.Name != "getObject" {
		t.Errorf("got generic get %+v, want getObject", s.GenericGet)
	}
	if s.Search == nil || s.Search.Name != "search" {
		t.Errorf("got search %+v, want search", s.Search)
	}
	if s.Dimensions == nil || s.Dimensions.List != "listDimensions" || s.Dimensions.Get != "getDimension" {
		t.Errorf("got dimensions %+v, want listDimensions/getDimension", s.Dimensions)
	}
}

func TestExtract_capabilities(t *testing.T) {
	s := testschema.Schema(t)

	type caps struct {
		Content, ContentOf, Availability, Dimensions, Segments, Config, Meta bool
	}
	tests := []struct {
		name string
		want caps
	}{
		{"Episode", caps{ContentOf: true, Availability: true, Config: true, Meta: true}},
		{"SkylarkSet", caps{Content: true, ContentOf: true, Availability: true, Config: true, Meta: true}},
		{"Availability", caps{Dimensions: true, Segments: true, Config: true, Meta: true}},
		{"SkylarkImage", caps{Meta: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testschema.Object(t, s, tt.name)
			got := caps{
				Content:      m.HasContent,
				ContentOf:    m.HasContentOf,
				Availability: m.HasAvailability,
				Dimensions:   m.HasDimensions,
				Segments:     m.HasSegments,
				Config:       m.HasConfig,
				Meta:         m.HasMeta,
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("capabilities mismatch (-want +got):\n%s", diff)
			}
		})
	}

	set := testschema.Object(t, s, "SkylarkSet")
	if diff := cmp.Diff([]string{"Episode", "Movie", "Season", "SkylarkSet"}, set.ContentTypes); diff != "" {
		t.Errorf("content types mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_relationships(t *testing.T) {
	s := testschema.Schema(t)

	episode := testschema.Object(t, s, "Episode")
	want := []schema.Relationship{
		{Name: "images", ObjectType: "SkylarkImage"},
		{Name: "seasons", ObjectType: "Season"},
	}
	if diff := cmp.Diff(want, episode.Relationships); diff != "" {
		t.Errorf("relationships mismatch (-want +got):\n%s", diff)
	}
	if episode.Images == nil || episode.Images.Name != "images" {
		t.Errorf("got images %+v, want the images relationship", episode.Images)
	}
	if rel, ok := episode.Relationship("seasons"); !ok || rel.ObjectType != "Season" {
		t.Errorf("got seasons %+v %v, want Season", rel, ok)
	}
	if _, ok := episode.Relationship("brands"); ok {
		t.Error("got brands on Episode, want not found")
	}

	// Movie declares a brands relationship input without a listing field.
	movie := testschema.Object(t, s, "Movie")
	if _, ok := movie.Relationship("brands"); ok {
		t.Error("got unresolvable brands relationship, want it skipped")
	}
	if len(s.Warnings) == 0 {
		t.Error("got no extraction warnings, want one for Movie.brands")
	}
}

func TestExtract_incompatible(t *testing.T) {
	tests := []struct {
		name string
		sdl  string
	}{
		{
			name: "no metadata interface",
			sdl: `type Query { getEpisode(uid: String): Episode }
type Episode { uid: String! }`,
		},
		{
			name: "metadata interface without implementations",
			sdl: `interface Metadata { uid: String! }
type Query { getObject(uid: String): Metadata }`,
		},
		{
			name: "metadata is not an interface",
			sdl: `type Metadata { uid: String! }
type Query { getObject(uid: String): Metadata }`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := schema.FromSDL("broken.graphql", tt.sdl)
			if err != nil {
				t.Fatalf("failed to load SDL: %v", err)
			}
			_, err = schema.Extract(in, schema.DefaultConventions())
			if !errors.Is(err, schema.ErrSchemaIncompatible) {
				t.Errorf("got error %v, want ErrSchemaIncompatible", err)
			}
		})
	}

	t.Run("nil introspection", func(t *testing.T) {
		if _, err := schema.Extract(nil, schema.Conventions{}); !errors.Is(err, schema.ErrSchemaIncompatible) {
			t.Errorf("got error %v, want ErrSchemaIncompatible", err)
		}
	})
	t.Run("no query type", func(t *testing.T) {
		in := testschema.Introspection(t)
		in.QueryType = nil
		if _, err := schema.Extract(in, schema.Conventions{}); !errors.Is(err, schema.ErrSchemaIncompatible) {
			t.Errorf("got error %v, want ErrSchemaIncompatible", err)
		}
	})
}

func TestExtract_customConventions(t *testing.T) {
	sdl := `interface Content { uid: String! }
type Episode implements Content { uid: String! title: String }
type Query { getEpisode(uid: String): Episode }`
	in, err := schema.FromSDL("custom.graphql", sdl)
	if err != nil {
		t.Fatalf("failed to load SDL: %v", err)
	}
	s, err := schema.Extract(in, schema.Conventions{MetadataInterface: "Content"})
	if err != nil {
		t.Fatalf("got error %v, want nil", err)
	}
	if diff := cmp.Diff([]string{"Episode"}, s.ObjectNames()); diff != "" {
		t.Errorf("object names mismatch (-want +got):\n%s", diff)
	}
	if s.GenericGet != nil || s.Search != nil || s.Dimensions != nil {
		t.Error("got polymorphic roots on a schema without them, want nil")
	}
}

func TestSchema_nilSafe(t *testing.T) {
	var s *schema.Schema
	if _, ok := s.Object("Episode"); ok {
		t.Error("got object from nil schema")
	}
	if names := s.ObjectNames(); names != nil {
		t.Errorf("got names %v from nil schema, want nil", names)
	}
}
