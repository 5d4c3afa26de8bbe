package compiler_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/llehouerou/skylark-graphql/compiler"
	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/internal/aliasparse"
	"github.com/llehouerou/skylark-graphql/schema"
)

const (
	metaBlock   = `_meta{available_languages,language_data{language,version},global_data{version},modified{date},created{date},published}`
	configBlock = `_config{primary_field,colour,display_name}`
)

func TestCompileGetQuery(t *testing.T) {
	f := newFixture(t)
	episode := f.object(t, "Episode")

	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileGetQuery(episode, compiler.GetOptions{
			UID:      "e1",
			Language: "pt-PT",
			Fields:   []string{"title"},
			Limit:    5,
		})
	})

	want := `query GET_Episode($uid:String,$externalId:String,$language:String,$ignoreAvailability:Boolean=true)` +
		`{getObject:getEpisode(uid:$uid,external_id:$externalId,language:$language,ignore_availability:$ignoreAvailability)` +
		`{__typename,title,` + configBlock + `,` + metaBlock +
		`,images(limit:5){next_token,objects{__typename,uid,external_id,slug,title,type,url,external_url,` + metaBlock + `}}` +
		`,seasons(limit:5){next_token,objects{__typename,uid,external_id,` + metaBlock + `}}}}`
	if got := c.Query(); got != want {
		t.Errorf("got query:\n%s\nwant:\n%s", got, want)
	}
	if diff := cmp.Diff(map[string]any{"uid": "e1", "language": "pt-PT"}, c.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileGetQuery_language(t *testing.T) {
	f := newFixture(t)

	t.Run("Episode", func(t *testing.T) {
		c := f.mustCompile(t, func() (*compiler.Compiled, error) {
			return f.compiler.CompileGetQuery(f.object(t, "Episode"), compiler.GetOptions{UID: "e1", Language: "pt-PT"})
		})
		if got := c.Document.VariableTypes()["language"]; got != "String" {
			t.Errorf("got language variable type %q, want String", got)
		}
		if got := c.Variables["language"]; got != "pt-PT" {
			t.Errorf("got language value %v, want pt-PT", got)
		}
		var passed bool
		for _, arg := range rootField(t, c).Arguments {
			if arg.Name == "language" && arg.Value == document.Variable("language") {
				passed = true
			}
		}
		if !passed {
			t.Error("language variable is not passed to the root field")
		}
		if got := rootField(t, c).Alias; got != "getObject" {
			t.Errorf("got root alias %q, want getObject", got)
		}
	})

	t.Run("Availability", func(t *testing.T) {
		c := f.mustCompile(t, func() (*compiler.Compiled, error) {
			return f.compiler.CompileGetQuery(f.object(t, "Availability"), compiler.GetOptions{UID: "a1", Language: "pt-PT"})
		})
		if c.Document.HasVariable("language") {
			t.Errorf("got language variable on Availability: %s", c.Query())
		}
		if _, ok := c.Variables["language"]; ok {
			t.Error("got language value on Availability")
		}
	})

	t.Run("no language requested", func(t *testing.T) {
		c := f.mustCompile(t, func() (*compiler.Compiled, error) {
			return f.compiler.CompileGetQuery(f.object(t, "Episode"), compiler.GetOptions{UID: "e1"})
		})
		if c.Document.HasVariable("language") {
			t.Errorf("got language variable without a language: %s", c.Query())
		}
	})
}

func TestCompileGetQuery_ignoreAvailability(t *testing.T) {
	f := newFixture(t)
	episode := f.object(t, "Episode")

	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileGetQuery(episode, compiler.GetOptions{UID: "e1"})
	})
	var def *document.VariableDefinition
	for i := range c.Document.Variables {
		if c.Document.Variables[i].Name == "ignoreAvailability" {
			def = &c.Document.Variables[i]
		}
	}
	if def == nil {
		t.Fatal("got no ignoreAvailability variable on a per-type get")
	}
	if def.Default != document.BooleanValue(true) {
		t.Errorf("got default %v, want true", def.Default)
	}
	if _, ok := c.Variables["ignoreAvailability"]; ok {
		t.Error("got a value for ignoreAvailability without an override")
	}

	c = f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileGetQuery(episode, compiler.GetOptions{UID: "e1", IgnoreAvailability: boolPtr(false)})
	})
	if got := c.Variables["ignoreAvailability"]; got != false {
		t.Errorf("got ignoreAvailability %v, want false", got)
	}

	generic := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileGenericGetQuery(compiler.GenericGetOptions{UID: "e1"})
	})
	if generic.Document.HasVariable("ignoreAvailability") {
		t.Errorf("got ignoreAvailability on generic get: %s", generic.Query())
	}
}

func TestCompileGetQuery_unknownField(t *testing.T) {
	f := newFixture(t)
	_, err := f.compiler.CompileGetQuery(f.object(t, "Episode"), compiler.GetOptions{UID: "e1", Fields: []string{"title", "colour"}})
	if !errors.Is(err, compiler.ErrUnknownField) {
		t.Fatalf("got error %v, want ErrUnknownField", err)
	}
	var ce *compiler.CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("got error %T, want *CompileError", err)
	}
	if ce.ObjectType != "Episode" || ce.Field != "colour" {
		t.Errorf("got error on %s.%s, want Episode.colour", ce.ObjectType, ce.Field)
	}
}

func TestCompileGetVersionQuery(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileGetVersionQuery(f.object(t, "Episode"), compiler.VersionOptions{
			GetOptions:    compiler.GetOptions{UID: "e1"},
			GlobalVersion: 4,
		})
	})
	if got := c.Document.VariableTypes()["globalVersion"]; got != "Int" {
		t.Errorf("got globalVersion type %q, want Int", got)
	}
	want := map[string]any{"uid": "e1", "globalVersion": 4}
	if diff := cmp.Diff(want, c.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

// polymorphicFields returns the fields of every inline fragment in set by
// type condition.
func polymorphicFields(set document.SelectionSet) map[string][]*document.Field {
	out := map[string][]*document.Field{}
	for _, sel := range set {
		frag, ok := sel.(*document.InlineFragment)
		if !ok {
			continue
		}
		for _, s := range frag.SelectionSet {
			if field, ok := s.(*document.Field); ok {
				out[frag.TypeCondition] = append(out[frag.TypeCondition], field)
			}
		}
	}
	return out
}

func assertAliased(t *testing.T, branches map[string][]*document.Field) {
	t.Helper()
	for typeName, fields := range branches {
		for _, field := range fields {
			if compiler.NeedsAlias(field.Name) {
				if want := "__" + typeName + "__" + field.Name; field.Alias != want {
					t.Errorf("%s.%s: got alias %q, want %q", typeName, field.Name, field.Alias, want)
				}
				continue
			}
			if field.Alias != "" {
				t.Errorf("%s.%s: got alias %q, want none", typeName, field.Name, field.Alias)
			}
		}
	}
}

func TestCompileSearchQuery(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileSearchQuery(compiler.SearchOptions{
			Query:       "pilot",
			ObjectTypes: []string{"Episode", "Movie"},
		})
	})

	objects, ok := rootField(t, c).SelectionSet[1].(*document.Field)
	if !ok || objects.Name != "objects" {
		t.Fatalf("got %v, want the objects field", rootField(t, c).SelectionSet[1])
	}
	branches := polymorphicFields(objects.SelectionSet)
	if got := len(branches); got != 2 {
		t.Fatalf("got %d branches, want 2", got)
	}
	assertAliased(t, branches)

	want := map[string]any{"queryString": "pilot", "offset": 0, "limit": compiler.DefaultPageSize}
	if diff := cmp.Diff(want, c.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	// A returned Episode is de-aliased with its own prefix only.
	response := map[string]any{
		"__typename":       "Episode",
		"uid":              "e1",
		"__Episode__title": "Pilot",
		"__Movie__title":   1999,
	}
	got := compiler.DealiasObject(response)
	wantObject := map[string]any{
		"__typename":     "Episode",
		"uid":            "e1",
		"title":          "Pilot",
		"__Movie__title": 1999,
	}
	if diff := cmp.Diff(wantObject, got); diff != "" {
		t.Errorf("de-aliased object mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileSearchQuery_availabilityDefault(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name    string
		filters compiler.SearchFilters
		want    document.Value
	}{
		{"no filters", compiler.SearchFilters{}, document.BooleanValue(true)},
		{"dimensions", compiler.SearchFilters{Dimensions: map[string]string{"device-types": "pc"}}, document.BooleanValue(false)},
		{"time travel", compiler.SearchFilters{TimeTravel: "2024-01-01T00:00:00Z"}, document.BooleanValue(false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := f.mustCompile(t, func() (*compiler.Compiled, error) {
				return f.compiler.CompileSearchQuery(compiler.SearchOptions{Query: "x", Filters: tt.filters})
			})
			var got document.Value
			for _, v := range c.Document.Variables {
				if v.Name == "ignoreAvailability" {
					got = v.Default
				}
			}
			if got != tt.want {
				t.Errorf("got default %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompileSearchQuery_unknownObjectType(t *testing.T) {
	f := newFixture(t)
	_, err := f.compiler.CompileSearchQuery(compiler.SearchOptions{Query: "x", ObjectTypes: []string{"Episode", "Podcast"}})
	if !errors.Is(err, compiler.ErrUnknownObjectType) {
		t.Errorf("got error %v, want ErrUnknownObjectType", err)
	}
}

func TestCompileGenericGetQuery(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileGenericGetQuery(compiler.GenericGetOptions{ExternalID: "ext-1"})
	})
	branches := polymorphicFields(rootField(t, c).SelectionSet)
	if got, want := len(branches), len(f.schema.Objects); got != want {
		t.Errorf("got %d branches, want %d", got, want)
	}
	assertAliased(t, branches)
	if diff := cmp.Diff(map[string]any{"externalId": "ext-1"}, c.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileGenericGetQuery_aliasCollision(t *testing.T) {
	sdl := `interface Metadata { uid: String! }
type A implements Metadata { uid: String! B__c: String }
type A__B implements Metadata { uid: String! c: String }
type Query { getObject(uid: String): Metadata }`
	s := extractSDL(t, sdl)
	_, err := compiler.New(s).CompileGenericGetQuery(compiler.GenericGetOptions{UID: "x"})
	if !errors.Is(err, compiler.ErrAliasCollision) {
		t.Fatalf("got error %v, want ErrAliasCollision", err)
	}
}

func TestCompileListQuery(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileListQuery(compiler.ListOptions{
			ObjectTypes: []string{"Episode", "Season"},
			NextTokens:  map[string]string{"Season": "season-page-2"},
		})
	})
	types := c.Document.VariableTypes()
	for _, name := range []string{"EpisodeNextToken", "SeasonNextToken"} {
		if types[name] != "String" {
			t.Errorf("got %s type %q, want String", name, types[name])
		}
	}
	if diff := cmp.Diff(map[string]any{"SeasonNextToken": "season-page-2"}, c.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	var aliases []string
	for _, sel := range c.Document.SelectionSet {
		aliases = append(aliases, sel.(*document.Field).ResponseKey())
	}
	if diff := cmp.Diff([]string{"Episode", "Season"}, aliases); diff != "" {
		t.Errorf("root aliases mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileListQuery_sharedLanguageVariable(t *testing.T) {
	sdl := `interface Metadata { uid: String! }
type Episode implements Metadata { uid: String! title: String }
type Season implements Metadata { uid: String! title: String }
type EpisodeListing { next_token: String objects: [Episode] }
type SeasonListing { next_token: String objects: [Season] }
type Query {
  getObject(uid: String): Metadata
  listEpisode(limit: Int, next_token: String, language: String): EpisodeListing
  listSeason(limit: Int, next_token: String, language: String!): SeasonListing
}`
	s := extractSDL(t, sdl)
	astSchema, err := schema.LoadSDL("inline.graphql", sdl)
	if err != nil {
		t.Fatal(err)
	}

	c, err := compiler.New(s).CompileListQuery(compiler.ListOptions{
		ObjectTypes: []string{"Episode", "Season"},
		Language:    "en-GB",
	})
	if err != nil {
		t.Fatalf("got error %v, want nil", err)
	}
	if got, want := c.Document.VariableTypes()["language"], "String!"; got != want {
		t.Errorf("got $language type %q, want %q", got, want)
	}
	if err := c.Document.Validate(astSchema); err != nil {
		t.Fatalf("document does not validate: %v\n%s", err, c.Query())
	}
}

func TestCompileListQuery_conflictingVariableTypes(t *testing.T) {
	sdl := `interface Metadata { uid: String! }
type Episode implements Metadata { uid: String! title: String }
type Season implements Metadata { uid: String! title: String }
type EpisodeListing { next_token: String objects: [Episode] }
type SeasonListing { next_token: String objects: [Season] }
type Query {
  getObject(uid: String): Metadata
  listEpisode(next_token: String, language: String): EpisodeListing
  listSeason(next_token: String, language: [String]): SeasonListing
}`
	s := extractSDL(t, sdl)
	_, err := compiler.New(s).CompileListQuery(compiler.ListOptions{
		ObjectTypes: []string{"Episode", "Season"},
		Language:    "en-GB",
	})
	if !errors.Is(err, compiler.ErrVariableConflict) {
		t.Fatalf("got error %v, want ErrVariableConflict", err)
	}
}

func TestCompileListQuery_skipsTypesWithoutList(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileListQuery(compiler.ListOptions{ObjectTypes: []string{"SkylarkImage", "Movie"}})
	})
	if got, want := c.OperationName(), "LIST_Movie"; got != want {
		t.Errorf("got operation name %q, want %q", got, want)
	}
}

func TestCompileRelationshipsQuery(t *testing.T) {
	f := newFixture(t)
	episode := f.object(t, "Episode")

	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileRelationshipsQuery(episode, compiler.RelationshipsOptions{
			UID:           "e1",
			Relationships: []string{"seasons"},
			NextTokens:    map[string]string{"seasons": "next"},
		})
	})
	if got := c.Document.VariableTypes()["seasonsNextToken"]; got != "String" {
		t.Errorf("got seasonsNextToken type %q, want String", got)
	}
	if c.Document.HasVariable("imagesNextToken") {
		t.Error("got cursor for an unrequested relationship")
	}
	if got := c.Variables["seasonsNextToken"]; got != "next" {
		t.Errorf("got seasonsNextToken %v, want next", got)
	}

	_, err := f.compiler.CompileRelationshipsQuery(episode, compiler.RelationshipsOptions{UID: "e1", Relationships: []string{"brands"}})
	if !errors.Is(err, compiler.ErrUnknownRelationship) {
		t.Errorf("got error %v, want ErrUnknownRelationship", err)
	}
}

func TestCompileContentQuery(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileContentQuery(f.object(t, "SkylarkSet"), compiler.PageOptions{UID: "set1", NextToken: "p2", Limit: 10})
	})
	q := c.Query()
	if !strings.Contains(q, "content(order:ASC,limit:10,next_token:$nextToken){next_token,objects{position,object{__typename,") {
		t.Errorf("content selection not found in:\n%s", q)
	}
	for _, typeName := range []string{"Episode", "Movie", "Season", "SkylarkSet"} {
		if !strings.Contains(q, "... on "+typeName+"{") {
			t.Errorf("got no branch for %s in:\n%s", typeName, q)
		}
	}
	if got := c.Variables["nextToken"]; got != "p2" {
		t.Errorf("got nextToken %v, want p2", got)
	}
}

func TestCompileDimensionValuesQuery(t *testing.T) {
	f := newFixture(t)
	c := f.mustCompile(t, func() (*compiler.Compiled, error) {
		return f.compiler.CompileDimensionValuesQuery(compiler.DimensionValuesOptions{
			Dimensions: []string{"dim-1", "dim-2", "dim-1"},
			NextTokens: map[string]string{"dim-2": "t2"},
		})
	})
	if got := len(c.Document.SelectionSet); got != 2 {
		t.Errorf("got %d root fields, want 2", got)
	}
	types := c.Document.VariableTypes()
	for _, name := range []string{"dimension_dim_1NextToken", "dimension_dim_2NextToken"} {
		if types[name] != "String" {
			t.Errorf("got %s type %q, want String", name, types[name])
		}
	}
	if diff := cmp.Diff(map[string]any{"dimension_dim_2NextToken": "t2"}, c.Variables); diff != "" {
		t.Errorf("variables mismatch (-want +got):\n%s", diff)
	}

	_, err := f.compiler.CompileDimensionValuesQuery(compiler.DimensionValuesOptions{Dimensions: []string{"a-b", "a_b"}})
	if !errors.Is(err, compiler.ErrAliasCollision) {
		t.Errorf("got error %v, want ErrAliasCollision", err)
	}
}

func TestAliasRoundTrip(t *testing.T) {
	f := newFixture(t)
	for _, meta := range f.schema.Objects {
		for _, field := range meta.Fields {
			alias := compiler.AliasFor(meta.Name, field.Name)
			if !compiler.NeedsAlias(field.Name) {
				if alias != field.Name {
					t.Errorf("%s.%s: got alias %q for an identifier", meta.Name, field.Name, alias)
				}
				continue
			}
			got, ok := aliasparse.Strip(alias, meta.Name)
			if !ok || got != field.Name {
				t.Errorf("%s.%s: got %q, %v after stripping %q", meta.Name, field.Name, got, ok, alias)
			}
		}
	}
	for _, id := range []string{"uid", "external_id", "__typename", "_meta", "_config"} {
		if compiler.NeedsAlias(id) {
			t.Errorf("got NeedsAlias(%q) true, want false", id)
		}
	}
}
