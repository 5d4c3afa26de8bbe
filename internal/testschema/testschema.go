// Package testschema embeds a Skylark-shaped schema shared by tests.
package testschema

import (
	_ "embed"
	"testing"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/llehouerou/skylark-graphql/schema"
)

// SDL is the fixture schema. It declares Episode, Season, Movie, SkylarkSet,
// SkylarkImage, Availability and SkylarkAudienceSegment as possible types
// of Metadata, with uneven operation coverage: Movie has no delete or
// publish root field and SkylarkAudienceSegment cannot be created.
//
//go:embed skylark.graphql
var SDL string

// Name is the source name used when loading SDL.
const Name = "skylark.graphql"

// AST loads the fixture with gqlparser.
func AST(t testing.TB) *ast.Schema {
	t.Helper()
	s, err := schema.LoadSDL(Name, SDL)
	if err != nil {
		t.Fatalf("failed to load fixture schema: %v", err)
	}
	return s
}

// Introspection converts the fixture into the introspection model.
func Introspection(t testing.TB) *schema.Introspection {
	t.Helper()
	return schema.FromAST(AST(t))
}

// Schema extracts the fixture with the default conventions.
func Schema(t testing.TB) *schema.Schema {
	t.Helper()
	s, err := schema.Extract(Introspection(t), schema.DefaultConventions())
	if err != nil {
		t.Fatalf("failed to extract fixture schema: %v", err)
	}
	return s
}

// Object returns the metadata of the named fixture type.
func Object(t testing.TB, s *schema.Schema, name string) *schema.ObjectTypeMeta {
	t.Helper()
	m, ok := s.Object(name)
	if !ok {
		t.Fatalf("fixture has no object type %q", name)
	}
	return m
}
