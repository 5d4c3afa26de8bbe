package compiler_test

import (
	"testing"

	"github.com/llehouerou/skylark-graphql/schema"
)

func extractSDL(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	in, err := schema.FromSDL("inline.graphql", sdl)
	if err != nil {
		t.Fatalf("failed to load SDL: %v", err)
	}
	s, err := schema.Extract(in, schema.DefaultConventions())
	if err != nil {
		t.Fatalf("failed to extract SDL: %v", err)
	}
	return s
}
