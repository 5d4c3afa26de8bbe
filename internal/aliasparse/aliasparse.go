// Package aliasparse formats and parses the type-scoped response keys used
// when several object types share one selection position.
package aliasparse

import (
	"strings"

	"github.com/llehouerou/skylark-graphql/types"
)

// ParsedAlias represents a parsed type-scoped response key.
type ParsedAlias struct {
	// TypeName is the owning object type.
	TypeName string
	// FieldName is the natural field name.
	FieldName string
}

// Format returns the alias for field owned by typeName.
//
//	Format("Episode", "title") -> "__Episode__title"
func Format(typeName, field string) string {
	return types.AliasSeparator + typeName + types.AliasSeparator + field
}

// Prefix returns the key prefix used by every alias owned by typeName.
func Prefix(typeName string) string {
	return types.AliasSeparator + typeName + types.AliasSeparator
}

// Strip removes the prefix of typeName from key. It reports false when key
// is not aliased for typeName, in which case key is returned unchanged.
//
//	Strip("__Episode__title", "Episode") -> "title", true
//	Strip("__Movie__title", "Episode")   -> "__Movie__title", false
//	Strip("uid", "Episode")              -> "uid", false
func Strip(key, typeName string) (string, bool) {
	if typeName == "" {
		return key, false
	}
	prefix := Prefix(typeName)
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
		return key, false
	}
	return key[len(prefix):], true
}

// Parse splits an aliased key without knowing its type. Type names may not
// contain the separator, so the first separator after the leading one ends
// the type name. Keys that are not aliased return ok=false.
//
//	Parse("__Episode__title") -> {TypeName: "Episode", FieldName: "title"}, true
//	Parse("__typename")       -> {}, false
func Parse(key string) (ParsedAlias, bool) {
	if !strings.HasPrefix(key, types.AliasSeparator) {
		return ParsedAlias{}, false
	}
	remaining := key[len(types.AliasSeparator):]
	idx := strings.Index(remaining, types.AliasSeparator)
	if idx <= 0 {
		return ParsedAlias{}, false
	}
	field := remaining[idx+len(types.AliasSeparator):]
	if field == "" {
		return ParsedAlias{}, false
	}
	return ParsedAlias{TypeName: remaining[:idx], FieldName: field}, true
}
