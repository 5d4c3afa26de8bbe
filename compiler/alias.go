package compiler

import (
	"github.com/llehouerou/skylark-graphql/internal/aliasparse"
	"github.com/llehouerou/skylark-graphql/pkg/jsonutil"
	"github.com/llehouerou/skylark-graphql/types"
)

// NeedsAlias reports whether field must carry a type-scoped alias when it
// is selected in a position shared by several object types. Identifiers
// and the shared system blocks are representation-identical on every type
// and are never aliased.
func NeedsAlias(field string) bool {
	switch field {
	case types.UIDField, types.ExternalIDField, types.TypenameField, metaField, configField:
		return false
	}
	return true
}

// AliasFor returns the response key of field owned by typeName in a
// polymorphic position.
func AliasFor(typeName, field string) string {
	if !NeedsAlias(field) {
		return field
	}
	return aliasparse.Format(typeName, field)
}

// DealiasObject strips the alias prefix of obj's own __typename from its
// keys. Nested objects are left alone; see jsonutil.Dealias for a full
// response walk.
func DealiasObject(obj map[string]any) map[string]any {
	return jsonutil.DealiasObject(obj)
}

// keySet tracks the response keys of one selection position. Two different
// fields may share a key only if they are the same field.
type keySet map[string]fieldOwner

type fieldOwner struct {
	objectType string
	field      string
}

func (k keySet) claim(key, objectType, field string) error {
	if prev, ok := k[key]; ok && prev.field != field {
		return compileErr(ErrAliasCollision, objectType, field,
			"response key "+key+" is already used by "+prev.objectType+"."+prev.field)
	}
	k[key] = fieldOwner{objectType: objectType, field: field}
	return nil
}
