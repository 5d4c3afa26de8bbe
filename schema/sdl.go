package schema

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// LoadSDL parses a schema definition file with gqlparser.
func LoadSDL(name, sdl string) (*ast.Schema, error) {
	s, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
	if err != nil {
		return nil, errors.Wrapf(err, "loading schema %s", name)
	}
	return s, nil
}

// FromSDL parses sdl and converts it into the introspection model, so a
// schema file can stand in for a live introspection round trip.
func FromSDL(name, sdl string) (*Introspection, error) {
	s, err := LoadSDL(name, sdl)
	if err != nil {
		return nil, err
	}
	return FromAST(s), nil
}

// FromAST converts a gqlparser schema into the introspection model.
func FromAST(s *ast.Schema) *Introspection {
	in := &Introspection{}
	if s.Query != nil {
		in.QueryType = &NamedTypeRef{Name: s.Query.Name}
	}
	if s.Mutation != nil {
		in.MutationType = &NamedTypeRef{Name: s.Mutation.Name}
	}

	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := s.Types[name]
		ft := FullType{Kind: string(def.Kind), Name: def.Name}
		switch def.Kind {
		case ast.Object, ast.Interface:
			for _, f := range def.Fields {
				if len(f.Name) > 1 && f.Name[:2] == "__" {
					continue
				}
				ft.Fields = append(ft.Fields, Field{
					Name: f.Name,
					Args: convertArguments(s, f.Arguments),
					Type: convertType(s, f.Type),
				})
			}
			for _, i := range def.Interfaces {
				ft.Interfaces = append(ft.Interfaces, TypeRef{Kind: KindInterface, Name: i})
			}
		case ast.InputObject:
			for _, f := range def.Fields {
				ft.InputFields = append(ft.InputFields, InputValue{
					Name: f.Name,
					Type: convertType(s, f.Type),
				})
			}
		case ast.Enum:
			for _, v := range def.EnumValues {
				ft.EnumValues = append(ft.EnumValues, EnumValue{Name: v.Name})
			}
		}
		if def.Kind == ast.Interface || def.Kind == ast.Union {
			for _, pt := range s.GetPossibleTypes(def) {
				ft.PossibleTypes = append(ft.PossibleTypes, TypeRef{Kind: KindObject, Name: pt.Name})
			}
			sort.Slice(ft.PossibleTypes, func(i, j int) bool {
				return ft.PossibleTypes[i].Name < ft.PossibleTypes[j].Name
			})
		}
		in.Types = append(in.Types, ft)
	}
	return in
}

func convertArguments(s *ast.Schema, args ast.ArgumentDefinitionList) []InputValue {
	out := make([]InputValue, 0, len(args))
	for _, a := range args {
		iv := InputValue{Name: a.Name, Type: convertType(s, a.Type)}
		if a.DefaultValue != nil {
			v := a.DefaultValue.String()
			iv.DefaultValue = &v
		}
		out = append(out, iv)
	}
	return out
}

func convertType(s *ast.Schema, t *ast.Type) TypeRef {
	if t.NonNull {
		inner := *t
		inner.NonNull = false
		of := convertType(s, &inner)
		return TypeRef{Kind: KindNonNull, OfType: &of}
	}
	if t.Elem != nil {
		of := convertType(s, t.Elem)
		return TypeRef{Kind: KindList, OfType: &of}
	}
	ref := TypeRef{Name: t.NamedType}
	if def, ok := s.Types[t.NamedType]; ok {
		ref.Kind = string(def.Kind)
	}
	return ref
}
