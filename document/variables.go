package document

import (
	"io"
)

// writeVariableDefinitions writes a minified variable list in declaration
// order, which is part of the document's deterministic shape.
//
// E.g. []VariableDefinition{{"uid", "String", nil}, {"ignoreAvailability", "Boolean", BooleanValue(true)}}
// -> "$uid:String,$ignoreAvailability:Boolean=true".
func writeVariableDefinitions(w io.Writer, vars []VariableDefinition) {
	for i, v := range vars {
		if i != 0 {
			_, _ = io.WriteString(w, ",")
		}
		_, _ = io.WriteString(w, "$")
		_, _ = io.WriteString(w, v.Name)
		_, _ = io.WriteString(w, ":")
		_, _ = io.WriteString(w, v.Type)
		if v.Default != nil {
			_, _ = io.WriteString(w, "=")
			writeValue(w, v.Default)
		}
	}
}

// VariableTypes returns the declared variables as name → type, the shape
// upstream caches key on.
func (d *Document) VariableTypes() map[string]string {
	out := make(map[string]string, len(d.Variables))
	for _, v := range d.Variables {
		out[v.Name] = v.Type
	}
	return out
}

// HasVariable reports whether name is declared.
func (d *Document) HasVariable(name string) bool {
	for _, v := range d.Variables {
		if v.Name == name {
			return true
		}
	}
	return false
}
