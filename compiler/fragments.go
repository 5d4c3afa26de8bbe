package compiler

import (
	"github.com/llehouerou/skylark-graphql/document"
	"github.com/llehouerou/skylark-graphql/schema"
	"github.com/llehouerou/skylark-graphql/types"
)

// Shared selection blocks and argument names.
const (
	metaField   = "_meta"
	configField = "_config"

	languageArg           = "language"
	ignoreAvailabilityArg = "ignore_availability"
	uidArg                = "uid"
	externalIDArg         = "external_id"
	nextTokenArg          = "next_token"
	limitArg              = "limit"
	orderArg              = "order"

	languageVar           = "language"
	ignoreAvailabilityVar = "ignoreAvailability"
	uidVar                = "uid"
	externalIDVar         = "externalId"
	nextTokenVar          = "nextToken"
)

// languageFragment binds $language for operations scoped to one language.
// It is empty when no language is requested, when op takes no language
// argument, and always for the availability type, whose objects are not
// language scoped.
func languageFragment(objectType string, op *schema.Operation, language string) []binding {
	if language == "" || objectType == types.AvailabilityType {
		return nil
	}
	arg, ok := op.Argument(languageArg)
	if !ok {
		return nil
	}
	return []binding{{
		variable: document.VariableDefinition{Name: languageVar, Type: arg.Type},
		argument: languageArg,
		value:    language,
	}}
}

// ignoreAvailabilityFragment binds $ignoreAvailability with a default of
// true. Only direct per-type get roots take it; search and generic lookups
// always filter by availability on the server, and mutations never do.
func ignoreAvailabilityFragment(op *schema.Operation, isQueryRoot, searchOrGeneric bool, override *bool) []binding {
	if !isQueryRoot || searchOrGeneric {
		return nil
	}
	arg, ok := op.Argument(ignoreAvailabilityArg)
	if !ok {
		return nil
	}
	b := binding{
		variable: document.VariableDefinition{
			Name:    ignoreAvailabilityVar,
			Type:    arg.Type,
			Default: document.BooleanValue(true),
		},
		argument: ignoreAvailabilityArg,
	}
	if override != nil {
		b.value = *override
	}
	return []binding{b}
}

// SearchFilters are the availability filters a search runs under.
type SearchFilters struct {
	// Dimensions maps dimension slugs to value slugs.
	Dimensions map[string]string
	// TimeTravel is an RFC 3339 instant the search is evaluated at.
	TimeTravel string
}

func (f SearchFilters) active() bool {
	return len(f.Dimensions) > 0 || f.TimeTravel != ""
}

// searchAvailabilityFragment binds $ignoreAvailability for search. Unlike
// get, its default follows the filters: availability is ignored unless the
// caller asked for a dimension or time-travel view.
func searchAvailabilityFragment(op *schema.Operation, filters SearchFilters) []binding {
	arg, ok := op.Argument(ignoreAvailabilityArg)
	if !ok {
		return nil
	}
	return []binding{{
		variable: document.VariableDefinition{
			Name:    ignoreAvailabilityVar,
			Type:    arg.Type,
			Default: document.BooleanValue(!filters.active()),
		},
		argument: ignoreAvailabilityArg,
	}}
}

// identifierFragment binds $uid and $externalId when op accepts them.
func identifierFragment(op *schema.Operation, uid, externalID string) []binding {
	var out []binding
	if arg, ok := op.Argument(uidArg); ok {
		out = append(out, binding{
			variable: document.VariableDefinition{Name: uidVar, Type: arg.Type},
			argument: uidArg,
			value:    optional(uid),
		})
	}
	if arg, ok := op.Argument(externalIDArg); ok {
		out = append(out, binding{
			variable: document.VariableDefinition{Name: externalIDVar, Type: arg.Type},
			argument: externalIDArg,
			value:    optional(externalID),
		})
	}
	return out
}

// cursorFragment binds a String cursor variable to a listing's next_token.
func cursorFragment(name, token string) binding {
	return binding{
		variable: document.VariableDefinition{Name: name, Type: "String"},
		argument: nextTokenArg,
		value:    optional(token),
	}
}

// systemMetadataFragment is the audit block selected on every object.
func systemMetadataFragment() *document.Field {
	return document.Object(metaField,
		document.Leaf("available_languages"),
		document.Object("language_data", document.Leaves("language", "version")...),
		document.Object("global_data", document.Leaf("version")),
		document.Object("modified", document.Leaf("date")),
		document.Object("created", document.Leaf("date")),
		document.Leaf("published"),
	)
}

// configFragment is the display configuration block of an object type.
func configFragment() *document.Field {
	return document.Object(configField, document.Leaves("primary_field", "colour", "display_name")...)
}

// versionHistoryFragment selects the language and global version history.
func versionHistoryFragment() *document.Field {
	stamp := document.Object("created", document.Leaves("date", "user")...)
	return document.Object(metaField,
		document.Leaf("available_languages"),
		document.Object("language_data",
			document.Leaf("language"),
			document.Leaf("version"),
			document.Object("history", document.Leaf("language"), document.Leaf("version"), stamp),
		),
		document.Object("global_data",
			document.Leaf("version"),
			document.Object("history", document.Leaf("version"), stamp),
		),
	)
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
