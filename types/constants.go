package types

// GraphQL and Skylark constants used throughout the codebase.
// Centralizing these prevents typos and makes refactoring safer.
const (
	// TypenameField is the GraphQL introspection field used for type
	// discrimination in unions and interfaces.
	TypenameField = "__typename"

	// FragmentOnPrefix is the full prefix for typed inline fragments
	// (e.g., "... on Episode").
	FragmentOnPrefix = "... on "

	// AliasSeparator wraps the owning type name in a type-scoped alias,
	// e.g. "__Episode__title".
	AliasSeparator = "__"
)

// Built-in Skylark object types.
const (
	AvailabilityType    = "Availability"
	SetType             = "SkylarkSet"
	ImageType           = "SkylarkImage"
	AudienceSegmentType = "SkylarkAudienceSegment"
)

// System fields are present on every object type and carry no language scoping.
const (
	UIDField              = "uid"
	ExternalIDField       = "external_id"
	DataSourceIDField     = "data_source_id"
	DataSourceFieldsField = "data_source_fields"
)

// SystemFields lists the fields classified as system, in selection order.
var SystemFields = []string{UIDField, ExternalIDField, DataSourceIDField, DataSourceFieldsField}

// IsSystemField reports whether name is one of SystemFields.
func IsSystemField(name string) bool {
	for _, f := range SystemFields {
		if f == name {
			return true
		}
	}
	return false
}
