// Package config loads skylarkgql settings from flags, environment
// variables and an optional config file through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/llehouerou/skylark-graphql/schema"
)

// EnvPrefix prefixes every environment variable, e.g. SKYLARK_ENDPOINT or
// SKYLARK_CONVENTIONS_SEARCH_FIELD.
const EnvPrefix = "SKYLARK"

// Keys understood by Load.
const (
	KeyConfigFile     = "config"
	KeyEndpoint       = "endpoint"
	KeyToken          = "token"
	KeySchemaFile     = "schema_file"
	KeySchemaVersion  = "schema_version"
	KeySchemaVersions = "schema_versions"
	KeyPageSize       = "page_size"
	KeyDebug          = "debug"
)

// DefaultPageSize matches the compiler's default.
const DefaultPageSize = 50

// ErrInvalid is returned for settings that fail validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds every setting.
type Config struct {
	Endpoint      string `mapstructure:"endpoint"`
	Token         string `mapstructure:"token"`
	SchemaFile    string `mapstructure:"schema_file"`
	SchemaVersion string `mapstructure:"schema_version"`
	// SchemaVersions caps the schema versions the registry keeps.
	SchemaVersions int                `mapstructure:"schema_versions"`
	PageSize       int                `mapstructure:"page_size"`
	Debug          bool               `mapstructure:"debug"`
	Conventions    schema.Conventions `mapstructure:"conventions"`
}

// SetDefaults registers the default of every key on v. Keys must be known
// to v for AutomaticEnv to reach them through Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyEndpoint, "")
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeySchemaFile, "")
	v.SetDefault(KeySchemaVersion, "")
	v.SetDefault(KeySchemaVersions, 8)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeyDebug, false)

	conv := schema.DefaultConventions()
	v.SetDefault("conventions.metadata_interface", conv.MetadataInterface)
	v.SetDefault("conventions.global_input_suffix", conv.GlobalInputSuffix)
	v.SetDefault("conventions.generic_get_field", conv.GenericGetField)
	v.SetDefault("conventions.search_field", conv.SearchField)
	v.SetDefault("conventions.list_dimensions_field", conv.ListDimensionsField)
	v.SetDefault("conventions.get_dimension_field", conv.GetDimensionField)
}

// Load reads the configuration from v. Environment variables override the
// config file named by the "config" key; flags bound to v override both.
// A nil v reads the environment and defaults only.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalid, c.PageSize)
	}
	if c.SchemaVersions <= 0 {
		return fmt.Errorf("%w: schema_versions must be positive, got %d", ErrInvalid, c.SchemaVersions)
	}
	if c.Endpoint == "" && c.SchemaFile == "" {
		return fmt.Errorf("%w: one of endpoint or schema_file is required", ErrInvalid)
	}
	return nil
}
