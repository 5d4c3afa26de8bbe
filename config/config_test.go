package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/llehouerou/skylark-graphql/config"
	"github.com/llehouerou/skylark-graphql/schema"
)

func TestLoad_defaults(t *testing.T) {
	t.Setenv("SKYLARK_ENDPOINT", "https://api.example.skylark/graphql")

	got, err := config.Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	want := &config.Config{
		Endpoint:       "https://api.example.skylark/graphql",
		SchemaVersions: 8,
		PageSize:       config.DefaultPageSize,
		Conventions:    schema.DefaultConventions(),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "skylark.yaml")
	yaml := `endpoint: https://file.example/graphql
token: file-token
page_size: 20
conventions:
  search_field: searchObjects
`
	if err := os.WriteFile(file, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SKYLARK_TOKEN", "env-token")
	t.Setenv("SKYLARK_CONVENTIONS_METADATA_INTERFACE", "Content")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String(config.KeyConfigFile, "", "")
	flags.Int(config.KeyPageSize, config.DefaultPageSize, "")
	if err := flags.Parse([]string{"--config", file, "--page_size", "10"}); err != nil {
		t.Fatal(err)
	}
	v := viper.New()
	if err := v.BindPFlags(flags); err != nil {
		t.Fatal(err)
	}

	got, err := config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"endpoint from file", got.Endpoint, "https://file.example/graphql"},
		{"token from env over file", got.Token, "env-token"},
		{"page size from flag over file", got.PageSize, 10},
		{"convention from file", got.Conventions.SearchField, "searchObjects"},
		{"convention from env", got.Conventions.MetadataInterface, "Content"},
		{"convention default", got.Conventions.GlobalInputSuffix, "GlobalInput"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_missingConfigFile(t *testing.T) {
	v := viper.New()
	v.Set(config.KeyConfigFile, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := config.Load(v); err == nil {
		t.Fatal("got error: nil, want: non-nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := config.Config{
		Endpoint:       "https://api.example/graphql",
		PageSize:       50,
		SchemaVersions: 8,
	}
	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", modify: func(*config.Config) {}},
		{name: "schema file only", modify: func(c *config.Config) {
			c.Endpoint = ""
			c.SchemaFile = "schema.json"
		}},
		{name: "no source", modify: func(c *config.Config) { c.Endpoint = "" }, wantErr: true},
		{name: "zero page size", modify: func(c *config.Config) { c.PageSize = 0 }, wantErr: true},
		{name: "negative page size", modify: func(c *config.Config) { c.PageSize = -1 }, wantErr: true},
		{name: "zero schema versions", modify: func(c *config.Config) { c.SchemaVersions = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, config.ErrInvalid) {
				t.Errorf("got error %v, want it to wrap ErrInvalid", err)
			}
		})
	}
}
