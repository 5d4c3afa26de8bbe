package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	skylark "github.com/llehouerou/skylark-graphql"
	"github.com/llehouerou/skylark-graphql/config"
	"github.com/llehouerou/skylark-graphql/schema"
)

func newClient(cfg *config.Config, logger *zap.Logger) *skylark.Client {
	return skylark.NewClient(cfg.Endpoint, nil).
		WithToken(cfg.Token).
		WithDebug(cfg.Debug).
		WithLogger(logger)
}

// loadSchema reads the schema from cfg.SchemaFile when set and introspects
// cfg.Endpoint otherwise. Files ending in .graphql or .graphqls are SDL;
// anything else is an introspection result.
func loadSchema(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*schema.Schema, error) {
	registry, err := schema.NewRegistry(int64(cfg.SchemaVersions),
		schema.WithLogger(logger),
		schema.WithConventions(cfg.Conventions),
	)
	if err != nil {
		return nil, err
	}
	defer registry.Close()

	if cfg.SchemaFile == "" {
		raw, err := newClient(cfg, logger).Introspect(ctx)
		if err != nil {
			return nil, fmt.Errorf("introspecting %s: %w", cfg.Endpoint, err)
		}
		return registry.Load(cfg.SchemaVersion, raw)
	}

	raw, err := os.ReadFile(cfg.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(cfg.SchemaFile)) {
	case ".graphql", ".graphqls":
		in, err := schema.FromSDL(filepath.Base(cfg.SchemaFile), string(raw))
		if err != nil {
			return nil, err
		}
		return registry.LoadIntrospection(cfg.SchemaVersion, in)
	default:
		return registry.Load(cfg.SchemaVersion, raw)
	}
}
