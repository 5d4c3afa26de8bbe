package schema

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/dgryski/go-farm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Registry caches extracted schemas by version and publishes the current
// one. Snapshots are never modified after publication, so compilers holding
// an older snapshot keep working while a new version is loaded.
type Registry struct {
	conventions Conventions
	logger      *zap.Logger
	versions    *ristretto.Cache[string, *Schema]
	current     atomic.Pointer[Schema]
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for load and warning messages.
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithConventions overrides the naming conventions used for extraction.
func WithConventions(c Conventions) RegistryOption {
	return func(r *Registry) {
		r.conventions = c.withDefaults()
	}
}

// NewRegistry returns a registry keeping up to maxVersions extracted
// schemas.
func NewRegistry(maxVersions int64, opts ...RegistryOption) (*Registry, error) {
	if maxVersions <= 0 {
		maxVersions = 8
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *Schema]{
		NumCounters: maxVersions * 10,
		MaxCost:     maxVersions,
		BufferItems: 64,

		// Each version costs 1, so MaxCost counts versions, not bytes.
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating schema cache")
	}
	r := &Registry{
		conventions: DefaultConventions(),
		logger:      zap.NewNop(),
		versions:    cache,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Current returns the last published schema, or nil before the first load.
func (r *Registry) Current() *Schema {
	return r.current.Load()
}

// Load extracts raw introspection JSON as schema version and publishes it.
// An empty version is replaced by a fingerprint of raw.
func (r *Registry) Load(version string, raw []byte) (*Schema, error) {
	if version == "" {
		version = fingerprint(raw)
	}
	if s, ok := r.cached(version); ok {
		return s, nil
	}
	in, err := ParseIntrospection(raw)
	if err != nil {
		return nil, err
	}
	return r.publish(version, in)
}

// LoadIntrospection publishes an already decoded introspection result.
func (r *Registry) LoadIntrospection(version string, in *Introspection) (*Schema, error) {
	if version == "" {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "fingerprinting introspection result")
		}
		version = fingerprint(raw)
	}
	if s, ok := r.cached(version); ok {
		return s, nil
	}
	return r.publish(version, in)
}

func (r *Registry) cached(version string) (*Schema, bool) {
	s, ok := r.versions.Get(version)
	if !ok {
		return nil, false
	}
	r.logger.Debug("schema version served from cache", zap.String("version", version))
	r.current.Store(s)
	return s, true
}

func (r *Registry) publish(version string, in *Introspection) (*Schema, error) {
	s, err := Extract(in, r.conventions)
	if err != nil {
		r.logger.Error("schema extraction failed", zap.String("version", version), zap.Error(err))
		return nil, err
	}
	s.Version = version
	for _, w := range s.Warnings {
		r.logger.Warn("schema extraction warning", zap.String("version", version), zap.String("warning", w))
	}
	r.versions.Set(version, s, 1)
	r.versions.Wait()
	r.current.Store(s)
	r.logger.Info("schema version loaded",
		zap.String("version", version),
		zap.Int("object_types", len(s.Objects)),
	)
	return s, nil
}

// Close releases the version cache.
func (r *Registry) Close() {
	r.versions.Close()
}

func fingerprint(raw []byte) string {
	return fmt.Sprintf("%016x", farm.Fingerprint64(raw))
}
