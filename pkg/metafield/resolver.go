// ABOUTME: Type resolution for metafield writes
// ABOUTME: Orders schema truth over instance truth over caller override

package metafield

import (
	"context"

	"github.com/nainya/metawrite/internal/logger"
	"github.com/nainya/metawrite/internal/metrics"
)

// DefinitionLookup fetches the schema-level definition for a namespace and
// key. A (nil, nil) return means no definition exists.
type DefinitionLookup interface {
	FetchDefinition(ctx context.Context, namespace, key string) (*Definition, error)
}

// ExistingLookup fetches the metafield currently stored on a specific owner
// entity. A (nil, nil) return means the owner has no such metafield.
type ExistingLookup interface {
	FetchMetafield(ctx context.Context, ownerID, namespace, key string) (*Metafield, error)
}

// Resolver decides the effective type for a write. A definition is
// authoritative and stable, an existing value is entity-specific, and a
// caller-supplied type is the least trustworthy source, so resolution runs
// cache/definition first, existing value second, explicit override last.
type Resolver struct {
	registry    *Registry
	definitions DefinitionLookup
	existing    ExistingLookup
	log         *logger.Logger
	metrics     *metrics.Metrics
}

// NewResolver creates a resolver over the given lookup collaborators. Either
// lookup may be nil, in which case that resolution step is skipped.
func NewResolver(registry *Registry, definitions DefinitionLookup, existing ExistingLookup) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Resolver{
		registry:    registry,
		definitions: definitions,
		existing:    existing,
		log:         logger.NewNop(),
	}
}

// SetLogger replaces the resolver's logger. A nil logger restores the no-op.
func (r *Resolver) SetLogger(log *logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	r.log = log
}

// SetMetrics attaches Prometheus metrics to the resolver.
func (r *Resolver) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Registry exposes the definition cache the resolver populates.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve determines the effective metafield type for a write, short-circuiting
// on the first source that yields one:
//
//  1. explicit type with force set
//  2. cached definition
//  3. remote definition (cached on hit)
//  4. existing metafield on this owner (not cached: entity-specific)
//  5. explicit type without force
//
// Lookup failures in steps 3 and 4 degrade to "absent" so a transient fetch
// error falls through to the next source instead of aborting the write.
func (r *Resolver) Resolve(ctx context.Context, ownerID, namespace, key string, explicit *Type, force bool) (Type, error) {
	rlog := r.log.ResolverLogger(namespace, key)

	if force && explicit != nil {
		rlog.Debug("Using forced explicit type").Str("type", explicit.String()).Send()
		return *explicit, nil
	}

	if def, ok := r.registry.Get(namespace, key); ok {
		r.metrics.RecordCacheHit()
		return def.Type, nil
	}
	r.metrics.RecordCacheMiss()

	if r.definitions != nil {
		def, err := r.definitions.FetchDefinition(ctx, namespace, key)
		switch {
		case err != nil:
			rlog.Warn("Definition lookup failed, falling through").Err(err).Send()
		case def != nil:
			r.registry.Put(def)
			r.log.LogDefinitionFetch(namespace, key, true)
			return def.Type, nil
		default:
			r.log.LogDefinitionFetch(namespace, key, false)
		}
	}

	if r.existing != nil {
		mf, err := r.existing.FetchMetafield(ctx, ownerID, namespace, key)
		switch {
		case err != nil:
			rlog.Warn("Existing metafield lookup failed, falling through").Err(err).Send()
		case mf != nil:
			rlog.Debug("Adopting type of existing metafield").Str("type", mf.Type.String()).Send()
			return mf.Type, nil
		}
	}

	if explicit != nil {
		rlog.Debug("Falling back to explicit type").Str("type", explicit.String()).Send()
		return *explicit, nil
	}

	return Type{}, &UndeterminableError{Namespace: namespace, Key: key}
}
