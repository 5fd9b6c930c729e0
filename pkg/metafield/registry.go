// ABOUTME: Definition registry caching resolved metafield types
// ABOUTME: Process-lifetime cache keyed by namespace:key, no eviction

package metafield

import (
	"fmt"
	"sync"
)

// Registry remembers the schema definition resolved for each (namespace, key)
// pair so repeated writes do not refetch it. Entries are immutable once
// stored and live for the registry's lifetime; a schema type change on the
// remote after the first fetch is not observed. Safe for concurrent use;
// racing fetches for the same key are allowed to both store, last writer wins.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty definition registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

func cacheKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s", namespace, key)
}

// Get returns the cached definition for namespace and key, if any.
func (r *Registry) Get(namespace, key string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[cacheKey(namespace, key)]
	return def, ok
}

// Put stores a definition under its namespace and key.
func (r *Registry) Put(def *Definition) {
	if def == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[cacheKey(def.Namespace, def.Key)] = def
}

// Len returns the number of cached definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Reset drops every cached definition. Intended for tests and for long-lived
// hosts that knowingly changed remote schema.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]*Definition)
}
