// Package registry caches built mapping trees. Trees are immutable and build
// at most once per (filter, root type) key; both successes and failures are
// kept permanently, so a misconfigured tag type fails every later query the
// same way without being retried.
package registry

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/teranos/tagx/logger"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/mapping"
)

// Registry is a concurrency-safe mapping-tree cache over one resolver and
// one meta source.
type Registry struct {
	resolver mts.TypeResolver
	meta     mts.MetaSource
	log      *zap.SugaredLogger

	mu     sync.RWMutex
	trees  map[string]*entry
	flight singleflight.Group
}

type entry struct {
	tree *mapping.Tree
	err  error
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger replaces the component logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Registry) {
		r.log = log
	}
}

// New returns an empty registry resolving types through resolver and
// enumerating meta-tags through meta.
func New(resolver mts.TypeResolver, meta mts.MetaSource, opts ...Option) *Registry {
	r := &Registry{
		resolver: resolver,
		meta:     meta,
		log:      logger.ComponentLogger("mts.registry"),
		trees:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TreeFor returns the mapping tree for the named root tag type under the
// given filter, building it on first use. A nil filter means mts.PlainFilter.
// Concurrent first calls for one key share a single build.
func (r *Registry) TreeFor(typeName string, filter mts.Filter) (*mapping.Tree, error) {
	if filter == nil {
		filter = mts.PlainFilter
	}
	k := cacheKey(filter, typeName)

	r.mu.RLock()
	e, ok := r.trees[k]
	r.mu.RUnlock()
	if ok {
		return e.tree, e.err
	}

	v, err, _ := r.flight.Do(k, func() (interface{}, error) {
		// A finished flight stores before returning; re-check so late
		// callers never rebuild.
		r.mu.RLock()
		e, ok := r.trees[k]
		r.mu.RUnlock()
		if ok {
			return e.tree, e.err
		}
		return r.build(k, typeName, filter)
	})
	if err != nil {
		return nil, err
	}
	return v.(*mapping.Tree), nil
}

func (r *Registry) build(k, typeName string, filter mts.Filter) (*mapping.Tree, error) {
	start := time.Now()
	tree, err := mapping.NewBuilder(r.resolver, r.meta, mapping.WithFilter(filter)).Build(typeName)

	r.mu.Lock()
	r.trees[k] = &entry{tree: tree, err: err}
	r.mu.Unlock()

	if err != nil {
		r.log.Debugw("mapping tree build failed",
			logger.FieldTagType, typeName,
			logger.FieldFilter, filter.Key(),
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
			logger.FieldError, err)
		return nil, err
	}
	r.log.Debugw("mapping tree built",
		logger.FieldTagType, typeName,
		logger.FieldFilter, filter.Key(),
		logger.FieldMappings, tree.Size(),
		logger.FieldFingerprint, mapping.Fingerprint(tree),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return tree, nil
}

// Size returns the number of cached entries, including cached failures.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trees)
}

func cacheKey(filter mts.Filter, typeName string) string {
	return filter.Key() + "\x00" + typeName
}
