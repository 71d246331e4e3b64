// Package tagset loads tag type declarations from definition files and
// serves them to the mapping layer.
//
// A tag set is a TOML or YAML document declaring tag types, their attributes
// with defaults and alias declarations, and the meta-tags each type carries.
// Loading produces an Index, which implements both sides of the mapping
// contract: mts.TypeResolver for type lookup and mts.MetaSource for meta-tag
// enumeration. Types may also be registered programmatically, which is how
// generated registration files and tests populate an Index.
package tagset

import (
	"sort"
	"sync"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/types"
)

// Index is a registry of tag types and the meta-tag instances declared on
// them. It is safe for concurrent use; reads far outnumber writes once a
// program has loaded its definitions.
type Index struct {
	mu    sync.RWMutex
	types map[string]*types.TagType
	meta  map[string][]types.Instance
}

var (
	_ mts.TypeResolver = (*Index)(nil)
	_ mts.MetaSource   = (*Index)(nil)
)

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		types: make(map[string]*types.TagType),
		meta:  make(map[string][]types.Instance),
	}
}

// Register adds a tag type to the index. Registering a name twice is an
// error; published tag types are immutable.
func (x *Index) Register(t *types.TagType) error {
	if t == nil || t.Name() == "" {
		return errors.NewConfigurationError("cannot register a tag type without a name")
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.types[t.Name()]; ok {
		return errors.Wrapf(errors.ErrAlreadyExists, "tag type %s", t.Name())
	}
	x.types[t.Name()] = t
	return nil
}

// AddMeta declares a meta-tag instance on a registered type. Declaration
// order is preserved; mapping trees grow their levels in this order.
func (x *Index) AddMeta(typeName string, inst types.Instance) error {
	if inst == nil || inst.Type() == nil {
		return errors.NewConfigurationError("cannot declare an untyped meta-tag on %s", typeName)
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if _, ok := x.types[typeName]; !ok {
		return errors.Wrapf(errors.ErrNotFound,
			"cannot declare meta-tag @%s on unregistered type %s", inst.Type().Name(), typeName)
	}
	x.meta[typeName] = append(x.meta[typeName], inst)
	return nil
}

// ResolveType implements mts.TypeResolver.
func (x *Index) ResolveType(name string) (*types.TagType, error) {
	x.mu.RLock()
	t, ok := x.types[name]
	x.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "tag type %q", name)
	}
	return t, nil
}

// DeclaredTags implements mts.MetaSource.
func (x *Index) DeclaredTags(t *types.TagType) ([]types.Instance, error) {
	if t == nil {
		return nil, nil
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	declared := x.meta[t.Name()]
	if len(declared) == 0 {
		return nil, nil
	}
	out := make([]types.Instance, len(declared))
	copy(out, declared)
	return out, nil
}

// MustType returns a registered type or panics. Intended for generated
// registration code and tests, where absence is a programming error.
func (x *Index) MustType(name string) *types.TagType {
	t, err := x.ResolveType(name)
	if err != nil {
		panic(err)
	}
	return t
}

// TypeNames returns every registered type name in sorted order.
func (x *Index) TypeNames() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	names := make([]string, 0, len(x.types))
	for name := range x.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of registered types.
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.types)
}

var (
	defaultIndex     *Index
	defaultIndexOnce sync.Once
)

// Default returns the process-wide index. Programs that declare tag types
// globally, such as generated registration files, share it; anything larger
// should carry its own Index.
func Default() *Index {
	defaultIndexOnce.Do(func() {
		defaultIndex = NewIndex()
	})
	return defaultIndex
}
