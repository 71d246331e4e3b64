package testing

import (
	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

// Fixture is an in-memory tag-type catalog implementing mts.TypeResolver and
// mts.MetaSource. Tests build hierarchies programmatically instead of loading
// tag-set files.
type Fixture struct {
	types map[string]*types.TagType
	meta  map[string][]types.Instance
}

// NewFixture returns an empty fixture.
func NewFixture() *Fixture {
	return &Fixture{
		types: make(map[string]*types.TagType),
		meta:  make(map[string][]types.Instance),
	}
}

// Add registers a tag type. Returns the fixture for chaining.
func (f *Fixture) Add(t *types.TagType) *Fixture {
	f.types[t.Name()] = t
	return f
}

// MetaTag declares inst as a meta-tag on the named type, in call order.
func (f *Fixture) MetaTag(on string, inst types.Instance) *Fixture {
	f.meta[on] = append(f.meta[on], inst)
	return f
}

// Type returns a registered type, or nil.
func (f *Fixture) Type(name string) *types.TagType {
	return f.types[name]
}

// ResolveType implements mts.TypeResolver.
func (f *Fixture) ResolveType(name string) (*types.TagType, error) {
	if t, ok := f.types[name]; ok {
		return t, nil
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "tag type %q", name)
}

// DeclaredTags implements mts.MetaSource.
func (f *Fixture) DeclaredTags(t *types.TagType) ([]types.Instance, error) {
	return f.meta[t.Name()], nil
}

// RouteType is the canonical mirror-pair fixture: web.Route declares value
// and path as mutual aliases plus an unaliased method attribute.
func RouteType() *types.TagType {
	return types.NewTagType("web.Route", []types.Attribute{
		{Name: "value", Type: types.StringType, Default: "", Alias: &types.AliasSpec{Attribute: "path"}},
		{Name: "path", Type: types.StringType, Default: "", Alias: &types.AliasSpec{Attribute: "value"}},
		{Name: "method", Type: types.StringType, Default: ""},
	})
}

// GetType is a shorthand tag whose value attribute overrides web.Route's
// path. Register alongside RouteType and a Route meta instance.
func GetType() *types.TagType {
	return types.NewTagType("web.Get", []types.Attribute{
		{Name: "value", Type: types.StringType, Default: "", Alias: &types.AliasSpec{Type: "web.Route", Attribute: "path"}},
	})
}

// CacheableType declares a value attribute and a ttl with default 0.
func CacheableType() *types.TagType {
	return types.NewTagType("cache.Cacheable", []types.Attribute{
		{Name: "value", Type: types.StringType, Default: ""},
		{Name: "ttl", Type: types.IntType, Default: int64(0)},
	})
}

// ShortCacheType carries no attributes of its own; pair it with a Cacheable
// meta instance fixing ttl.
func ShortCacheType() *types.TagType {
	return types.NewTagType("cache.ShortCache", nil)
}

// WebFixture wires the Route/Get hierarchy: web.Get meta-tagged with
// web.Route(method: "GET").
func WebFixture() *Fixture {
	f := NewFixture().Add(RouteType()).Add(GetType())
	f.MetaTag("web.Get", types.NewInstance(f.Type("web.Route"), map[string]any{
		"method": "GET",
	}))
	return f
}

// CacheFixture wires cache.ShortCache meta-tagged with
// cache.Cacheable(ttl: 5).
func CacheFixture() *Fixture {
	f := NewFixture().Add(CacheableType()).Add(ShortCacheType())
	f.MetaTag("cache.ShortCache", types.NewInstance(f.Type("cache.Cacheable"), map[string]any{
		"ttl": 5,
	}))
	return f
}
