package merged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tagx/errors"
	tagtest "github.com/teranos/tagx/internal/testing"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/synth"
	"github.com/teranos/tagx/mts/types"
)

func TestFilterAttributes(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Route"), map[string]any{"value": "/x", "method": "POST"})
	view := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	filtered := view.FilterAttributes(func(name string) bool {
		return name == "path" || name == "method"
	})

	path, err := filtered.GetString("path")
	require.NoError(t, err)
	assert.Equal(t, "/x", path)

	_, err = filtered.Value("value")
	require.Error(t, err)
	assert.True(t, errors.IsNoSuchAttribute(err), "filtered attributes read as unknown")

	// Filters compose; the original view is untouched.
	narrower := filtered.FilterAttributes(func(name string) bool { return name == "method" })
	_, err = narrower.Value("path")
	assert.True(t, errors.IsNoSuchAttribute(err))

	m, err := narrower.AsMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"method": "POST"}, m)

	v, err := view.GetString("value")
	require.NoError(t, err)
	assert.Equal(t, "/x", v)
}

func TestFilterDefaultValues(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Route"), map[string]any{"value": "/x"})
	view := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	m, err := view.FilterDefaultValues().AsMap()
	require.NoError(t, err)
	// The mirror winner serves both names, so both read as non-default.
	assert.Equal(t, map[string]any{"value": "/x", "path": "/x"}, m)
}

func TestFilterDefaultValuesKeepsConflicts(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Route"), map[string]any{"value": "/a", "path": "/b"})
	view := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	filtered := view.FilterDefaultValues()
	_, err := filtered.Value("value")
	require.Error(t, err)
	assert.True(t, errors.IsMirrorConflict(err), "a conflicted mirror stays visible so the error surfaces")
}

func TestFilterDefaultValuesRoundTrip(t *testing.T) {
	f := tagtest.CacheFixture()
	inst := types.NewInstance(f.Type("cache.Cacheable"), nil)
	view := getPresent(t, tagsOn(t, f, "svc", inst), "cache.Cacheable")

	m, err := view.FilterDefaultValues().AsMap()
	require.NoError(t, err)
	assert.Empty(t, m, "an all-default view filters to nothing")

	// Re-merging the filtered map reproduces the original values from the
	// declared defaults alone.
	remerged := types.NewInstance(f.Type("cache.Cacheable"), m)
	again := getPresent(t, tagsOn(t, f, "svc", remerged), "cache.Cacheable")
	ttl, err := again.GetInt("ttl")
	require.NoError(t, err)
	assert.Equal(t, int64(0), ttl)
}

func TestWithNonMergedAttributes(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Get"), map[string]any{"value": "/users"})
	route := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	merged, err := route.GetString("path")
	require.NoError(t, err)
	assert.Equal(t, "/users", merged)

	plain := route.WithNonMergedAttributes()

	// Without alias routing the path reads as declared on the meta instance.
	path, err := plain.GetString("path")
	require.NoError(t, err)
	assert.Equal(t, "", path)

	method, err := plain.GetString("method")
	require.NoError(t, err)
	assert.Equal(t, "GET", method)

	m, err := plain.AsMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"value": "", "path": "", "method": "GET"}, m)

	// The original view is unchanged.
	merged, err = route.GetString("path")
	require.NoError(t, err)
	assert.Equal(t, "/users", merged)
}

func TestAsMapAdaptations(t *testing.T) {
	f := specFixture()
	inner := types.NewInstance(f.Type("k.Inner"), map[string]any{"label": "in"})
	inst := types.NewInstance(f.Type("k.Spec"), map[string]any{
		"name":    "x",
		"handler": "svc.H",
		"inner":   inner,
	})
	view := getPresent(t, tagsOn(t, f, "svc", inst), "k.Spec")

	plain, err := view.AsMap()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"name":    "x",
		"count":   int64(0),
		"ratio":   float64(0),
		"enabled": false,
		"handler": types.TypeRef("svc.H"),
		"inner":   inner,
	}, plain)

	adapted, err := view.AsMap(TypeRefsAsStrings, NestedAsMaps)
	require.NoError(t, err)
	assert.Equal(t, "svc.H", adapted["handler"])
	assert.Equal(t, map[string]any{"label": "in"}, adapted["inner"])
}

func TestSynthesizePassesInstancesThrough(t *testing.T) {
	f := tagtest.NewFixture().Add(tagtest.CacheableType()).Add(tagtest.ShortCacheType())
	meta := types.NewInstance(f.Type("cache.Cacheable"), map[string]any{"ttl": 5})
	f.MetaTag("cache.ShortCache", meta)

	inst := types.NewInstance(f.Type("cache.ShortCache"), nil)
	ts := tagsOn(t, f, "svc", inst)

	// Nothing in this hierarchy can change a value, so synthesis returns the
	// underlying instances unchanged.
	direct := getPresent(t, ts, "cache.ShortCache")
	out, err := direct.Synthesize()
	require.NoError(t, err)
	assert.Same(t, inst, out)

	viaMeta := getPresent(t, ts, "cache.Cacheable")
	out, err = viaMeta.Synthesize()
	require.NoError(t, err)
	assert.Same(t, meta, out)
}

func TestSynthesizeBuildsAdapter(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Get"), map[string]any{"value": "/users"})
	route := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	out, err := route.Synthesize()
	require.NoError(t, err)

	adapter, ok := out.(*synth.Adapter)
	require.True(t, ok, "a synthesizable view materializes as an adapter, got %T", out)
	assert.Equal(t, "web.Route", adapter.Type().Name())
	assert.Equal(t, "/users", adapter.GetString("path"))
	assert.Equal(t, "/users", adapter.GetString("value"))
	assert.Equal(t, "GET", adapter.GetString("method"))
}

type synthFunc func(*types.TagType, map[string]any) (any, error)

func (f synthFunc) Synthesize(t *types.TagType, values map[string]any) (any, error) {
	return f(t, values)
}

func TestSynthesizeWithCustomSynthesizer(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Get"), map[string]any{"value": "/users"})
	route := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	var gotType *types.TagType
	var gotValues map[string]any
	var s mts.Synthesizer = synthFunc(func(tt *types.TagType, values map[string]any) (any, error) {
		gotType = tt
		gotValues = values
		return "materialized", nil
	})

	out, err := route.SynthesizeWith(s)
	require.NoError(t, err)
	assert.Equal(t, "materialized", out)
	assert.Equal(t, "web.Route", gotType.Name())
	assert.Equal(t, "/users", gotValues["path"])
	assert.Equal(t, "GET", gotValues["method"])
}

func TestSynthesizeSurfacesMirrorConflict(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Route"), map[string]any{"value": "/a", "path": "/b"})
	view := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	_, err := view.Synthesize()
	require.Error(t, err)
	assert.True(t, errors.IsMirrorConflict(err))
}
