package merged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tagx/errors"
	tagtest "github.com/teranos/tagx/internal/testing"
	"github.com/teranos/tagx/mts/types"
)

func specFixture() *tagtest.Fixture {
	f := tagtest.NewFixture().
		Add(types.NewTagType("k.Inner", []types.Attribute{
			{Name: "label", Type: types.StringType, Default: ""},
		})).
		Add(types.NewTagType("k.Spec", []types.Attribute{
			{Name: "name", Type: types.StringType, Default: ""},
			{Name: "count", Type: types.IntType, Default: int64(0)},
			{Name: "ratio", Type: types.FloatType, Default: float64(0)},
			{Name: "enabled", Type: types.BoolType, Default: false},
			{Name: "handler", Type: types.TypeRefType, Default: types.TypeRef("")},
			{Name: "hosts", Type: types.SliceOf(types.StringType)},
			{Name: "ports", Type: types.SliceOf(types.IntType)},
			{Name: "filters", Type: types.SliceOf(types.TypeRefType)},
			{Name: "inner", Type: types.TagValueType("k.Inner")},
		}))
	return f
}

func TestTypedGetters(t *testing.T) {
	f := specFixture()
	inner := types.NewInstance(f.Type("k.Inner"), map[string]any{"label": "in"})
	inst := types.NewInstance(f.Type("k.Spec"), map[string]any{
		"name":    "primary",
		"count":   7,
		"ratio":   0.5,
		"enabled": true,
		"handler": "svc.Handler",
		"hosts":   []string{"a", "b"},
		"ports":   []int{80, 443},
		"filters": []string{"f.A", "f.B"},
		"inner":   inner,
	})
	view := getPresent(t, tagsOn(t, f, "svc", inst), "k.Spec")

	name, err := view.GetString("name")
	require.NoError(t, err)
	assert.Equal(t, "primary", name)

	count, err := view.GetInt("count")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	ratio, err := view.GetFloat("ratio")
	require.NoError(t, err)
	assert.Equal(t, 0.5, ratio)

	enabled, err := view.GetBool("enabled")
	require.NoError(t, err)
	assert.True(t, enabled)

	handler, err := view.GetTypeRef("handler")
	require.NoError(t, err)
	assert.Equal(t, types.TypeRef("svc.Handler"), handler)

	hosts, err := view.GetStringSlice("hosts")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, hosts)

	ports, err := view.GetIntSlice("ports")
	require.NoError(t, err)
	assert.Equal(t, []int64{80, 443}, ports)

	filters, err := view.GetTypeRefSlice("filters")
	require.NoError(t, err)
	assert.Equal(t, []types.TypeRef{"f.A", "f.B"}, filters)

	got, err := view.GetTag("inner")
	require.NoError(t, err)
	label, ok := got.Value("label")
	require.True(t, ok)
	assert.Equal(t, "in", label)

	single, err := view.GetTagSlice("inner")
	require.NoError(t, err)
	require.Len(t, single, 1)
}

func TestTypedGetterMismatch(t *testing.T) {
	f := specFixture()
	inst := types.NewInstance(f.Type("k.Spec"), map[string]any{"name": "x"})
	view := getPresent(t, tagsOn(t, f, "svc", inst), "k.Spec")

	_, err := view.GetInt("name")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAttributeType))
	assert.Contains(t, err.Error(), "k.Spec.name")

	_, err = view.GetBool("count")
	assert.True(t, errors.Is(err, errors.ErrAttributeType))

	// An unset attribute without a default resolves to nothing at all.
	_, err = view.GetStringSlice("hosts")
	assert.True(t, errors.Is(err, errors.ErrAttributeType))
}

func TestScalarWidensAcrossAlias(t *testing.T) {
	f := tagtest.NewFixture().
		Add(types.NewTagType("mq.Listen", []types.Attribute{
			{Name: "queues", Type: types.SliceOf(types.StringType), Default: []string{}},
		})).
		Add(types.NewTagType("mq.Queue", []types.Attribute{
			{Name: "value", Type: types.StringType, Default: "", Alias: &types.AliasSpec{Type: "mq.Listen", Attribute: "queues"}},
		}))
	f.MetaTag("mq.Queue", types.NewInstance(f.Type("mq.Listen"), nil))

	inst := types.NewInstance(f.Type("mq.Queue"), map[string]any{"value": "orders"})
	listen := getPresent(t, tagsOn(t, f, "consumer", inst), "mq.Listen")

	// The scalar declared on mq.Queue routes into the slice attribute and
	// widens on read.
	queues, err := listen.GetStringSlice("queues")
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, queues)
}

func TestGetterErrorsPassThrough(t *testing.T) {
	f := tagtest.WebFixture()
	inst := types.NewInstance(f.Type("web.Route"), map[string]any{
		"value": "/a",
		"path":  "/b",
	})
	view := getPresent(t, tagsOn(t, f, "handler", inst), "web.Route")

	_, err := view.GetString("path")
	require.Error(t, err)
	assert.True(t, errors.IsMirrorConflict(err), "mirror conflicts survive the typed getter")

	_, err = view.GetString("nope")
	assert.True(t, errors.IsNoSuchAttribute(err))
}
