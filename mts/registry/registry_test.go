package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/tagx/errors"
	tagtest "github.com/teranos/tagx/internal/testing"
	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/mapping"
	"github.com/teranos/tagx/mts/types"
)

type countingResolver struct {
	inner *tagtest.Fixture
	calls int64
}

func (c *countingResolver) ResolveType(name string) (*types.TagType, error) {
	atomic.AddInt64(&c.calls, 1)
	return c.inner.ResolveType(name)
}

func TestTreeForCachesTree(t *testing.T) {
	f := tagtest.WebFixture()
	r := New(f, f, WithLogger(zap.NewNop().Sugar()))

	a, err := r.TreeFor("web.Get", nil)
	require.NoError(t, err)
	b, err := r.TreeFor("web.Get", nil)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Size())
}

func TestTreeForNilFilterMeansPlain(t *testing.T) {
	f := tagtest.WebFixture()
	r := New(f, f)

	a, err := r.TreeFor("web.Get", nil)
	require.NoError(t, err)
	b, err := r.TreeFor("web.Get", mts.PlainFilter)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, r.Size())
}

func TestTreeForPartitionsByFilter(t *testing.T) {
	f := tagtest.NewFixture().
		Add(types.NewTagType("ft.User", nil)).
		Add(types.NewTagType("std.Gen", nil))
	f.MetaTag("ft.User", types.NewInstance(f.Type("std.Gen"), nil))
	r := New(f, f)

	plain, err := r.TreeFor("ft.User", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, plain.Size())

	none, err := r.TreeFor("ft.User", mts.NoneFilter)
	require.NoError(t, err)
	assert.Equal(t, 2, none.Size())

	assert.NotSame(t, plain, none)
	assert.Equal(t, 2, r.Size())
}

func TestFailureCachedPermanently(t *testing.T) {
	f := tagtest.NewFixture().
		Add(tagtest.RouteType()).
		Add(types.NewTagType("bad.Orphan", []types.Attribute{
			{Name: "url", Type: types.StringType, Default: "", Alias: &types.AliasSpec{Type: "web.Route", Attribute: "path"}},
		}))
	r := New(f, f)

	_, err := r.TreeFor("bad.Orphan", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnclaimedAlias))

	// Repairing the declaration afterwards makes a fresh build succeed, but
	// the cached failure stays.
	f.MetaTag("bad.Orphan", types.NewInstance(f.Type("web.Route"), nil))
	_, err = mapping.NewBuilder(f, f).Build("bad.Orphan")
	require.NoError(t, err)

	_, err = r.TreeFor("bad.Orphan", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnclaimedAlias))
	assert.Equal(t, 1, r.Size())
}

func TestUnknownTypeFailureCached(t *testing.T) {
	f := tagtest.NewFixture()
	r := New(f, f)

	_, err := r.TreeFor("no.Such", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 1, r.Size())
}

func TestConcurrentFirstCallsBuildOnce(t *testing.T) {
	resolver := &countingResolver{
		inner: tagtest.NewFixture().Add(types.NewTagType("plain.Simple", []types.Attribute{
			{Name: "name", Type: types.StringType, Default: ""},
		})),
	}
	r := New(resolver, resolver.inner)

	const workers = 16
	trees := make([]*mapping.Tree, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			tree, err := r.TreeFor("plain.Simple", nil)
			assert.NoError(t, err)
			trees[i] = tree
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, trees[0], trees[i])
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&resolver.calls),
		"the root type resolves exactly once across all callers")
}
