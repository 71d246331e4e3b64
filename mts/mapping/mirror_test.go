package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tagx/errors"
	"github.com/teranos/tagx/mts/types"
)

func bareMapping(attrNames ...string) *Mapping {
	attrs := make([]types.Attribute, len(attrNames))
	for i, name := range attrNames {
		attrs[i] = types.Attribute{Name: name, Type: types.StringType, Default: ""}
	}
	t := types.NewTagType("test.Type", attrs)
	m := &Mapping{tagType: t, attrs: t.Attributes()}
	m.root = m
	m.mirrorSets = newMirrorSets(m)
	return m
}

func chainOf(m *Mapping, indexes ...int) []attrRef {
	chain := make([]attrRef, len(indexes))
	for i, idx := range indexes {
		chain[i] = m.ref(idx)
	}
	return chain
}

// extractor returning explicit values for some indices, defaults otherwise.
func valuesExtractor(vals map[int]any) Extractor {
	return func(i int, attr types.Attribute) any {
		if v, ok := vals[i]; ok {
			return v
		}
		return attr.Default
	}
}

func TestMirrorSetsGrouping(t *testing.T) {
	m := bareMapping("a", "b", "c", "d")

	m.mirrorSets.updateFrom(chainOf(m, 0, 1))
	require.Equal(t, 1, m.mirrorSets.Size())
	assert.Equal(t, []int{0, 1}, m.mirrorSets.Get(0).Members())
	assert.Same(t, m.mirrorSets.Assigned(0), m.mirrorSets.Assigned(1))
	assert.Nil(t, m.mirrorSets.Assigned(2))
	assert.Nil(t, m.mirrorSets.Assigned(3))

	m.mirrorSets.updateFrom(chainOf(m, 2, 3))
	require.Equal(t, 2, m.mirrorSets.Size())
	assert.Equal(t, []int{0, 1}, m.mirrorSets.Get(0).Members())
	assert.Equal(t, []int{2, 3}, m.mirrorSets.Get(1).Members())
}

func TestMirrorSetsSingleMemberChainsNoGroup(t *testing.T) {
	m := bareMapping("a", "b")
	m.mirrorSets.updateFrom(chainOf(m, 0))
	assert.Equal(t, 0, m.mirrorSets.Size())
	assert.Nil(t, m.mirrorSets.Assigned(0))
}

// Overlapping chains reassign members to the newest group; the older group
// keeps its original member list. Resolution order makes the outcome
// deterministic: later groups overwrite shared slots.
func TestMirrorSetsOverlappingChains(t *testing.T) {
	m := bareMapping("a", "b", "c", "d")

	m.mirrorSets.updateFrom(chainOf(m, 0, 1, 2))
	m.mirrorSets.updateFrom(chainOf(m, 1, 2))

	require.Equal(t, 2, m.mirrorSets.Size())
	assert.Equal(t, []int{0, 1, 2}, m.mirrorSets.Get(0).Members())
	assert.Equal(t, []int{1, 2}, m.mirrorSets.Get(1).Members())

	resolved, conflicts := m.mirrorSets.Resolve(nil, valuesExtractor(nil))
	assert.Empty(t, conflicts)
	assert.Equal(t, []int{0, 1, 1, 3}, resolved)
}

func TestMirrorSetResolveWinner(t *testing.T) {
	tests := []struct {
		name string
		vals map[int]any
		want int
	}{
		{"all default picks first", nil, 0},
		{"first non-default wins", map[int]any{0: "x"}, 0},
		{"second non-default wins", map[int]any{1: "y"}, 1},
		{"equal non-defaults pick first", map[int]any{0: "x", 1: "x"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := bareMapping("a", "b", "c")
			m.mirrorSets.updateFrom(chainOf(m, 0, 1))

			resolved, conflicts := m.mirrorSets.Resolve(nil, valuesExtractor(tt.vals))
			require.Empty(t, conflicts)
			assert.Equal(t, tt.want, resolved[0])
			assert.Equal(t, tt.want, resolved[1])
			assert.Equal(t, 2, resolved[2], "unmirrored attributes map to themselves")
		})
	}
}

func TestMirrorSetResolveConflict(t *testing.T) {
	m := bareMapping("a", "b")
	m.mirrorSets.updateFrom(chainOf(m, 0, 1))

	_, conflicts := m.mirrorSets.Resolve(nil, valuesExtractor(map[int]any{0: "x", 1: "y"}))
	require.Len(t, conflicts, 2)
	for _, err := range conflicts {
		assert.True(t, errors.Is(err, errors.ErrMirrorConflict))
		assert.Contains(t, err.Error(), `"a"`)
		assert.Contains(t, err.Error(), `"b"`)
		assert.Contains(t, err.Error(), "[x]")
		assert.Contains(t, err.Error(), "[y]")
		assert.NotContains(t, err.Error(), "declared on")
	}
}

func TestMirrorSetResolveConflictNamesSource(t *testing.T) {
	m := bareMapping("a", "b")
	m.mirrorSets.updateFrom(chainOf(m, 0, 1))

	_, conflicts := m.mirrorSets.Resolve("handler Func", valuesExtractor(map[int]any{0: "x", 1: "y"}))
	require.NotEmpty(t, conflicts)
	for _, err := range conflicts {
		assert.Contains(t, err.Error(), "declared on handler Func")
	}
}

func TestMirrorSetResolveConflictLeavesOthers(t *testing.T) {
	m := bareMapping("a", "b", "c", "d")
	m.mirrorSets.updateFrom(chainOf(m, 0, 1))
	m.mirrorSets.updateFrom(chainOf(m, 2, 3))

	resolved, conflicts := m.mirrorSets.Resolve(nil, valuesExtractor(map[int]any{
		0: "x", 1: "y", // conflict
		3: "w", // clean winner
	}))
	require.Len(t, conflicts, 2)
	assert.Contains(t, conflicts, 0)
	assert.Contains(t, conflicts, 1)
	assert.Equal(t, 3, resolved[2])
	assert.Equal(t, 3, resolved[3])
}

func TestFirstConflictFollowsSetOrder(t *testing.T) {
	m := bareMapping("a", "b", "c", "d")
	m.mirrorSets.updateFrom(chainOf(m, 0, 1))
	m.mirrorSets.updateFrom(chainOf(m, 2, 3))

	_, conflicts := m.mirrorSets.Resolve(nil, valuesExtractor(map[int]any{
		0: "1", 1: "2",
		2: "3", 3: "4",
	}))
	require.Len(t, conflicts, 4)

	err := m.mirrorSets.firstConflict(conflicts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestMirrorSetAccessors(t *testing.T) {
	m := bareMapping("a", "b", "c")
	m.mirrorSets.updateFrom(chainOf(m, 0, 2))

	set := m.mirrorSets.Get(0)
	assert.Equal(t, 2, set.Size())
	assert.Equal(t, 0, set.Index(0))
	assert.Equal(t, 2, set.Index(1))

	members := set.Members()
	members[0] = 99
	assert.Equal(t, 0, set.Index(0), "Members returns a copy")
}
