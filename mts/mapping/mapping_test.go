package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tagtest "github.com/teranos/tagx/internal/testing"
)

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateConstructing, "constructing"},
		{StateAliasesResolved, "aliases-resolved"},
		{StateConventionsApplied, "conventions-applied"},
		{StateValidated, "validated"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestMappingString(t *testing.T) {
	tree := buildTree(t, tagtest.WebFixture(), "web.Get")
	assert.Equal(t, "web.Get (distance 0)", tree.Root().String())
	assert.Equal(t, "web.Route (distance 1)", tree.Get(1).String())
}

func TestMetaTypesReturnsCopy(t *testing.T) {
	tree := buildTree(t, tagtest.WebFixture(), "web.Get")
	route := tree.Get(1)

	meta := route.MetaTypes()
	meta[0] = "tampered"
	assert.Equal(t, []string{"web.Get", "web.Route"}, route.MetaTypes())
}

func TestMappedValueUnrouted(t *testing.T) {
	f := tagtest.NewFixture().Add(tagtest.RouteType())
	tree := buildTree(t, f, "web.Route")

	// The root mapping has no declared instance and no value routing.
	_, ok := tree.Root().MappedValue(0, false)
	assert.False(t, ok)
}

func TestBuilderFilterAccessor(t *testing.T) {
	f := tagtest.NewFixture()
	b := NewBuilder(f, f)
	require.NotNil(t, b.Filter())
	assert.Equal(t, "plain", b.Filter().Key())
}
