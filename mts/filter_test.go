package mts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainFilter(t *testing.T) {
	tests := []struct {
		typeName string
		excluded bool
	}{
		{"std.Deprecated", true},
		{"tagx.Marker", true},
		{"web.Route", false},
		{"cache.Cacheable", false},
		{"standard.Thing", false}, // prefix match is on the package boundary
	}

	for _, tt := range tests {
		assert.Equal(t, tt.excluded, PlainFilter.Excludes(tt.typeName), "PlainFilter.Excludes(%q)", tt.typeName)
	}
	assert.Equal(t, "plain", PlainFilter.Key())
}

func TestAllAndNoneFilters(t *testing.T) {
	assert.True(t, AllFilter.Excludes("web.Route"))
	assert.True(t, AllFilter.Excludes(""))
	assert.False(t, NoneFilter.Excludes("web.Route"))
	assert.False(t, NoneFilter.Excludes("std.Deprecated"))

	assert.NotEqual(t, AllFilter.Key(), NoneFilter.Key())
}

func TestPackagesFilter(t *testing.T) {
	f := Packages("cache", "internal.")

	assert.True(t, f.Excludes("cache.Cacheable"))
	assert.True(t, f.Excludes("cache.impl.ShortCache"))
	assert.True(t, f.Excludes("internal.Hidden"))
	assert.False(t, f.Excludes("web.Route"))
	assert.False(t, f.Excludes("cachex.Thing"))
}

func TestPackagesFilterKeyStable(t *testing.T) {
	a := Packages("cache", "web")
	b := Packages("cache", "web")
	c := Packages("web", "cache")

	assert.Equal(t, a.Key(), b.Key(), "same packages produce the same key")
	assert.NotEqual(t, a.Key(), c.Key(), "order participates in the key")
}

func TestNoOpCollaborators(t *testing.T) {
	insts, err := NoOpMetaSource{}.DeclaredTags(nil)
	assert.NoError(t, err)
	assert.Empty(t, insts)

	positions, err := NoOpScanner{}.Scan("anything")
	assert.NoError(t, err)
	assert.Empty(t, positions)
}
