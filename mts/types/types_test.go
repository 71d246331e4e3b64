package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeSetOrderAndLookup(t *testing.T) {
	set := NewAttributeSet([]Attribute{
		{Name: "value", Type: StringType, Default: ""},
		{Name: "path", Type: StringType, Default: ""},
		{Name: "methods", Type: SliceOf(StringType)},
	})

	require.Equal(t, 3, set.Size())
	assert.Equal(t, "value", set.Get(0).Name)
	assert.Equal(t, "path", set.Get(1).Name)
	assert.Equal(t, "methods", set.Get(2).Name)

	assert.Equal(t, 0, set.IndexOf("value"))
	assert.Equal(t, 1, set.IndexOf("path"))
	assert.Equal(t, -1, set.IndexOf("missing"))

	assert.Equal(t, []string{"value", "path", "methods"}, set.Names())
}

func TestAttributeSetEmpty(t *testing.T) {
	set := NewAttributeSet(nil)
	assert.Equal(t, 0, set.Size())
	assert.Equal(t, -1, set.IndexOf("anything"))
}

func TestAttributeSetNilReceiver(t *testing.T) {
	var set *AttributeSet
	assert.Equal(t, 0, set.Size())
	assert.Equal(t, -1, set.IndexOf("x"))
	assert.Nil(t, set.Names())
}

func TestAttributeSetDuplicateNamesFirstWins(t *testing.T) {
	set := NewAttributeSet([]Attribute{
		{Name: "ttl", Type: IntType, Default: int64(0)},
		{Name: "ttl", Type: IntType, Default: int64(9)},
	})
	assert.Equal(t, 2, set.Size())
	assert.Equal(t, 0, set.IndexOf("ttl"))
}

func TestAttributeDefaults(t *testing.T) {
	withDefault := Attribute{Name: "ttl", Type: IntType, Default: int64(0)}
	assert.True(t, withDefault.HasDefault())

	noDefault := Attribute{Name: "region", Type: StringType}
	assert.False(t, noDefault.HasDefault())

	assert.True(t, Attribute{Name: "value"}.IsValueAttribute())
	assert.False(t, Attribute{Name: "path"}.IsValueAttribute())
}

func TestTagType(t *testing.T) {
	tt := NewTagType("cache.Cacheable", []Attribute{
		{Name: "value", Type: StringType, Default: ""},
		{Name: "ttl", Type: IntType, Default: int64(0)},
	}, WithDoc("Marks a cacheable operation."))

	assert.Equal(t, "cache.Cacheable", tt.Name())
	assert.Equal(t, "cache.Cacheable", tt.String())
	assert.Equal(t, "Marks a cacheable operation.", tt.Doc())
	require.NotNil(t, tt.Attributes())
	assert.Equal(t, 2, tt.Attributes().Size())
}

func TestTagTypeNilReceiver(t *testing.T) {
	var tt *TagType
	assert.Equal(t, "", tt.Name())
	assert.Nil(t, tt.Attributes())
}

func TestPackageOf(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"web.Route", "web"},
		{"cache.impl.ShortCache", "cache.impl"},
		{"Unqualified", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PackageOf(tt.name), "PackageOf(%q)", tt.name)
	}
}

func TestNewInstanceNormalizesValues(t *testing.T) {
	tt := NewTagType("cache.Cacheable", []Attribute{
		{Name: "value", Type: StringType, Default: ""},
		{Name: "ttl", Type: IntType, Default: int64(0)},
	})

	// Plain Go ints normalize to the canonical int64 form
	inst := NewInstance(tt, map[string]any{"ttl": 5})
	v, ok := inst.Value("ttl")
	require.True(t, ok)
	assert.Equal(t, int64(5), v)

	// Undeclared attributes never read as explicit
	_, ok = inst.Value("value")
	assert.False(t, ok)
	_, ok = inst.Value("unknown")
	assert.False(t, ok)
}

func TestInstanceIdentity(t *testing.T) {
	tt := NewTagType("web.Route", []Attribute{
		{Name: "value", Type: StringType, Default: ""},
	})

	a := NewInstance(tt, map[string]any{"value": "/x"})
	b := NewInstance(tt, map[string]any{"value": "/x"})
	assert.NotEqual(t, a.ID(), b.ID(), "each instance carries its own identity")
}

func TestInstanceWithSource(t *testing.T) {
	tt := NewTagType("web.Route", []Attribute{
		{Name: "value", Type: StringType, Default: ""},
	})

	orig := NewInstance(tt, map[string]any{"value": "/x"})
	require.Nil(t, orig.Source())

	attributed := orig.WithSource("web.UserHandler")
	assert.Equal(t, "web.UserHandler", attributed.Source())
	assert.Nil(t, orig.Source(), "WithSource must not mutate the original")
	assert.Equal(t, orig.ID(), attributed.ID())
}

func TestInstanceString(t *testing.T) {
	tt := NewTagType("cache.Cacheable", []Attribute{
		{Name: "value", Type: StringType, Default: ""},
		{Name: "ttl", Type: IntType, Default: int64(0)},
	})

	inst := NewInstance(tt, map[string]any{"ttl": 5, "value": "users"})
	assert.Equal(t, `cache.Cacheable(value="users", ttl=5)`, inst.String())

	empty := NewInstance(tt, nil)
	assert.Equal(t, "cache.Cacheable()", empty.String())
}
