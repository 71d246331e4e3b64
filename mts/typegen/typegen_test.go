package typegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tagx/mts/types"
)

func TestBuildField(t *testing.T) {
	tf, err := buildField("web.Route", "Path", "path,default=/", types.StringType)
	require.NoError(t, err)
	assert.Equal(t, "path", tf.AttrName)
	assert.Equal(t, "/", tf.Attr.Default)
	assert.Equal(t, "GetString", tf.Getter)
	assert.Equal(t, "string", tf.GoType)
}

func TestBuildFieldDerivesAttrName(t *testing.T) {
	tf, err := buildField("cache.Cacheable", "TTL", "", types.IntType)
	require.NoError(t, err)
	assert.Equal(t, "ttl", tf.AttrName)
	assert.Equal(t, "GetInt", tf.Getter)
}

func TestBuildFieldAlias(t *testing.T) {
	tf, err := buildField("web.Route", "Name", "value,alias=path", types.StringType)
	require.NoError(t, err)
	require.NotNil(t, tf.Attr.Alias)
	assert.Equal(t, "path", tf.Attr.Alias.Attribute)
	assert.Empty(t, tf.Attr.Alias.Type, "bare alias targets the declaring type")

	tf, err = buildField("cache.ShortCache", "TTL", "ttl,alias=cache.Cacheable.ttl", types.IntType)
	require.NoError(t, err)
	require.NotNil(t, tf.Attr.Alias)
	assert.Equal(t, "cache.Cacheable", tf.Attr.Alias.Type)
	assert.Equal(t, "ttl", tf.Attr.Alias.Attribute)
}

func TestBuildFieldSliceDefault(t *testing.T) {
	tf, err := buildField("web.Route", "Methods", "methods,default=GET|POST", types.SliceOf(types.StringType))
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "POST"}, tf.Attr.Default)
	assert.Equal(t, "GetStringSlice", tf.Getter)
}

func TestBuildFieldTypeOverride(t *testing.T) {
	tf, err := buildField("di.Inject", "Target", "target,type=type", types.StringType)
	require.NoError(t, err)
	assert.Equal(t, types.TypeRefType, tf.Attr.Type)
	assert.Equal(t, "GetTypeRef", tf.Getter)
	assert.Equal(t, "types.TypeRef", tf.GoType)
}

func TestBuildFieldRejectsMalformedOptions(t *testing.T) {
	_, err := buildField("web.Route", "Path", "path,default", types.StringType)
	assert.Error(t, err, "option without = is malformed")

	_, err = buildField("web.Route", "Path", "path,nope=1", types.StringType)
	assert.Error(t, err)

	_, err = buildField("web.Route", "Path", "path,alias=", types.StringType)
	assert.Error(t, err)
}

func TestBuildFieldRejectsBadDefault(t *testing.T) {
	_, err := buildField("cache.Cacheable", "TTL", "ttl,default=soon", types.IntType)
	assert.Error(t, err)
}

func TestRenderAccessors(t *testing.T) {
	structs := []TagStruct{{
		StructName: "Route",
		TagName:    "web.Route",
		Fields: []TagField{
			{FieldName: "Path", AttrName: "path", Getter: "GetString", GoType: "string",
				Attr: types.Attribute{Name: "path", Type: types.StringType}},
			{FieldName: "TTL", AttrName: "ttl", Getter: "GetInt", GoType: "int64",
				Attr: types.Attribute{Name: "ttl", Type: types.IntType}},
		},
	}}

	src, err := renderAccessors("web", structs)
	require.NoError(t, err)

	code := string(src)
	assert.Contains(t, code, "package web")
	assert.Contains(t, code, "type RouteTag struct")
	assert.Contains(t, code, "func LoadRouteTag(t *merged.Tag) (RouteTag, error)")
	assert.Contains(t, code, `t.GetString("path")`)
	assert.Contains(t, code, `t.GetInt("ttl")`)
	assert.NotContains(t, code, "mts/types", "types import only emitted when needed")
}

func TestRenderAccessorsTypeRefImport(t *testing.T) {
	structs := []TagStruct{{
		StructName: "Inject",
		TagName:    "di.Inject",
		Fields: []TagField{
			{FieldName: "Target", AttrName: "target", Getter: "GetTypeRef", GoType: "types.TypeRef",
				Attr: types.Attribute{Name: "target", Type: types.TypeRefType}},
		},
	}}

	src, err := renderAccessors("di", structs)
	require.NoError(t, err)
	assert.Contains(t, string(src), `"github.com/teranos/tagx/mts/types"`)
}

func TestRenderTagset(t *testing.T) {
	structs := []TagStruct{{
		StructName: "Route",
		TagName:    "web.Route",
		Doc:        "Routes a handler.",
		Fields: []TagField{
			{FieldName: "Path", AttrName: "path",
				Attr: types.Attribute{Name: "path", Type: types.StringType, Default: "",
					Alias: &types.AliasSpec{Attribute: "value"}}},
			{FieldName: "Name", AttrName: "value",
				Attr: types.Attribute{Name: "value", Type: types.StringType, Default: "",
					Alias: &types.AliasSpec{Attribute: "path"}}},
		},
	}}

	data, err := renderTagset(structs)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "web.Route")
	assert.Contains(t, text, "path")
	assert.True(t, strings.Contains(text, "format"), "tag-set files carry a format version")
}

func TestLowerName(t *testing.T) {
	assert.Equal(t, "path", lowerName("Path"))
	assert.Equal(t, "ttl", lowerName("TTL"))
	assert.Equal(t, "httpTimeout", lowerName("HTTPTimeout"))
}
