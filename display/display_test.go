package display

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/tagx/mts"
	"github.com/teranos/tagx/mts/mapping"
	tagtest "github.com/teranos/tagx/internal/testing"
)

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	err := OutputJSON(&buf, map[string]int{"ttl": 5})
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 5, decoded["ttl"])
}

func TestShouldOutputJSON(t *testing.T) {
	root := &cobra.Command{Use: "tagx"}
	root.PersistentFlags().Bool("json", false, "")
	sub := &cobra.Command{Use: "inspect"}
	sub.Flags().Bool("json", false, "")
	root.AddCommand(sub)

	assert.False(t, ShouldOutputJSON(sub))
	assert.False(t, ShouldOutputJSON(nil))

	require.NoError(t, root.PersistentFlags().Set("json", "true"))
	assert.True(t, ShouldOutputJSON(sub), "global flag applies when local flag untouched")

	require.NoError(t, sub.Flags().Set("json", "false"))
	assert.False(t, ShouldOutputJSON(sub), "explicit local flag wins over global")
}

func TestSummarize(t *testing.T) {
	fix := tagtest.CacheFixture()
	builder := mapping.NewBuilder(fix, fix, mapping.WithFilter(mts.NoneFilter))
	tree, err := builder.Build("cache.ShortCache")
	require.NoError(t, err)

	summary := Summarize(tree)
	assert.Equal(t, "cache.ShortCache", summary.RootType)
	assert.NotEmpty(t, summary.Fingerprint)
	require.Len(t, summary.Mappings, 2)
	assert.Equal(t, 0, summary.Mappings[0].Distance)
	assert.Equal(t, "cache.Cacheable", summary.Mappings[1].Type)
	assert.Equal(t, 1, summary.Mappings[1].Distance)
}
