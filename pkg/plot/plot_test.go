package plot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"draftsmith/pkg/schema"
)

func TestGeneratorDeterministic(t *testing.T) {
	a, err := NewGenerator(42).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(42).Generate()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGeneratorFillsCast(t *testing.T) {
	g := NewGenerator(7)
	for range 20 {
		p, err := g.Generate()
		require.NoError(t, err)

		require.Len(t, p.Cast, 3)
		seen := map[string]bool{}
		for i, c := range p.Cast {
			assert.Equal(t, symbols[i], c.Symbol)
			assert.NotEmpty(t, c.Description)
			assert.False(t, seen[c.Name], "duplicate name %s", c.Name)
			seen[c.Name] = true
		}

		assert.NotContains(t, p.Plot, "{")
		assert.True(t, strings.HasPrefix(p.Plot, p.Cast[0].Name+","), p.Plot)
		assert.True(t, strings.HasSuffix(p.Plot, "."))
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plotto.json")
	want := schema.PlotSkeleton{
		Plot: "Ada, an idealist, meets Bo.",
		Cast: []schema.CastMember{{Name: "Ada", Symbol: "A", Description: "the protagonist"}},
	}
	data, err := json.Marshal(want)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := File{Path: path}.Generate()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileErrors(t *testing.T) {
	_, err := File{Path: filepath.Join(t.TempDir(), "missing.json")}.Generate()
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"plot":"  ","cast":[]}`), 0o644))
	_, err = File{Path: path}.Generate()
	assert.ErrorContains(t, err, "plot text is empty")
}

func TestStatic(t *testing.T) {
	want := schema.PlotSkeleton{Plot: "Ada meets Bo."}
	got, err := Static(want).Generate()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
