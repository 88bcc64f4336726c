package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirWritesNestedArtifacts(t *testing.T) {
	root := filepath.Join(t.TempDir(), "var", "amber-heron")
	d, err := NewDir(root)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, d.Write(ctx, "summary.txt", []byte("Title: X")))
	require.NoError(t, d.Write(ctx, "src/ch-1-sc-2.md", []byte("prose")))

	got, err := os.ReadFile(filepath.Join(root, "src", "ch-1-sc-2.md"))
	require.NoError(t, err)
	assert.Equal(t, "prose", string(got))

	_, err = os.Stat(filepath.Join(root, "src", "ch-1-sc-2.md.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestDirRejectsEscapingNames(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../x", "/etc/passwd", "a/../../b", "."} {
		err := d.Write(context.Background(), name, nil)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestDirHonoursCancelledContext(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Write(ctx, "a.txt", nil), context.Canceled)
}

func TestMemoryWriteJSON(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, WriteJSON(ctx, m, "./summary.json", map[string]int{"chapters": 2}))

	var v map[string]int
	require.NoError(t, m.ReadJSON("summary.json", &v))
	assert.Equal(t, 2, v["chapters"])
	assert.ElementsMatch(t, []string{"summary.json"}, m.Names())

	raw, ok := m.Read("summary.json")
	require.True(t, ok)
	assert.Contains(t, string(raw), "\n  \"chapters\": 2")
}
