package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"draftsmith/pkg/utils"
)

var ErrInvalidName = errors.New("invalid artifact name")

// Store persists named artifacts. Names are slash separated and relative to
// the store root.
type Store interface {
	Write(ctx context.Context, name string, data []byte) error
}

// WriteJSON stores v as indented JSON.
func WriteJSON(ctx context.Context, s Store, name string, v any) error {
	data, err := utils.PrettyJSON(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.Write(ctx, name, data)
}

// CleanName rejects absolute names and names escaping the root.
func CleanName(name string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || clean == "." || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return clean, nil
}

// Dir writes artifacts beneath a directory on disk.
type Dir struct {
	root string
}

// NewDir creates root (and parents) and returns a store rooted there.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string {
	return d.root
}

// Write replaces name atomically through a temporary file.
func (d *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := CleanName(name)
	if err != nil {
		return err
	}

	full := filepath.Join(d.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Memory keeps artifacts in memory.
type Memory struct {
	files *utils.SyncMap[map[string][]byte, string, []byte]
}

func NewMemory() *Memory {
	return &Memory{files: utils.NewSyncMap[map[string][]byte]()}
}

func (m *Memory) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := CleanName(name)
	if err != nil {
		return err
	}
	m.files.Store(clean, append([]byte(nil), data...))
	return nil
}

func (m *Memory) Read(name string) ([]byte, bool) {
	return m.files.Load(name)
}

func (m *Memory) ReadJSON(name string, v any) error {
	data, ok := m.files.Load(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, os.ErrNotExist)
	}
	return json.Unmarshal(data, v)
}

// Names lists stored artifact names.
func (m *Memory) Names() []string {
	snap := m.files.Snapshot()
	names := make([]string, 0, len(snap))
	for k := range snap {
		names = append(names, k)
	}
	return names
}
