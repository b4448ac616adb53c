package transcript

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yargevad/filepathx"
)

// HistoryFileName is the per-project transcript file inside the data directory.
const HistoryFileName = "chat_history.json"

// FileBackend stores each transcript at <Root>/<project>/chat_history.json.
type FileBackend struct {
	Root string
}

func NewFileBackend(root string) *FileBackend {
	return &FileBackend{Root: root}
}

func (b *FileBackend) path(projectKey string) (string, error) {
	if err := ValidateProjectKey(projectKey); err != nil {
		return "", err
	}
	return filepath.Join(b.Root, projectKey, HistoryFileName), nil
}

func (b *FileBackend) Read(_ context.Context, projectKey string) ([]byte, bool, error) {
	p, err := b.path(projectKey)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", p, err)
	}
	return data, true, nil
}

// WriteAtomic writes to a sibling temp file and renames it over the target,
// so readers never observe a partial transcript.
func (b *FileBackend) WriteAtomic(_ context.Context, projectKey string, data []byte) error {
	p, err := b.path(projectKey)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, HistoryFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, p); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ListProjects returns the keys of every project that has a stored transcript.
func (b *FileBackend) ListProjects(_ context.Context) ([]string, error) {
	matches, err := filepathx.Glob(filepath.Join(b.Root, "**", HistoryFileName))
	if err != nil {
		return nil, fmt.Errorf("glob transcripts: %w", err)
	}
	seen := make(map[string]struct{}, len(matches))
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		rel, err := filepath.Rel(b.Root, filepath.Dir(m))
		if err != nil || ValidateProjectKey(rel) != nil {
			continue
		}
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		keys = append(keys, rel)
	}
	sort.Strings(keys)
	return keys, nil
}

// ValidateProjectKey rejects keys that would escape or nest inside the data directory.
func ValidateProjectKey(projectKey string) error {
	k := strings.TrimSpace(projectKey)
	if k == "" || k == "." || k == ".." || k != projectKey {
		return fmt.Errorf("%w: %q", ErrInvalidProjectKey, projectKey)
	}
	if strings.ContainsAny(k, `/\`) || strings.ContainsRune(k, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidProjectKey, projectKey)
	}
	return nil
}
