package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kaiquant/kai/internal/core"
)

// LocalFS implements Storage on a local directory.
type LocalFS struct {
	basePath string
}

// NewLocalFS creates a new LocalFS storage
func NewLocalFS(basePath string) (*LocalFS, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed,
			fmt.Errorf("creating base path: %w", err))
	}
	return &LocalFS{basePath: basePath}, nil
}

func (l *LocalFS) fullPath(path string) string {
	return filepath.Join(l.basePath, path)
}

func (l *LocalFS) Write(ctx context.Context, path string, data []byte) error {
	fullPath := l.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return core.WrapError(core.ErrArchiveFailed,
			fmt.Errorf("creating directories: %w", err))
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

func (l *LocalFS) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.fullPath(path))
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return data, nil
}

func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	searchPath := l.fullPath(prefix)

	err := filepath.Walk(searchPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			relPath, _ := filepath.Rel(l.basePath, path)
			paths = append(paths, relPath)
		}
		return nil
	})

	// A prefix nothing was archived under is an empty listing, not a
	// failure.
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	return paths, nil
}

func (l *LocalFS) Delete(ctx context.Context, path string) error {
	if err := os.Remove(l.fullPath(path)); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

func (l *LocalFS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(l.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, core.WrapError(core.ErrArchiveFailed, err)
}
