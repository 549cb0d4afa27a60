// Package scratch manages the per-request temporary audio files.
package scratch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ncecere/speech_gateway/internal/apperr"
)

// DefaultDirName is the subdirectory of the system temp dir used when no
// scratch directory is configured. Sweep must never run over a shared dir.
const DefaultDirName = "speechd"

// DefaultRoot is the scratch directory used when none is configured.
func DefaultRoot() string {
	return filepath.Join(os.TempDir(), DefaultDirName)
}

// Dir hands out unique file names under one directory.
type Dir struct {
	root string
}

// New ensures root exists and returns a Dir rooted there.
func New(root string) (*Dir, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Root() string { return d.root }

// Path returns a fresh <uuid>.<ext> path. Nothing is created on disk.
func (d *Dir) Path(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return filepath.Join(d.root, uuid.NewString())
	}
	return filepath.Join(d.root, uuid.NewString()+"."+ext)
}

// Write stores data under a fresh name. The file appears atomically.
func (d *Dir) Write(ext string, data []byte) (string, error) {
	path := d.Path(ext)
	if err := WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFile writes data to path via a temp file and rename.
func WriteFile(path string, data []byte) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return apperr.FileWriteFailed(path, err)
	}
	defer os.Remove(tempFile.Name())

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return apperr.FileWriteFailed(path, err)
	}
	if err := tempFile.Close(); err != nil {
		return apperr.FileWriteFailed(path, err)
	}
	if err := os.Rename(tempFile.Name(), path); err != nil {
		return apperr.FileWriteFailed(path, err)
	}
	return nil
}

// ReadFile loads a scratch file fully into memory.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.FileReadFailed(path, err)
	}
	return data, nil
}

// Remove deletes path, logging instead of failing.
func Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.DebugContext(ctx, "scratch cleanup failed", slog.String("path", path), slog.Any("error", err))
	}
}

// Sweep deletes scratch files older than maxAge and returns how many went.
// Only names produced by Path are considered.
func (d *Dir) Sweep(ctx context.Context, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return 0, fmt.Errorf("list scratch dir: %w", err)
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !isScratchName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < maxAge {
			continue
		}
		path := filepath.Join(d.root, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.WarnContext(ctx, "scratch sweep failed", slog.String("path", path), slog.Any("error", err))
			continue
		}
		removed++
	}
	return removed, nil
}

func isScratchName(name string) bool {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	_, err := uuid.Parse(base)
	return err == nil && len(base) == 36
}
