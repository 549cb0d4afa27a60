package scratch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/speech_gateway/internal/apperr"
)

func TestPathIsUniqueWithExtension(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		path := dir.Path(".wav")
		require.True(t, strings.HasSuffix(path, ".wav"))
		require.Equal(t, dir.Root(), filepath.Dir(path))
		require.True(t, isScratchName(filepath.Base(path)))
		_, dup := seen[path]
		require.False(t, dup)
		seen[path] = struct{}{}
	}
}

func TestWriteReadRemove(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := dir.Write("m4a", []byte("audio"))
	require.NoError(t, err)

	data, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "audio", string(data))

	Remove(context.Background(), path)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Removing twice is harmless.
	Remove(context.Background(), path)

	entries, err := os.ReadDir(dir.Root())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReadMissingFileIsIOError(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.aiff"))
	require.True(t, apperr.IsKind(err, apperr.KindFileIOFailed))
}

func TestWriteIntoMissingDirFails(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "nope", "x.wav"), []byte("x"))
	require.True(t, apperr.IsKind(err, apperr.KindFileIOFailed))
}

func TestSweepRemovesOnlyOldScratchFiles(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	old, err := dir.Write("aiff", []byte("old"))
	require.NoError(t, err)
	fresh, err := dir.Write("aiff", []byte("fresh"))
	require.NoError(t, err)
	foreign := filepath.Join(dir.Root(), "keep-me.aiff")
	require.NoError(t, os.WriteFile(foreign, []byte("x"), 0o600))

	now := time.Now()
	past := now.Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))
	require.NoError(t, os.Chtimes(foreign, past, past))

	removed, err := dir.Sweep(context.Background(), time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	require.NoFileExists(t, old)
	require.FileExists(t, fresh)
	require.FileExists(t, foreign)
}

func TestDefaultRootIsPrivateSubdir(t *testing.T) {
	shared := t.TempDir()
	t.Setenv("TMPDIR", shared)

	dir, err := New("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(shared, DefaultDirName), dir.Root())

	foreign := filepath.Join(shared, uuid.NewString()+".json")
	require.NoError(t, os.WriteFile(foreign, []byte("{}"), 0o600))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(foreign, past, past))

	old, err := dir.Write("aiff", []byte("old"))
	require.NoError(t, err)
	require.NoError(t, os.Chtimes(old, past, past))

	removed, err := dir.Sweep(context.Background(), time.Hour, time.Now())
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.NoFileExists(t, old)
	require.FileExists(t, foreign)
}
