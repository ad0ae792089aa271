package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/lease-intake/constants"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Smith Lease.PDF")
	writeFile(t, path, "%PDF-1.4")

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Smith Lease.PDF", f.Name)
	assert.Equal(t, int64(8), f.Size)
	assert.Equal(t, constants.MIMEPDF, f.MIMEType)
}

func TestLoadDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "lease")
	writeFile(t, filepath.Join(root, "b.pdf"), "%PDF")
	writeFile(t, filepath.Join(root, "notes.md"), "skip me")
	writeFile(t, filepath.Join(root, ".hidden.txt"), "hidden")
	writeFile(t, filepath.Join(root, "sub", "c.png"), "png")

	files, failed, stats, err := LoadDirectory(context.Background(), root, DirOptions{SkipHidden: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, failed)

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"a.txt", "b.pdf"}, names)
	assert.Equal(t, uint32(2), stats.Loaded)

	files, _, _, err = LoadDirectory(context.Background(), root, DirOptions{SkipHidden: true, Recursive: true, IncludeExts: []string{".png"}}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "c.png", files[0].Name)
	assert.Equal(t, "image/png", files[0].MIMEType)
}

func TestLoadDirectoryErrors(t *testing.T) {
	_, _, _, err := LoadDirectory(context.Background(), " ", DirOptions{}, nil)
	require.Error(t, err)

	_, _, _, err = LoadDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"), DirOptions{}, nil)
	require.Error(t, err)
}

func TestStartWatcherInitialScanAndCreate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "existing.pdf"), "%PDF")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "existing.pdf"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan event")
	}

	writeFile(t, filepath.Join(root, "new.txt"), "lease")
	select {
	case p := <-events:
		assert.Equal(t, filepath.Join(root, "new.txt"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no create event")
	}

	cancel()
	for range events {
	}
}
