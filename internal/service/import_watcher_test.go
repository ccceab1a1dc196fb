package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleImport = `[{"title": "Emma", "author": "Jane Austen", "genres": ["Classic"]}]`

func countBooks(t *testing.T, env *testEnv) int {
	t.Helper()
	n, err := env.store.CountBooks(context.Background())
	require.NoError(t, err)
	return n
}

func TestImportWatcher_ImportsPendingAndNewFiles(t *testing.T) {
	env := setupServices(t)
	dir := filepath.Join(t.TempDir(), "imports")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	pending := filepath.Join(dir, "pending.json")
	require.NoError(t, os.WriteFile(pending, []byte(sampleImport), 0o644))

	iw, err := NewImportWatcher(dir, env.books, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	iw.Start(ctx)
	defer func() { _ = iw.Stop() }()

	// Files present at startup are imported before Start returns.
	assert.Equal(t, 1, countBooks(t, env))
	assert.FileExists(t, pending+importedSuffix)
	assert.NoFileExists(t, pending)

	dropped := filepath.Join(dir, "dropped.json")
	require.NoError(t, os.WriteFile(dropped, []byte(`[{"title": "Persuasion", "author": "Jane Austen"}]`), 0o644))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(dropped + importedSuffix)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, 2, countBooks(t, env))
}

func TestImportWatcher_MarksBadFilesFailed(t *testing.T) {
	env := setupServices(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{oops`), 0o644))

	iw, err := NewImportWatcher(dir, env.books, nil)
	require.NoError(t, err)
	iw.Start(context.Background())
	require.NoError(t, iw.Stop())

	assert.FileExists(t, bad+failedSuffix)
	assert.Zero(t, countBooks(t, env))
}

func TestImportWatcher_StopIsIdempotent(t *testing.T) {
	env := setupServices(t)

	iw, err := NewImportWatcher(t.TempDir(), env.books, nil)
	require.NoError(t, err)
	iw.Start(context.Background())

	require.NoError(t, iw.Stop())
	assert.NoError(t, iw.Stop())
}
