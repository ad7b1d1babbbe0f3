package storage

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("course-report-x.pdf", []byte("%PDF-fake"))
	require.NoError(t, err)
	require.Equal(t, "course-report-x.pdf", rel)

	handle, err := store.OpenHandle(rel)
	require.NoError(t, err)
	require.Equal(t, "course-report-x.pdf", handle.Name)
	require.NoError(t, handle.Close())

	require.NoError(t, store.Delete(rel))
	_, err = os.Stat(store.Path(rel))
	require.True(t, os.IsNotExist(err))

	// Deleting a missing file is not an error.
	require.NoError(t, store.Delete(rel))
}

func TestLocalStorageCleanupOlderThan(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	old, err := store.Save("old.pdf", []byte("a"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(old), past, past))

	fresh, err := store.Save("fresh.pdf", []byte("b"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	require.NoError(t, err)
	require.Equal(t, []string{"old.pdf"}, deleted)

	_, err = os.Stat(store.Path(old))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(store.Path(fresh))
	require.NoError(t, err)
}
