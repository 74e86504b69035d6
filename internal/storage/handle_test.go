package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/iconvault/iconvault/internal/storage"
	"github.com/stretchr/testify/require"
)

func TestHandleStore_RoundTrip(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state", "state.json")
	workspace := t.TempDir()

	hs := storage.NewHandleStore(statePath)

	got, err := hs.Load()
	require.NoError(t, err)
	require.Empty(t, got, "nothing remembered yet")

	require.NoError(t, hs.Save(workspace))

	got, err = hs.Load()
	require.NoError(t, err)
	require.Equal(t, workspace, got)

	require.NoError(t, hs.Clear())
	got, err = hs.Load()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestHandleStore_ForgetsVanishedWorkspace(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	workspace := filepath.Join(t.TempDir(), "ws")
	require.NoError(t, os.MkdirAll(workspace, 0o755))

	hs := storage.NewHandleStore(statePath)
	require.NoError(t, hs.Save(workspace))
	require.NoError(t, os.RemoveAll(workspace))

	got, err := hs.Load()
	require.NoError(t, err)
	require.Empty(t, got, "a vanished workspace should not be offered")
}

func TestHandleStore_CorruptStateIsNotFatal(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0o644))

	hs := storage.NewHandleStore(statePath)
	got, err := hs.Load()
	require.NoError(t, err)
	require.Empty(t, got)
}
