package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/watcher"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*watcher.Watcher, *storage.Directory, context.CancelFunc) {
	t.Helper()

	dir, err := storage.NewDirectory(t.TempDir(), nil)
	require.NoError(t, err)

	w, err := watcher.New(dir, 50*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = w.Start(ctx) }()
	return w, dir, cancel
}

func waitFor(t *testing.T, events <-chan watcher.Event, want watcher.EventType, name string) watcher.Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type == want && ev.Name == name {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s event on %s", want, name)
		}
	}
}

func TestWatcher_EmitsAddedAfterSettle(t *testing.T) {
	w, dir, cancel := setup(t)
	defer cancel()

	path := filepath.Join(dir.AreaPath(storage.AreaIcons), "icon-x.svg")
	require.NoError(t, os.WriteFile(path, []byte("<svg/>"), 0o644))

	ev := waitFor(t, w.Events(), watcher.EventAdded, "icon-x.svg")
	require.Equal(t, storage.AreaIcons, ev.Area)
	require.Equal(t, path, ev.Path)
}

func TestWatcher_EmitsModified(t *testing.T) {
	w, dir, cancel := setup(t)
	defer cancel()

	path := filepath.Join(dir.AreaPath(storage.AreaData), "icons.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	waitFor(t, w.Events(), watcher.EventAdded, "icons.json")

	require.NoError(t, os.WriteFile(path, []byte(`{"icons":[]}`), 0o644))
	ev := waitFor(t, w.Events(), watcher.EventModified, "icons.json")
	require.Equal(t, storage.AreaData, ev.Area)
}

func TestWatcher_EmitsRemovedImmediately(t *testing.T) {
	w, dir, cancel := setup(t)
	defer cancel()

	path := filepath.Join(dir.AreaPath(storage.AreaIcons), "icon-y.svg")
	require.NoError(t, os.WriteFile(path, []byte("<svg/>"), 0o644))
	waitFor(t, w.Events(), watcher.EventAdded, "icon-y.svg")

	require.NoError(t, os.Remove(path))
	ev := waitFor(t, w.Events(), watcher.EventRemoved, "icon-y.svg")
	require.Equal(t, storage.AreaIcons, ev.Area)
}

func TestWatcher_IgnoresDotfiles(t *testing.T) {
	w, dir, cancel := setup(t)
	defer cancel()

	hidden := filepath.Join(dir.AreaPath(storage.AreaIcons), ".tmp-edit")
	require.NoError(t, os.WriteFile(hidden, []byte("x"), 0o644))
	visible := filepath.Join(dir.AreaPath(storage.AreaIcons), "icon-z.svg")
	require.NoError(t, os.WriteFile(visible, []byte("<svg/>"), 0o644))

	ev := waitFor(t, w.Events(), watcher.EventAdded, "icon-z.svg")
	require.Equal(t, "icon-z.svg", ev.Name, "dotfile events must not surface")
}

func TestNew_RequiresDirectoryBackend(t *testing.T) {
	_, err := watcher.New(nil, 0, nil)
	require.ErrorIs(t, err, errors.ErrUnsupported)
}

func TestEventType_String(t *testing.T) {
	require.Equal(t, "added", watcher.EventAdded.String())
	require.Equal(t, "modified", watcher.EventModified.String())
	require.Equal(t, "removed", watcher.EventRemoved.String())
}
