package storage

import (
	"os"
	"path/filepath"
	"time"

	"encoding/json/v2"

	"github.com/iconvault/iconvault/internal/errors"
)

// HandleStore remembers the user's chosen workspace directory across
// sessions, so a returning session reopens it without asking again. It plays
// the role the browser original gave to its persisted directory handle.
type HandleStore struct {
	path string
}

// handleRecord is the persisted shape of a remembered workspace.
type handleRecord struct {
	Workspace string    `json:"workspace"`
	GrantedAt time.Time `json:"grantedAt"`
}

// NewHandleStore creates a handle store backed by the given state file.
func NewHandleStore(path string) *HandleStore {
	return &HandleStore{path: path}
}

// Load returns the remembered workspace path, or "" when none is stored.
// A remembered path that no longer exists on disk is treated as not stored.
func (h *HandleStore) Load() (string, error) {
	data, err := os.ReadFile(h.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Storage("read workspace state").WithCause(err)
	}

	var rec handleRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt state file just means the user picks a workspace again.
		return "", nil
	}
	if rec.Workspace == "" {
		return "", nil
	}
	if _, err := os.Stat(rec.Workspace); err != nil {
		return "", nil
	}
	return rec.Workspace, nil
}

// Save remembers the workspace path.
func (h *HandleStore) Save(workspace string) error {
	if workspace == "" {
		return errors.Validation("workspace path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return errors.Storage("create state directory").WithCause(err)
	}

	data, err := json.Marshal(handleRecord{
		Workspace: workspace,
		GrantedAt: time.Now(),
	})
	if err != nil {
		return errors.Internal("marshal workspace state").WithCause(err)
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return errors.Storage("write workspace state").WithCause(err)
	}
	return nil
}

// Clear forgets the remembered workspace.
func (h *HandleStore) Clear() error {
	err := os.Remove(h.path)
	if err != nil && !os.IsNotExist(err) {
		return errors.Storage("remove workspace state").WithCause(err)
	}
	return nil
}
