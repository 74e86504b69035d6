package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/logger"
	"github.com/iconvault/iconvault/internal/storage"
	"github.com/iconvault/iconvault/internal/store"
)

const initTimeout = 30 * time.Second

// ProvideHandleStore provides the remembered-workspace store.
func ProvideHandleStore(i do.Injector) (*storage.HandleStore, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return storage.NewHandleStore(cfg.Storage.StatePath), nil
}

// BackendHandle wraps the storage backend with shutdown capability. When the
// backend is directory-mode, Directory is set; key-value mode leaves it nil.
type BackendHandle struct {
	storage.Backend
	Directory *storage.Directory
}

// Shutdown implements do.Shutdownable.
func (h *BackendHandle) Shutdown() error {
	return h.Close()
}

// ProvideBackend selects and opens the storage backend. In auto mode a
// configured or remembered workspace selects the directory backend; with no
// workspace the embedded key-value store is used.
func ProvideBackend(i do.Injector) (*BackendHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	handles := do.MustInvoke[*storage.HandleStore](i)

	workspace := cfg.Storage.Workspace
	if workspace == "" && cfg.Storage.Mode != config.ModeBadger {
		remembered, err := handles.Load()
		if err != nil {
			return nil, err
		}
		workspace = remembered
	}

	mode := cfg.Storage.Mode
	if mode == config.ModeAuto {
		if workspace != "" {
			mode = config.ModeDirectory
		} else {
			mode = config.ModeBadger
		}
	}

	switch mode {
	case config.ModeDirectory:
		if workspace == "" {
			return nil, errors.Validation("directory mode requires a workspace; run 'iconvault init <dir>' or set --workspace")
		}
		dir, err := storage.NewDirectory(workspace, log.Logger)
		if err != nil {
			return nil, err
		}
		if err := handles.Save(workspace); err != nil {
			log.Warn("could not remember workspace", "error", err)
		}
		return &BackendHandle{Backend: dir, Directory: dir}, nil
	case config.ModeBadger:
		kv, err := storage.NewKeyValue(cfg.Storage.BadgerPath, log.Logger)
		if err != nil {
			return nil, err
		}
		return &BackendHandle{Backend: kv}, nil
	default:
		return nil, errors.Validationf("invalid storage mode %q", mode)
	}
}

// StoreHandle wraps the entity store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the initialized entity store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	backend := do.MustInvoke[*BackendHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	st := store.New(backend.Backend, log.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := st.Initialize(ctx); err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}
