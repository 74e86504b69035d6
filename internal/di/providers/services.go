package providers

import (
	"github.com/samber/do/v2"

	"github.com/iconvault/iconvault/internal/backup"
	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/errors"
	"github.com/iconvault/iconvault/internal/export"
	"github.com/iconvault/iconvault/internal/importer"
	"github.com/iconvault/iconvault/internal/logger"
	"github.com/iconvault/iconvault/internal/service"
	"github.com/iconvault/iconvault/internal/validation"
	"github.com/iconvault/iconvault/internal/watcher"
)

// ProvideIconService provides the icon business service.
func ProvideIconService(i do.Injector) (*service.IconService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewIconService(st.Store, v, log.Logger), nil
}

// ProvideCategoryService provides the category business service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	st := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)
	return service.NewCategoryService(st.Store, v, log.Logger), nil
}

// ProvideReconciler provides the bulk import reconciler.
func ProvideReconciler(i do.Injector) (*importer.Reconciler, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return importer.New(st.Store, log.Logger), nil
}

// ProvideExportManager provides the export manager.
func ProvideExportManager(i do.Injector) (*export.Manager, error) {
	st := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return export.New(st.Store, log.Logger), nil
}

// ProvideBackupService provides the backup/restore service.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	st := do.MustInvoke[*StoreHandle](i)
	backend := do.MustInvoke[*BackendHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	return backup.New(st.Store, backend.Backend, cfg.Backup.Dir, cfg.App.Version, log.Logger), nil
}

// WatcherHandle wraps the workspace watcher with shutdown capability.
type WatcherHandle struct {
	*watcher.Watcher
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	return h.Close()
}

// ProvideWatcher provides the workspace watcher. It fails in key-value mode,
// which has no filesystem to watch; callers that can run without watching
// should treat that error as unsupported rather than fatal.
func ProvideWatcher(i do.Injector) (*WatcherHandle, error) {
	backend := do.MustInvoke[*BackendHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if backend.Directory == nil {
		return nil, errors.Unsupported("watching requires the directory storage backend")
	}
	w, err := watcher.New(backend.Directory, 0, log.Logger)
	if err != nil {
		return nil, err
	}
	return &WatcherHandle{Watcher: w}, nil
}
