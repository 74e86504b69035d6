// Package di provides dependency injection configuration for IconVault.
package di

import (
	"github.com/samber/do/v2"

	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/di/providers"
)

// NewContainer creates and configures the DI container with all providers.
// The configuration is parsed once by the caller and registered as a value;
// everything else is lazy and not constructed until invoked.
func NewContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideHandleStore)
	do.Provide(injector, providers.ProvideBackend)
	do.Provide(injector, providers.ProvideStore)

	// Business services
	do.Provide(injector, providers.ProvideIconService)
	do.Provide(injector, providers.ProvideCategoryService)
	do.Provide(injector, providers.ProvideReconciler)
	do.Provide(injector, providers.ProvideExportManager)
	do.Provide(injector, providers.ProvideBackupService)

	// Workers
	do.Provide(injector, providers.ProvideWatcher)

	return injector
}
