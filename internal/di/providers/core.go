// Package providers contains dependency injection providers for IconVault.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/logger"
	"github.com/iconvault/iconvault/internal/validation"
)

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("starting IconVault",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"storage_mode", cfg.Storage.Mode,
	)
	return log, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
