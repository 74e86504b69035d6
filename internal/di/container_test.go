package di_test

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/require"

	"github.com/iconvault/iconvault/internal/config"
	"github.com/iconvault/iconvault/internal/di"
	"github.com/iconvault/iconvault/internal/validation"
)

func TestNewContainer_UsesCallerConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Environment = "development"
	cfg.Storage.Mode = config.ModeBadger

	injector := di.NewContainer(cfg)
	t.Cleanup(func() { _ = injector.Shutdown() })

	// The container must hand back the exact instance the caller parsed,
	// not re-parse the process arguments.
	got, err := do.Invoke[*config.Config](injector)
	require.NoError(t, err)
	require.Same(t, cfg, got)

	v, err := do.Invoke[*validation.Validator](injector)
	require.NoError(t, err)
	require.NotNil(t, v)
}
