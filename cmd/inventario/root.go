package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jhoicas/inventario-sheets/internal/bootstrap"
	"github.com/jhoicas/inventario-sheets/pkg/config"
	"github.com/jhoicas/inventario-sheets/pkg/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inventario",
		Short:         "Herramientas de operación del inventario",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newQRCmd(), newTokenCmd(), newHashPasswordCmd())
	return root
}

// loadConfig carga y valida la configuración; los comandos que no tocan las hojas no la usan.
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	return cfg, log, nil
}

func buildApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bootstrap.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg, log)
}
