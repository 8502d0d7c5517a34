// Package bootstrap loads configuration for the command binaries and builds
// the service logger from it.
package bootstrap

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

// Load reads an optional .env file, then the DETAILSHOP_* environment. The
// returned logger always works; on error it is the pre-config default so
// the caller can report the failure.
func Load(service string) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: service})

	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, logg, err
		}
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logg, err
	}
	cfg.Service.Kind = service
	return cfg, Logger(service, cfg.App), nil
}

// Logger builds the configured logger for service.
func Logger(service string, app config.AppConfig) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: service,
		Level:       logger.ParseLevel(app.LogLevel),
		WarnStack:   app.LogWarnStack,
		Format:      app.LogFormat,
	})
}

// Fields are the process-wide log fields every binary starts with.
func Fields(cfg *config.Config, extra map[string]any) map[string]any {
	fields := map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}
