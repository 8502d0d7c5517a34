package migrate

import (
	"context"
	"fmt"

	"github.com/angelmondragon/detailshop-backend/pkg/config"
	"github.com/angelmondragon/detailshop-backend/pkg/db"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

// autoMigrate reports whether a process should migrate on boot. Production
// schemas only move through cmd/migrate; local sqlite databases are created
// fresh and always need the schema.
func autoMigrate(cfg *config.Config) bool {
	if !cfg.FeatureFlags.AutoMigrate {
		return false
	}
	return cfg.App.IsDev() || cfg.FeatureFlags.UseSQLite
}

// MaybeRunDev applies the embedded migrations when auto-migrate is enabled.
func MaybeRunDev(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !autoMigrate(cfg) {
		return nil
	}
	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	runner, err := NewRunner(sqlDB, Dialect(cfg.DB.Driver), Embedded(), logg)
	if err != nil {
		return err
	}
	logg.Info(ctx, "auto-migrate: applying pending migrations")
	if err := runner.Up(ctx); err != nil {
		return err
	}
	version, err := runner.Version(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logg.Info(logg.WithField(ctx, "version", version), "auto-migrate: schema current")
	return nil
}
