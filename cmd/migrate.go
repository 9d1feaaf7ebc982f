package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hr-directory/db"
	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "run the embedded db migrations",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	dbs, err := initDB(cfg.Database)
	if err != nil {
		return err
	}
	defer dbs.Close()

	// The SQL files are Postgres DDL; SQLite databases follow the gorm models.
	if cfg.Database.Driver == internal.DatabaseDriverSQLite {
		if migrateRollback {
			return fmt.Errorf("rollback is not supported for %s", internal.DatabaseDriverSQLite)
		}
		if err := dbs.Gorm.WithContext(ctx).AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		lg.Info("sqlite schema migrated")
		return nil
	}

	goose.SetBaseFS(db.Migrations)
	goose.SetTableName("schema_migrations")
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, dbs.SQL, db.MigrationsDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	lg.Info("migrations applied", "command", command)
	return nil
}
