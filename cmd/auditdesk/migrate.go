package main

import (
	"context"
	"fmt"

	"auditdesk/internal/db"

	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply the database schema",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.StoreDriver != "postgres" {
			return fmt.Errorf("migrate needs STORE_DRIVER=postgres")
		}
		logger := newLogger(cfg)

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool, cfg.DatabaseSchema); err != nil {
			return err
		}

		logger.WithField("schema", cfg.DatabaseSchema).Info("schema applied")
		return nil
	},
}
