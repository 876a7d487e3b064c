package main

import (
	"context"
	"fmt"

	"auditdesk/internal/audit"
	"auditdesk/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo users, clients and projects",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "password",
			Usage:    "Password for every demo account",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "users-only",
			Usage: "Skip clients and projects",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger := newLogger(cfg)

		ctx := context.Background()

		st, closeStore, err := openStore(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer closeStore()

		blobs, err := openBlobs(ctx, cfg)
		if err != nil {
			return err
		}

		svc := audit.New(logger, st, blobs)

		if err := seed.Users(ctx, logger, svc, c.String("password")); err != nil {
			return err
		}
		if c.Bool("users-only") {
			return nil
		}

		return seed.Engagements(ctx, logger, svc)
	},
}
