package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auditdesk/internal/audit"
	"auditdesk/internal/seed"
	"auditdesk/internal/server"

	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "demo-password",
			Usage: "Password for the demo accounts loaded into the memory store",
			Value: "auditdesk-demo",
		},
	},
	Action: serve,
}

func serve(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := newLogger(config)

	st, closeStore, err := openStore(ctx, config, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, err := openBlobs(ctx, config)
	if err != nil {
		return err
	}

	provider, err := openAuth(ctx, config, st)
	if err != nil {
		return err
	}

	svc := audit.New(logger, st, blobs)

	if config.StoreDriver == "memory" {
		if err := seed.Users(ctx, logger, svc, c.String("demo-password")); err != nil {
			return err
		}
		if err := seed.Engagements(ctx, logger, svc); err != nil {
			return err
		}
	}

	srv, err := server.New(config, logger, svc, provider)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).
			WithField("storage", blobs.Name()).
			WithField("auth", config.AuthProvider).
			Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
