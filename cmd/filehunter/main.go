// Command filehunter is a read-only HTTP file server that resolves a
// request URL to at most one file chosen from several candidate storage
// roots and streams it to the client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/finch-xu/filehunter/internal/api"
	"github.com/finch-xu/filehunter/internal/config"
	"github.com/finch-xu/filehunter/internal/httpd"
	"github.com/finch-xu/filehunter/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, continuing without it")
	}

	var configPath string
	flag.StringVar(&configPath, "c", "", "path to the TOML config file (required)")
	flag.StringVar(&configPath, "config", "", "path to the TOML config file (required)")
	flag.Parse()

	if err := logging.Init(os.Getenv("LEVEL")); err != nil {
		fmt.Fprintf(os.Stderr, "invalid LEVEL filter: %v\n", err)
		return 1
	}

	if configPath == "" {
		logrus.Error("missing required flag: -c/--config")
		return 1
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Error("failed to load configuration")
		return 1
	}

	for _, loc := range cfg.Table.Locations {
		logrus.WithFields(logrus.Fields{
			"prefix": loc.Prefix,
			"mode":   loc.Mode.String(),
			"roots":  len(loc.Roots),
		}).Info("location configured")
	}

	engine := api.NewEngine(cfg)
	server := httpd.New(cfg.Server, engine)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logrus.WithField("bind", cfg.Server.Bind).Info("starting filehunter")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logrus.WithError(err).Error("failed to bind")
			return 2
		}
	case <-ctx.Done():
		logrus.Info("shutdown signal received, draining connections")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), httpd.DrainTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("graceful shutdown failed")
		}
	}

	return 0
}
