package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/config"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/logging"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/service"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/store"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/store/jsonfile"
	"github.com/theodorosasteriotis/Expired-medication-tracker/internal/store/sqlite"
)

// app bundles the wired dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracker *service.Tracker
}

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	backend, closeBackend, err := newBackend(cfg)
	if err != nil {
		logger.Error("failed to open backing store", "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	records := store.New(backend, policyFromConfig(cfg), logger)
	a := &app{
		cfg:     cfg,
		logger:  logger,
		tracker: service.NewTracker(records, logger),
	}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newBackend(cfg *config.Config) (store.Backend, func(), error) {
	switch cfg.Backend {
	case "sqlite":
		b, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return b, func() { _ = b.Close() }, nil
	case "json":
		return jsonfile.New(cfg.StorePath), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (use json or sqlite)", cfg.Backend)
	}
}

func policyFromConfig(cfg *config.Config) store.Policy {
	p := store.DefaultPolicy()
	if cfg.IdentityPolicy == string(store.IdentityPermissive) {
		p.Identity = store.IdentityPermissive
	}
	if cfg.CorruptPolicy == string(store.CorruptRecover) {
		p.Corrupt = store.CorruptRecover
	}
	return p
}
