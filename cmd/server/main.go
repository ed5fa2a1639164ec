package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/tuannm99/sqlgrade/internal"
	"github.com/tuannm99/sqlgrade/internal/assignment"
	"github.com/tuannm99/sqlgrade/internal/grader"
	"github.com/tuannm99/sqlgrade/internal/validate"
	"github.com/tuannm99/sqlgrade/server/gradewire"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults + SQLGRADE_* env when empty)")
	addr := flag.String("addr", "", "override server.addr")
	dir := flag.String("assignments", "", "override assignments.dir")
	flag.Parse()

	if err := run(*configPath, *addr, *dir); err != nil {
		fmt.Fprintf(os.Stderr, "sqlgrade: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr, dir string) error {
	cfg, err := internal.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dir != "" {
		cfg.Assignments.Dir = dir
	}
	if err := internal.SetupLogger(os.Stderr, cfg); err != nil {
		return err
	}

	store, err := assignment.OpenFileStore(cfg.Assignments.Dir)
	if err != nil {
		return err
	}
	as, err := store.List(context.Background())
	if err != nil {
		return err
	}
	slog.Info("assignments loaded", "dir", cfg.Assignments.Dir, "count", len(as))

	opts, err := cfg.ValidatorOptions()
	if err != nil {
		return err
	}
	g := grader.New(store, nil, grader.Options{
		MaxRows:   cfg.Grader.MaxRows,
		Parallel:  cfg.Grader.Parallel,
		Validator: validate.New(opts),
	})
	slog.Debug("validator ready",
		"matching", opts.Matching.String(),
		"tolerance", opts.Tolerance,
		"precision", opts.Precision,
	)

	return gradewire.Run(gradewire.ServerConfig{Addr: cfg.Server.Addr}, &gradewire.Handler{Grader: g, Store: store})
}
