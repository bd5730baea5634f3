// Command gonsd runs an authoritative/caching DNS server over UDP backed by
// an in-process RR cache loaded from master files and an optional hosts
// file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/novator24/gonsd/internal/config"
	"github.com/novator24/gonsd/internal/loader"
	"github.com/novator24/gonsd/internal/logging"
	"github.com/novator24/gonsd/internal/rrcache"
	"github.com/novator24/gonsd/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gonsd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.Configure(logging.Config{
		Level:            cfg.Logging.Level,
		Structured:       cfg.Logging.Structured,
		StructuredFormat: cfg.Logging.StructuredFormat,
		IncludePID:       cfg.Logging.IncludePID,
		ExtraFields:      cfg.Logging.ExtraFields,
	})

	cache := rrcache.New(uint64(cfg.Cache.MaxBytes), cfg.Cache.MaxRecords)
	cache.SetRoundRobin(cfg.Cache.RoundRobin)

	now := func() uint64 { return uint64(time.Now().Unix()) }

	ld := loader.New(cache, now)
	if err := loadZones(ld, cfg); err != nil {
		return fmt.Errorf("loading zones: %w", err)
	}
	if cfg.Hosts.Path != "" {
		if err := ld.LoadHostsFile(cfg.Hosts.Path, true); err != nil {
			return fmt.Errorf("loading hosts file: %w", err)
		}
	}
	logger.Info("zones loaded", "records", cache.Len(), "bytes", cache.Bytes())

	transport, err := server.ListenUDP(cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.ListenAddr, err)
	}

	handler := &server.QueryHandler{
		Logger:             logger,
		Cache:              cache,
		Now:                now,
		RecursionAvailable: cfg.Server.RecursionAvailable,
	}
	loop := &server.EventLoop{Transport: transport, Handler: handler}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reporter := &server.HealthReporter{Logger: logger, Interval: cfg.Health.Interval}
	go reporter.Run(ctx)

	logger.Info("gonsd listening", "addr", cfg.Server.ListenAddr)
	return loop.Run(ctx)
}

func loadZones(ld *loader.Loader, cfg *config.Config) error {
	for _, f := range cfg.Zones.Files {
		path := f
		if cfg.Zones.Directory != "" && !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Zones.Directory, path)
		}
		if err := ld.LoadZoneFile(path); err != nil {
			return err
		}
	}
	return nil
}
