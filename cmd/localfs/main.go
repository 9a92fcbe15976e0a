// Command localfs runs a standalone local-filesystem object store, wiring
// together internal/config's loader, pkg/localfs's core, and an optional
// Prometheus /metrics endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/cubbit/localfs/internal/config"
	"github.com/cubbit/localfs/internal/logger"
	"github.com/cubbit/localfs/pkg/localfs"
	"github.com/cubbit/localfs/pkg/metrics"
	promstore "github.com/cubbit/localfs/pkg/metrics/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: $XDG_CONFIG_HOME/localfs/config.yaml)")
	root := flag.String("root", "", "storage root override (takes precedence over config file/env)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *root != "" {
		cfg.Store.Root = *root
	}

	logger.SetLevel(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var storeMetrics localfs.Metrics
	var metricsServer *metrics.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		storeMetrics = promstore.NewStoreMetrics()
		metricsServer = metrics.NewServer(cfg.Metrics.Listen)
	}

	store, err := localfs.New(ctx, cfg.Store.Root, config.StoreOptions(cfg.Store, storeMetrics)...)
	if err != nil {
		log.Fatalf("failed to open store at %s: %v", cfg.Store.Root, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("store close: %v", err)
		}
	}()

	fmt.Printf("localfs: serving %s\n", cfg.Store.Root)
	logger.Info("localfs: store opened at %s (synced=%v hardlink_on_copy=%v)",
		cfg.Store.Root, cfg.Store.Synced, cfg.Store.HardlinkOnCopy)

	if metricsServer != nil {
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("localfs: ready, press Ctrl+C to stop")
	<-sigCh
	logger.Info("localfs: shutdown signal received")
	cancel()
}
