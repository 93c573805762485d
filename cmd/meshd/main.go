// Command meshd starts the refresh-subsystem daemon: loads config, builds
// the process-wide services context, and brings up the transport substrate
// and status server; it registers no refresh descriptors (the context's
// registry stays empty). Flag/param-file parsing beyond the handful of daemon-level
// flags below is an explicit Non-goal.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cello-mesh/refresh/cmn/nlog"
	"github.com/cello-mesh/refresh/services"
	"github.com/cello-mesh/refresh/transport"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "meshd",
		Short: "ghost-zone refresh daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to YAML config (defaults used if omitted)")

	if err := root.Execute(); err != nil {
		nlog.Fatalf("meshd: %v", err)
	}
}

func run(configPath string) error {
	cfg := services.Default()
	if configPath != "" {
		loaded, err := services.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	nlog.SetLevel(cfg.LogLevel)

	ctx := services.NewContext(services.Hierarchy{Rank: 3, MinLevel: 0}, nil, cfg)

	dir, err := transport.NewDirectory(":memory:")
	if err != nil {
		return err
	}
	defer dir.Close()
	cache, err := transport.NewLocationCache(dir, 4096)
	if err != nil {
		return err
	}
	_ = transport.NewSubstrate(cache, cfg.TransportDepth, nil)
	nlog.Infof("meshd: transport substrate ready, stream depth %d", cfg.TransportDepth)

	reg := prometheus.NewRegistry()
	services.NewMetrics(reg)
	status := services.NewStatusServer(ctx)

	server := &http.Server{Addr: cfg.StatusAddr, Handler: status}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nlog.Errorf("meshd: status server: %v", err)
		}
	}()
	nlog.Infof("meshd: listening on %s", cfg.StatusAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
