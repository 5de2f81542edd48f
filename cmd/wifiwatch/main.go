package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wifiwatch/internal/events"
	"wifiwatch/internal/metrics"
	"wifiwatch/internal/monitor"
	"wifiwatch/internal/probe"
	"wifiwatch/internal/radio"
	"wifiwatch/internal/server"
	"wifiwatch/internal/storage"
)

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "wifiwatch",
		Short: "Wi-Fi latency watchdog with automatic radio recovery",
		Long: `wifiwatch pings a reference host on a fixed cadence, classifies each
sample against a latency threshold, and cycles the wireless radio when
latency degrades. Status and settings are exposed over a small HTTP API
with a websocket event feed at /api/events.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, addr)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to settings file (YAML)")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "address for the control API")
	return cmd
}

func run(configPath, addr string) error {
	store, err := storage.NewSettingsStore(configPath)
	if err != nil {
		return fmt.Errorf("initialise settings store: %w", err)
	}
	settings, err := store.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	bus := events.NewBus()
	defer bus.Close()

	stats := metrics.NewCollector()
	mon := monitor.New(settings, probe.NewSystemPinger(), radio.NewNMCLIController(), bus, stats)
	defer mon.Stop()

	// Resume monitoring when it was enabled on last shutdown.
	if settings.Enabled {
		mon.Start()
	}

	srv := server.New(addr, mon, bus, store, stats)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("wifiwatch listening on %s (ping host %s, interval %ds)", addr, settings.PingHost, settings.CheckIntervalS)
	if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
