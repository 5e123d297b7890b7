package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coriolisfix/gatefix/internal/logger"
	"github.com/coriolisfix/gatefix/internal/queue"
	"github.com/coriolisfix/gatefix/internal/reply"
	"github.com/coriolisfix/gatefix/internal/telemetry"
	"github.com/coriolisfix/gatefix/pkg/api"
	"github.com/coriolisfix/gatefix/pkg/config"
	"github.com/coriolisfix/gatefix/pkg/controlplane/store"
	"github.com/coriolisfix/gatefix/pkg/gateway"
	"github.com/coriolisfix/gatefix/pkg/metrics"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gatefix Engine",
	Long: `Start the gatefix Engine in the foreground: the admin REST API, the
control-plane store, and the Reply Registry an embedded or future Library
process submits administrative operations onto.

Examples:
  gatefixd start
  gatefixd start --config /etc/gatefix/config.yaml
  GATEFIX_LOGGING_LEVEL=DEBUG gatefixd start`,
	RunE: runStart,
}

const inboxCapacity = 1024

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile(), nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "gatefixd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	profilingShutdown, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "gatefixd",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", "error", err)
		}
	}()

	logger.Info("configuration loaded", "source", getConfigSource(GetConfigFile()))

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		logger.Info("metrics enabled, served at /metrics on the admin API port")
	} else {
		logger.Info("metrics collection disabled")
	}

	cpStore, err := store.Open(cfg.ControlPlane)
	if err != nil {
		return fmt.Errorf("failed to open control-plane store: %w", err)
	}
	defer func() {
		if err := cpStore.Close(); err != nil {
			logger.Error("control-plane store close error", "error", err)
		}
	}()

	inbox := queue.NewInbox(inboxCapacity)
	replies := reply.New(inbox)
	gw := gateway.New(replies, 0, cfg.Session.ReplyTimeout)

	handlers := api.NewHandlers(gw, cpStore)
	server := api.NewServer(api.Config{Port: cfg.API.Port}, handlers)

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.Start(ctx) }()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("gatefixd is running, press Ctrl+C to stop")

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error("server shutdown error", "error", err)
			return err
		}
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("server error", "error", err)
			return err
		}
	}

	logger.Info("gatefixd stopped gracefully")
	return nil
}
