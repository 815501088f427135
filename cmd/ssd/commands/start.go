package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/adminhttp"
	"github.com/arvindsh/dfscore/internal/config"
	"github.com/arvindsh/dfscore/internal/logger"
	"github.com/arvindsh/dfscore/internal/metrics"
	"github.com/arvindsh/dfscore/internal/storageserver"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a storage server",
	Long: `Start a storage server.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/dfs/config.yaml.

Examples:
  ssd start
  ssd start --config /etc/dfs/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ops := metrics.NewOps(nil, "storage_server")
	srv := storageserver.NewServer(storageserver.Config{
		ClientFacingAddr:  cfg.StorageServer.ClientFacingAddr,
		NMFacingAddr:      cfg.StorageServer.NMFacingAddr,
		NMAddr:            cfg.StorageServer.NMAddr,
		StorageRoot:       cfg.StorageServer.StorageRoot,
		ShadowRoot:        cfg.StorageServer.ShadowRoot,
		HeartbeatInterval: cfg.StorageServer.HeartbeatInterval,
	}, ops)

	var adminSrv *http.Server
	if cfg.Metrics.Enabled {
		adminSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: adminhttp.NewRouter("storage_server", nil, nil),
		}
		go func() {
			logger.Info("storage server admin http listening", "addr", adminSrv.Addr)
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("admin http server error", logger.Err(err))
			}
		}()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("storage server is running",
		"client_addr", cfg.StorageServer.ClientFacingAddr,
		"nm_addr", cfg.StorageServer.NMFacingAddr)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()
		srv.Stop()

		if adminSrv != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer shutdownCancel()
			_ = adminSrv.Shutdown(shutdownCtx)
		}

		select {
		case err := <-serverDone:
			if err != nil {
				logger.Error("storage server shutdown error", logger.Err(err))
				return err
			}
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("storage server shutdown timed out")
		}
		logger.Info("storage server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("storage server error", logger.Err(err))
			return err
		}
	}

	return nil
}
