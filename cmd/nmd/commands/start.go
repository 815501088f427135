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
	"github.com/arvindsh/dfscore/internal/nameserver"
	"github.com/arvindsh/dfscore/internal/registry"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the name server",
	Long: `Start the name server.

Use --config to specify a custom configuration file, or it will use the
default location at $XDG_CONFIG_HOME/dfs/config.yaml.

Examples:
  nmd start
  nmd start --config /etc/dfs/config.yaml
  DFS_NAME_SERVER_ENABLE_EXEC=true nmd start`,
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

	ops := metrics.NewOps(nil, "name_server")
	reg := registry.New(cfg.NameServer.MaxStorageServers)
	store := nameserver.NewStore(reg, cfg.NameServer.LRUSize, cfg.NameServer.CheckpointPath)
	if err := store.LoadCheckpoint(); err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	srv := nameserver.NewServer(nameserver.Config{
		ListenAddr: cfg.NameServer.ListenAddr,
		EnableExec: cfg.NameServer.EnableExec,
	}, store, ops)

	var adminSrv *http.Server
	if cfg.Metrics.Enabled {
		adminSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: adminhttp.NewRouter("name_server", nil, nil),
		}
		go func() {
			logger.Info("name server admin http listening", "addr", adminSrv.Addr)
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

	logger.Info("name server is running", "addr", cfg.NameServer.ListenAddr, "enable_exec", cfg.NameServer.EnableExec)

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
				logger.Error("name server shutdown error", logger.Err(err))
				return err
			}
		case <-time.After(cfg.ShutdownTimeout):
			logger.Warn("name server shutdown timed out")
		}
		logger.Info("name server stopped gracefully")

	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error("name server error", logger.Err(err))
			return err
		}
	}

	return nil
}
