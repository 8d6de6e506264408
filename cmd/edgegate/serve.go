package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/edgegate/edgegate"
	"github.com/edgegate/edgegate/config"
	edgehttp "github.com/edgegate/edgegate/http"
	"github.com/edgegate/edgegate/loader"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the edgegate HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8093, "HTTP server port")
	serveCmd.Flags().String("policy-file", "", "local policy document path (env: EDGEGATE_POLICY_FILE)")
	serveCmd.Flags().String("central", "", "central config server URL (env: EDGEGATE_POLICY_CENTRAL)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	if (cfg.Policy.File == "") == (cfg.Policy.Central == "") {
		return errors.New("exactly one policy source must be set: policy.file or policy.central")
	}

	store := edgegate.NewStore()

	if cfg.Policy.File != "" {
		if err := loader.LoadFile(cfg.Policy.File, store); err != nil {
			return fmt.Errorf("load policy file: %w", err)
		}
		slog.Info("loaded policy file", "file", cfg.Policy.File)
	} else {
		interval := time.Duration(cfg.Policy.PollInterval) * time.Second
		poller, err := loader.NewPoller(store, cfg.Policy.Central, interval)
		if err != nil {
			return fmt.Errorf("configure central poller: %w", err)
		}

		// Serving starts on the first document; a central server that is
		// down at boot is a startup error, not a silent empty policy set.
		if err := poller.Refresh(ctx); err != nil {
			return fmt.Errorf("fetch initial policy document: %w", err)
		}
		go poller.Run(ctx)
	}

	if err := os.MkdirAll(cfg.Server.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("open data root: %w", err)
	}
	defer func() { _ = root.Close() }()

	engine := edgegate.NewEngine(store)

	handlerConfig := edgehttp.HandlerConfig{
		CORS:        cfg.CORS,
		Metrics:     cfg.Metrics,
		MaxInFlight: cfg.Server.MaxInFlight,
	}

	handler := edgehttp.NewHandler(&handlerConfig, engine, root)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "data_dir", cfg.Server.DataDir)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
