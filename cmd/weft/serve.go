package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/presentation/tui"
	httpAdapter "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  `Serves the function catalog and single-function invocation as JSON over HTTP, with Prometheus metrics on /metrics.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cfg, err := loadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			addr := cfg.HTTP.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			opts := []httpAdapter.Option{
				httpAdapter.WithLogger(rt.Logger),
				httpAdapter.WithVersion(weft.Version),
			}
			if cfg.HTTP.Metrics {
				opts = append(opts, httpAdapter.WithMetrics(rt.Metrics.Handler()))
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           httpAdapter.NewHandler(rt.Engine, opts...),
				ReadHeaderTimeout: 10 * time.Second,
			}

			tui.PrintBanner(cmd.ErrOrStderr(), weft.Version)

			serverErrors := make(chan error, 1)
			go func() {
				rt.Logger.Info("HTTP server listening", "address", addr)
				serverErrors <- srv.ListenAndServe()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
				rt.Logger.Info("shutting down HTTP server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					_ = srv.Close()
					return fmt.Errorf("graceful shutdown did not complete: %w", err)
				}
				return nil
			}
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address (overrides http.addr)")
	return cmd
}
