package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/espalier/internal/cli"
	httpAdapter "github.com/aretw0/espalier/pkg/adapters/http"
	"github.com/aretw0/espalier/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the assistant in server mode, exposing a JSON API plus Prometheus metrics over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		debug, _ := cmd.Flags().GetBool("debug")
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Serve.Addr = addr
		}

		logger := cli.NewLogger(cfg, debug)

		registry := prometheus.NewRegistry()
		collector := metrics.NewCollector()
		collector.MustRegister(registry)

		assistant, err := cli.NewAssistant(cfg, logger, collector.Hooks())
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    cfg.Serve.Addr,
			Handler: httpAdapter.NewHandler(assistant, logger, registry),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown incomplete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("forced close failed", "error", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")
}
