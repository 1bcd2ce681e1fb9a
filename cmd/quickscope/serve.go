package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cstaulbee/quickscope"
	"github.com/cstaulbee/quickscope/internal/adapters/httpapi"
	"github.com/cstaulbee/quickscope/internal/cli"
	"github.com/cstaulbee/quickscope/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP interview server",
	Long:  `Starts the engine in server mode, exposing a JSON turn API and prometheus metrics over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		opts := runOptions(cmd)

		level := slog.LevelInfo
		if opts.Debug {
			level = slog.LevelDebug
		}
		logger := logging.NewJSON(level)

		metrics := httpapi.NewMetrics(prometheus.DefaultRegisterer)
		engine, closer, err := createServeEngine(opts, logger, metrics)
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}
		defer closer()

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpapi.NewHandler(engine, httpapi.WithLogger(logger), httpapi.WithMetrics(metrics)),
			ReadHeaderTimeout: 5 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server starting", "addr", srv.Addr, "flow_dir", opts.FlowDir)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			logger.Error("server failed", "err", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown incomplete", "err", err)
				if err := srv.Close(); err != nil {
					logger.Error("forced close failed", "err", err)
				}
			}
			logger.Info("server stopped")
		}
	},
}

// createServeEngine builds the engine the same way the run command
// does, with metrics hooks layered on top.
func createServeEngine(opts cli.RunOptions, logger *slog.Logger, metrics *httpapi.Metrics) (*quickscope.Engine, func() error, error) {
	engine, closer, err := cli.CreateEngineWith(opts, logger, quickscope.WithLifecycleHooks(metrics.Hooks()))
	if err != nil {
		return nil, nil, err
	}
	return engine, closer, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
