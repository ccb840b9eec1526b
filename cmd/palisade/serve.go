package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/palisade"
	"github.com/aretw0/palisade/internal/logging"
	httpAdapter "github.com/aretw0/palisade/pkg/adapters/http"
	"github.com/aretw0/palisade/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the showcase gate over HTTP",
	Long:  `Registers the built-in showcase stack and exposes it as a JSON API, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		grantsPath, _ := cmd.Flags().GetString("grants")
		level, _ := cmd.Flags().GetString("log-level")

		logger := logging.New(logging.ParseLevel(level))

		auth, err := loadGrants(grantsPath)
		if err != nil {
			return err
		}

		metrics := observability.New(nil)
		gate := palisade.New(
			palisade.WithLogger(logger),
			palisade.WithAuthorizer(auth),
			palisade.WithHooks(metrics.Hooks()),
		)
		if err := gate.Register(showcaseTree()); err != nil {
			return fmt.Errorf("register showcase tree: %w", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", httpAdapter.NewHandler(gate, logger))

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting palisade server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("could not stop server: %w", err)
				}
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "8489", "Port to listen on")
	serveCmd.Flags().String("grants", "", "YAML file with capability grants")
	rootCmd.AddCommand(serveCmd)
}
