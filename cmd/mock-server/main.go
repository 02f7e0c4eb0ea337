package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/form3tech-oss/mock-server/internal/app/configuration"
	"github.com/form3tech-oss/mock-server/internal/app/metrics"
	"github.com/form3tech-oss/mock-server/internal/app/mockserver"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "mock-server",
	Short:        "Serve canned HTTP responses from a directory of JSON fixtures",
	SilenceUsage: true,
	RunE:         run,
}

func main() {
	rootCmd.Flags().StringVar(&configPath, "config", configuration.DefaultPath, "path to a JSON or YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	recorder := metrics.NewRecorder()

	for {
		reload, err := serveOnce(ctx, recorder)
		if err != nil {
			return err
		}
		if !reload {
			return nil
		}
		log.Info("Reloading server due to changes in mock files...")
	}
}

// serveOnce resolves a fresh configuration for every loop so that edits to
// the config file are picked up on reload too.
func serveOnce(ctx context.Context, recorder *metrics.Recorder) (bool, error) {
	config, err := configuration.Load(ctx, configPath)
	if err != nil {
		return false, err
	}
	configuration.ConfigureLogging(config)

	return mockserver.Run(ctx, config, mockserver.WithMetrics(recorder))
}
