// Package main is the entry point for the trip planner API.
// Its sole responsibility is wiring dependencies together behind the
// serve, migrate and token commands. No business logic belongs here.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/tripplanner/backend/internal/config"
)

const programName = "tripplanner"

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Collaborative trip planning API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		tokenCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// loadConfig loads configuration and installs the JSON logger it describes
// as the slog default.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
