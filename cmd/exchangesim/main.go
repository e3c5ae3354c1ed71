// exchangesim is the demonstration driver for the exchange core: it
// creates a handful of users, funds them, and fires a sequence of random
// orders at the exchange, printing a settlement summary. It consumes only
// the exchange facade and the engines and order types it hands out
// (SPEC_FULL §4) — it is an external collaborator, not part of the core.
//
//	main.go — entry point: loads config, builds the root cobra command
//	demo.go — the "run" command: random order-flow simulation
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"spotexchange/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:   "exchangesim",
		Short: "Random order-flow simulator for the spot exchange core",
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "path to config file")

	root.AddCommand(newRunCmd(&cfgPath))
	return root
}

func loadConfig(path string) (*config.Config, *slog.Logger) {
	cfg, err := config.Load(path)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", path)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return cfg, slog.New(handler)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
