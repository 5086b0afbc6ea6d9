package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"flume/internal/config"
	"flume/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "flume",
	Short:         "Schema and query checker for flume scripts",
	Long:          `flume resolves INCLUDE graphs, binds types and streams and type-checks READ/WRITE statements`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		setupColor(cfg.Color)
		if err := setupProfiling(cmd); err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd, cfg.Trace)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if traceCleanup != nil {
			traceCleanup()
		}
		stopProfiling(cmd)
	},
}

// errStopped: diagnostics were already printed, only the exit code is left.
var errStopped = errors.New("stopped on errors")

type configKey struct{}

var traceCleanup func()

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	file, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	return config.Load(config.LoadOptions{
		File:     file,
		StartDir: config.Getwd(),
		Flags:    cmd.Flags(),
	})
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "project file (default: flume.toml/flume.yaml found upward)")
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Int("max-diagnostics", 200, "maximum number of diagnostics to keep")
	pf.String("work-dir", "", "base directory for INCLUDE paths")
	pf.Int("jobs", 0, "max parallel AST document loads (0=auto)")
	pf.String("format", "pretty", "diagnostics format (pretty|short|json|msgpack)")
	pf.Bool("timings", false, "show timing information")
	pf.String("trace", "", "trace output file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson|msgpack)")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0=off)")
	pf.String("cpu-profile", "", "write a CPU profile to this file")
	pf.String("mem-profile", "", "write a heap profile to this file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errStopped) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
