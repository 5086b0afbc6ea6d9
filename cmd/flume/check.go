package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flume/internal/config"
	"flume/internal/diagfmt"
	"flume/internal/driver"
	"flume/internal/lint"
	"flume/internal/observ"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Resolve, bind and type-check flume scripts",
	Long:  `Run the whole pipeline over the given files (or project.roots) and print diagnostics`,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("no-lint", false, "skip lint rules")
	checkCmd.Flags().StringSlice("disable-lint", nil, "lint rules to skip, by ID or name")
	checkCmd.Flags().String("between", "strict", "BETWEEN typing policy (strict|bounds-only)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().String("ui", "auto", "show phase progress (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	cfg := configFrom(cmd)
	opts, err := driverOptions(cfg, args)
	if err != nil {
		return err
	}
	if cfg.Lint.Enabled {
		linter, err := lint.New(cfg.Lint.Disable)
		if err != nil {
			return err
		}
		opts.Linter = linter
	}
	if cfg.Timings {
		opts.Timer = observ.NewTimer()
	}

	uiValue, _ := cmd.Flags().GetString("ui")
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	var res *driver.Result
	if shouldUseTUI(mode, cfg.OutputFormat() == diagfmt.FormatPretty) {
		res, err = runCompileWithUI(cmd.Context(), "flume check", opts)
	} else {
		res, err = driver.Compile(cmd.Context(), opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if err := renderDiagnostics(cmd, cfg, res); err != nil {
		return err
	}
	if opts.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Report().Summary())
	}
	if res.StopOnError() {
		return errStopped
	}
	return nil
}

// driverOptions maps the configuration onto a pipeline run.
func driverOptions(cfg *config.Config, args []string) (driver.Options, error) {
	roots := cfg.RootFiles(args)
	if len(roots) == 0 {
		return driver.Options{}, fmt.Errorf("no input files: pass files or set project.roots in %s", config.FileNames[0])
	}
	return driver.Options{
		Roots:            roots,
		WorkDir:          cfg.Project.WorkDir,
		MaxDiagnostics:   cfg.Diagnostics.Max,
		WarningsAsErrors: cfg.Diagnostics.WarningsAsErrors,
		Between:          cfg.Between(),
		Jobs:             cfg.Analysis.Jobs,
	}, nil
}

func renderDiagnostics(cmd *cobra.Command, cfg *config.Config, res *driver.Result) error {
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	fullPath, _ := cmd.Flags().GetBool("fullpath")
	pathMode := diagfmt.PathModeRelative
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	err := diagfmt.Write(cmd.OutOrStdout(), res.Bag, res.FileSet, diagfmt.Options{
		Format: cfg.OutputFormat(),
		Pretty: diagfmt.PrettyOpts{
			Color:     useColor,
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		},
		JSON:       diagfmt.JSONOpts{PathMode: pathMode, IncludeNotes: withNotes},
		Invocation: res.InvocationID.String(),
		Files:      len(res.Includes.Order),
	})
	if err != nil {
		return fmt.Errorf("failed to format diagnostics: %w", err)
	}
	return nil
}
