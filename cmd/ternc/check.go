package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tern/internal/diagfmt"
	"tern/internal/observ"
	"tern/internal/pipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [unit files|directories...]",
	Short: "Analyse units and report diagnostics",
	Long: `Analyse unit documents: resolve names, order definitions, infer types and bind
class methods. Without arguments the units are selected by tern.toml.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().String("emit-interfaces", "", "write interface files of checked modules to this directory")
	checkCmd.Flags().String("ui", "off", "progress view (auto|on|off)")
	checkCmd.Flags().String("stop-after", "", "stop every unit after this stage (declare|shuffle|qualify|order|check|bind)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// runCheck executes the "check" command. Problems in units are printed as
// diagnostics and end the command with errHasErrors; any other error is
// a failure of the tool itself.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "json", "short":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	emitDir, err := cmd.Flags().GetString("emit-interfaces")
	if err != nil {
		return fmt.Errorf("failed to get emit-interfaces flag: %w", err)
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	stopAfter, err := cmd.Flags().GetString("stop-after")
	if err != nil {
		return fmt.Errorf("failed to get stop-after flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	cfg, err := loadCheckConfig(cmd)
	if err != nil {
		return err
	}
	paths, err := cfg.units(args)
	if err != nil {
		return err
	}
	if emitDir == "" {
		emitDir = cfg.manifest.OutputDir()
	}

	opts := pipeline.Options{
		Jobs:           cfg.jobs,
		MaxDiagnostics: cfg.maxDiagnostics,
		Prelude:        cfg.prelude,
		InterfaceDirs:  cfg.interfaceDirs,
		EmitDir:        emitDir,
		StopAfter:      stopAfter,
	}
	if showTimings {
		opts.Timer = observ.NewTimer()
	}

	var res *pipeline.Result
	// прогресс рисуется в stderr, stdout остаётся для диагностик
	if shouldUseTUI(mode) {
		res, err = runCheckWithUI(cmd.Context(), "checking "+cfg.manifest.Unit.Name, paths, opts)
	} else {
		res, err = pipeline.Run(cmd.Context(), paths, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	out := cmd.OutOrStdout()
	if err := printResult(cmd, out, res, format, pathMode, withNotes); err != nil {
		return err
	}
	if showTimings {
		printTimings(cmd.ErrOrStderr(), opts.Timer, format)
	}
	if res.HasErrors() {
		return errHasErrors
	}
	return nil
}

func printResult(cmd *cobra.Command, out io.Writer, res *pipeline.Result, format string, pathMode diagfmt.PathMode, withNotes bool) error {
	switch format {
	case "json":
		units := make([]diagfmt.UnitInput, 0, len(res.Units))
		for _, u := range res.Units {
			in := diagfmt.UnitInput{Path: u.Path, Name: u.Meta.Name, Skipped: u.Skipped, Bag: u.Bag}
			if !u.Meta.UnitHash.IsZero() {
				in.UnitHash = u.Meta.UnitHash.String()
			}
			units = append(units, in)
		}
		opts := diagfmt.JSONOpts{IncludePositions: true, PathMode: pathMode, IncludeNotes: withNotes}
		if err := diagfmt.RunJSON(out, res.RunID, units, res.FileSet, opts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
		return nil
	case "short":
		for _, u := range res.Units {
			if err := diagfmt.Short(out, u.Bag, res.FileSet, pathMode); err != nil {
				return err
			}
		}
		return nil
	}

	color, err := useColor(cmd)
	if err != nil {
		return err
	}
	opts := diagfmt.PrettyOpts{Color: color, Context: 1, PathMode: pathMode, ShowNotes: withNotes}
	for _, u := range res.Units {
		if err := diagfmt.Pretty(out, u.Bag, res.FileSet, opts); err != nil {
			return err
		}
	}
	errs := res.ErrorCount()
	summary := fmt.Sprintf("checked %d unit(s): %d error(s)", len(res.Units), errs)
	if skipped := countSkipped(res); skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", skipped)
	}
	_, err = fmt.Fprintln(cmd.ErrOrStderr(), summary)
	return err
}

func countSkipped(res *pipeline.Result) int {
	n := 0
	for _, u := range res.Units {
		if u.Skipped {
			n++
		}
	}
	return n
}
