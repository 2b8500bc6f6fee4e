package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tern/internal/project"
	"tern/internal/version"
)

// errHasErrors ends a command whose diagnostics are already printed.
var errHasErrors = errors.New("analysis reported errors")

var rootCmd = &cobra.Command{
	Use:           "ternc",
	Short:         "Tern semantic analyser",
	Long:          `ternc resolves, orders and type-checks units produced by the tern parser`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		finishTracing()
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", project.DefaultMaxDiagnostics, "maximum number of diagnostics per unit")
	rootCmd.PersistentFlags().Int("jobs", 0, "max parallel units (0=auto)")
	rootCmd.PersistentFlags().StringSlice("iface", nil, "directories with interface files of already checked units")
	rootCmd.PersistentFlags().StringSlice("prelude", nil, "modules imported implicitly by every module")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|stage|module|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "events kept by the ring tracer")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat trace events at this interval (0=off)")
}

// main запускает корневую команду.
// Любая ошибка, включая ошибки в диагностиках, даёт код выхода 1.
func main() {
	if err := rootCmd.Execute(); err != nil {
		finishTracing()
		if !errors.Is(err, errHasErrors) {
			fmt.Fprintf(os.Stderr, "ternc: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
