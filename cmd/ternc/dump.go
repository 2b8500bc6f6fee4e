package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tern/internal/diagfmt"
	"tern/internal/pipeline"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] <unit file>",
	Short: "Print the resolved, typed and ordered definitions of a unit",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("stage", "", "dump the graph after this stage instead of the last one")
	dumpCmd.Flags().Bool("all-stages", false, "dump the graph after every stage")
}

func runDump(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd)

	stage, err := cmd.Flags().GetString("stage")
	if err != nil {
		return fmt.Errorf("failed to get stage flag: %w", err)
	}
	all, err := cmd.Flags().GetBool("all-stages")
	if err != nil {
		return fmt.Errorf("failed to get all-stages flag: %w", err)
	}
	cfg, err := loadCheckConfig(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), args, pipeline.Options{
		Jobs:           1,
		MaxDiagnostics: cfg.maxDiagnostics,
		Prelude:        cfg.prelude,
		InterfaceDirs:  cfg.interfaceDirs,
		StopAfter:      stage,
	})
	if err != nil {
		return fmt.Errorf("dump failed: %w", err)
	}
	u := res.Units[0]

	out := cmd.OutOrStdout()
	if u.Graph() != nil {
		graphs := u.Analysis.Graphs[len(u.Analysis.Graphs)-1:]
		if all {
			graphs = u.Analysis.Graphs
		}
		for i, g := range graphs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := diagfmt.Dump(out, g); err != nil {
				return err
			}
		}
	}

	color, err := useColor(cmd)
	if err != nil {
		return err
	}
	if err := diagfmt.Pretty(cmd.ErrOrStderr(), u.Bag, res.FileSet, diagfmt.PrettyOpts{Color: color, Context: 1, ShowNotes: true}); err != nil {
		return err
	}
	if u.HasErrors() {
		return errHasErrors
	}
	return nil
}
