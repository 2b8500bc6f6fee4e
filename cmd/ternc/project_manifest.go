package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tern/internal/project"
)

// checkConfig is the manifest with command-line overrides applied.
type checkConfig struct {
	manifest       *project.Manifest
	maxDiagnostics int
	jobs           int
	prelude        []string
	interfaceDirs  []string
}

// loadCheckConfig finds tern.toml above the working directory (or uses
// defaults) and applies the persistent flags the user set explicitly.
func loadCheckConfig(cmd *cobra.Command) (*checkConfig, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	m, err := project.Discover(wd)
	if err != nil {
		return nil, err
	}
	cfg := &checkConfig{
		manifest:       m,
		maxDiagnostics: m.Analysis.MaxDiagnostics,
		jobs:           m.Analysis.Jobs,
		prelude:        m.Analysis.Prelude,
		interfaceDirs:  m.InterfaceDirs(),
	}

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("max-diagnostics") {
		if cfg.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if cfg.jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("prelude") {
		if cfg.prelude, err = flags.GetStringSlice("prelude"); err != nil {
			return nil, fmt.Errorf("failed to get prelude flag: %w", err)
		}
		for _, name := range cfg.prelude {
			if !project.IsValidModuleName(name) {
				return nil, fmt.Errorf("invalid prelude module name %q", name)
			}
		}
	}
	if flags.Changed("iface") {
		dirs, err := flags.GetStringSlice("iface")
		if err != nil {
			return nil, fmt.Errorf("failed to get iface flag: %w", err)
		}
		// флаги относительно рабочей директории, не манифеста
		cfg.interfaceDirs = cfg.interfaceDirs[:0:0]
		for _, d := range dirs {
			cfg.interfaceDirs = append(cfg.interfaceDirs, filepath.Clean(d))
		}
	}
	if cfg.jobs < 0 || cfg.maxDiagnostics < 0 {
		return nil, fmt.Errorf("--jobs and --max-diagnostics must not be negative")
	}
	return cfg, nil
}

// units returns the unit files named by args, or the manifest sources when
// there are none.
func (c *checkConfig) units(args []string) ([]string, error) {
	if len(args) > 0 {
		return project.Expand(args)
	}
	paths, err := c.manifest.Sources()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no units found under %s", c.manifest.Dir)
	}
	return paths, nil
}
