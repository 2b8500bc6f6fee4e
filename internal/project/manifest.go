package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultSource selects every unit document below a directory.
	DefaultSource         = "**.unit.yaml"
	DefaultMaxDiagnostics = 100
)

// ErrInvalidManifest wraps every validation problem of tern.toml.
var ErrInvalidManifest = errors.New("invalid manifest")

type UnitSection struct {
	Name    string   `toml:"name"`
	Sources []string `toml:"sources"`
}

type AnalysisSection struct {
	Prelude        []string `toml:"prelude"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	Jobs           int      `toml:"jobs"` // 0 = GOMAXPROCS
	Interfaces     []string `toml:"interfaces"`
}

type OutputSection struct {
	Interfaces string `toml:"interfaces"`
}

// Manifest is a parsed tern.toml. Relative paths are relative to Dir.
type Manifest struct {
	Path     string          `toml:"-"`
	Dir      string          `toml:"-"`
	Unit     UnitSection     `toml:"unit"`
	Analysis AnalysisSection `toml:"analysis"`
	Output   OutputSection   `toml:"output"`
}

// Default is the manifest used when dir has no tern.toml.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults(nil)
	return m
}

// LoadManifest parses and validates a tern.toml.
func LoadManifest(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalidManifest, strings.Join(keys, ", "))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	m.Path = abs
	m.Dir = filepath.Dir(abs)
	m.applyDefaults(&meta)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// Discover loads the manifest found above startDir, or the default
// manifest of startDir when there is none.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if ok {
		return LoadManifest(path)
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	return Default(dir), nil
}

func (m *Manifest) applyDefaults(meta *toml.MetaData) {
	defined := func(key ...string) bool { return meta != nil && meta.IsDefined(key...) }
	if strings.TrimSpace(m.Unit.Name) == "" {
		m.Unit.Name = filepath.Base(m.Dir)
	}
	if !defined("unit", "sources") {
		m.Unit.Sources = []string{DefaultSource}
	}
	if !defined("analysis", "max_diagnostics") {
		m.Analysis.MaxDiagnostics = DefaultMaxDiagnostics
	}
}

// Validate checks values the TOML decoder cannot.
func (m *Manifest) Validate() error {
	if m.Analysis.Jobs < 0 {
		return fmt.Errorf("%w: [analysis].jobs must not be negative", ErrInvalidManifest)
	}
	if m.Analysis.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: [analysis].max_diagnostics must not be negative", ErrInvalidManifest)
	}
	for _, p := range m.Analysis.Prelude {
		if !IsValidModuleName(p) {
			return fmt.Errorf("%w: [analysis].prelude: invalid module name %q", ErrInvalidManifest, p)
		}
	}
	if len(m.Unit.Sources) == 0 {
		return fmt.Errorf("%w: [unit].sources is empty", ErrInvalidManifest)
	}
	if _, err := compileGlobs(m.Unit.Sources); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	return nil
}

// InterfaceDirs lists the interface directories as absolute paths.
func (m *Manifest) InterfaceDirs() []string {
	out := make([]string, 0, len(m.Analysis.Interfaces))
	for _, d := range m.Analysis.Interfaces {
		out = append(out, m.resolve(d))
	}
	return out
}

// OutputDir is where interfaces are emitted, or "" when not configured.
func (m *Manifest) OutputDir() string {
	if m.Output.Interfaces == "" {
		return ""
	}
	return m.resolve(m.Output.Interfaces)
}

// Sources selects the unit documents matched by [unit].sources.
func (m *Manifest) Sources() ([]string, error) {
	return Select(m.Dir, m.Unit.Sources)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(m.Dir, filepath.FromSlash(p))
}

// IsValidModuleName accepts dotted names whose segments start with a
// letter or '_' and continue with letters, digits or '_'.
func IsValidModuleName(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			if i == 0 && r != '_' && !unicode.IsLetter(r) {
				return false
			}
			if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}
