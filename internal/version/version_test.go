package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origGitCommit }()

	// как при сборке с -ldflags
	Version = "1.2.3"
	GitCommit = "abc123def456"
	if Version != "1.2.3" || GitCommit != "abc123def456" {
		t.Errorf("override failed: %q %q", Version, GitCommit)
	}
}

func TestColored(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	if got := Colored("0.1.0-dev"); got != "0.1.0-dev" {
		t.Errorf("Colored = %q", got)
	}
	if got := Colored("nightly"); got != "nightly" {
		t.Errorf("Colored = %q", got)
	}
}
