package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if strings.Contains(Version, "\x1b") {
		t.Errorf("Version must be plain text, got %q", Version)
	}
}

func TestColored(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()

	color.NoColor = true
	cases := map[string]string{
		"1.2.3":            "1.2.3",
		"0.1.0-dev":        "0.1.0-dev",
		"1.0.0-beta.1":     "1.0.0-beta.1",
		"not-a-version":    "not-a-version",
		"1.2.3-rc.1+b.123": "1.2.3-rc.1+b.123",
	}
	for v, want := range cases {
		Version = v
		if got := Colored(); got != want {
			t.Errorf("Colored(%q) = %q, want %q", v, got, want)
		}
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); !strings.Contains(got, "\x1b[") {
		t.Errorf("expected escape sequences, got %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version, GitCommit = "1.2.3", ""
	if got := Fingerprint(); got != "1.2.3" {
		t.Errorf("Fingerprint = %q", got)
	}
	GitCommit = "abc123"
	if got := Fingerprint(); got != "1.2.3+abc123" {
		t.Errorf("Fingerprint = %q", got)
	}
}
