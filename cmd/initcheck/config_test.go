package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"initcheck/internal/diag"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, configFileName), "[check]\njobs = 2\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := findConfig(nested)
	if err != nil {
		t.Fatalf("findConfig: %v", err)
	}
	if !ok {
		t.Fatal("expected to find config")
	}
	if path != filepath.Join(root, configFileName) {
		t.Fatalf("path = %q", path)
	}
}

func TestLoadConfig(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, configFileName)
	writeFile(t, path, `
[check]
format = "short"
jobs = 3
cache = true
cache-dir = "cache"
warnings-as-errors = true
with-notes = false
request-default = ["shapes.Point"]
max-diagnostics = 50

[severity]
UnreachableStatement = "off"
DLG3002 = "warning"
`)

	loaded, err := loadConfig(path, "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	c := loaded.Config.Check
	if c.Format != "short" || c.Jobs != 3 || !c.Cache || !c.WarningsAsErrors || c.MaxDiagnostics != 50 {
		t.Fatalf("unexpected check section: %+v", c)
	}
	if c.WithNotes == nil || *c.WithNotes {
		t.Fatalf("with-notes should be explicitly false")
	}
	if c.CacheDir != filepath.Join(root, "cache") {
		t.Fatalf("cache-dir = %q, want it relative to the config file", c.CacheDir)
	}
	if len(c.RequestDefault) != 1 || c.RequestDefault[0] != "shapes.Point" {
		t.Fatalf("request-default = %v", c.RequestDefault)
	}
	if _, keep := loaded.Policy.Apply(diag.UnreachableStatement, diag.SevWarning); keep {
		t.Fatal("UnreachableStatement should be turned off")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown key", content: "[check]\nthreads = 2\n", want: "unknown keys: check.threads"},
		{name: "negative jobs", content: "[check]\njobs = -1\n", want: "jobs must not be negative"},
		{name: "max-diagnostics too large", content: "[check]\nmax-diagnostics = 70000\n", want: "[check].max-diagnostics must be between 0 and 65535"},
		{name: "negative max-diagnostics", content: "[check]\nmax-diagnostics = -1\n", want: "max-diagnostics must be between"},
		{name: "unknown code", content: "[severity]\nNoSuchThing = \"error\"\n", want: "unknown diagnostic"},
		{name: "bad toml", content: "[check\n", want: "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), configFileName)
			writeFile(t, path, tc.content)
			_, err := loadConfig(path, "")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestLoadConfigMissingIsEmpty(t *testing.T) {
	loaded, err := loadConfig("", t.TempDir())
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if loaded.Path != "" || loaded.Policy != nil {
		t.Fatalf("expected empty config, got %+v", loaded)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Fatal("expected error for invalid mode")
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatal("explicit modes must win")
	}
}

func TestRenderResolved(t *testing.T) {
	types := []resolvedTypeJSON{
		{
			Type: "zoo.Cat",
			Initializers: []resolvedInitJSON{
				{ID: "zoo.Cat.init(name:)", Origin: "declared"},
				{ID: "zoo.Cat.init(legs:)", Origin: "inherited", Owner: "zoo.Animal"},
			},
		},
		{Type: "zoo.Point", Initializers: []resolvedInitJSON{{ID: "zoo.Point.init(x:y:)", Origin: "memberwise"}}},
		{Type: "zoo.Loop", Skipped: true},
		{Type: "zoo.Empty"},
	}
	var buf bytes.Buffer
	renderResolved(&buf, types, false)
	want := `zoo.Cat
  zoo.Cat.init(name:)
  zoo.Cat.init(legs:) [inherited from zoo.Animal]
zoo.Point
  zoo.Point.init(x:y:) [memberwise]
zoo.Loop
  (skipped: broken superclass chain)
zoo.Empty
  (no initializers)
`
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestCheckMaxDiagnostics(t *testing.T) {
	for _, n := range []int{0, 1, diag.MaxLimit} {
		if err := checkMaxDiagnostics(n); err != nil {
			t.Fatalf("%d: unexpected error %v", n, err)
		}
	}
	for _, n := range []int{-1, diag.MaxLimit + 1, 1 << 20} {
		if err := checkMaxDiagnostics(n); err == nil {
			t.Fatalf("%d: expected an error", n)
		}
	}
}
