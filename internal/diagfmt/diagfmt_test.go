package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"initcheck/internal/diag"
	"initcheck/internal/source"
)

func sampleDocs() []Document {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("/home/user/project/types/movie.yaml", []byte("types: []")))
	movie := diag.Location{Type: "Movie", Initializer: "Movie.init(title:)", Order: diag.Order{Type: 0, Init: 1, Stmt: 1}}
	return []Document{
		{
			Path: file.Path,
			File: file,
			Diagnostics: []diag.Diagnostic{
				diag.New(diag.SevError, diag.SelfInitNotFirstStatement, movie, "self.init must be the first statement of a delegating initializer").
					WithNote("self.title = … at statement 0 runs before it"),
				diag.New(diag.SevWarning, diag.UnreachableStatement, movie.AtStmt(3).WithProperty("budget"), "self.budget = … is never executed after an unconditional exit"),
			},
		},
		{Path: "clean.json"},
		{
			Path: "missing.toml",
			Diagnostics: []diag.Diagnostic{
				diag.New(diag.SevError, diag.DocumentInvalid, diag.Location{Type: "missing.toml", Order: diag.Order{Type: -1, Init: -1, Stmt: -1}}, "open missing.toml: no such file or directory"),
			},
		},
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleDocs(), PrettyOpts{PathMode: PathModeRelative, BaseDir: "/home/user/project", ShowNotes: true})
	out := buf.String()
	for _, want := range []string{
		"types/movie.yaml: error[DEF4004] Movie.init(title:)\n",
		"  self.init must be the first statement of a delegating initializer\n",
		"  = note: self.title = … at statement 0 runs before it\n",
		"types/movie.yaml: warning[DEF4011] Movie.init(title:) [budget]\n",
		"missing.toml: error[GRF1005] missing.toml\n",
		"2 error(s), 1 warning(s) in 3 document(s)\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color disabled but escapes present:\n%s", out)
	}
}

func TestPrettyColor(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleDocs(), PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected escape sequences")
	}
}

func TestPathModes(t *testing.T) {
	docs := sampleDocs()
	cases := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/types/movie.yaml"},
		{PathModeRelative, "types/movie.yaml"},
		{PathModeBasename, "movie.yaml"},
	}
	for _, tc := range cases {
		if got := displayPath(&docs[0], tc.mode, "/home/user/project"); got != tc.want {
			t.Errorf("mode %d: got %q, want %q", tc.mode, got, tc.want)
		}
	}
	if got := displayPath(&docs[2], PathModeAuto, ""); got != "missing.toml" {
		t.Errorf("file-less document path = %q", got)
	}
}

func TestWrap(t *testing.T) {
	got := wrap("property \"title\" is not initialized on every path", 20)
	want := []string{"property \"title\" is", "not initialized on", "every path"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("wrap = %q", got)
	}
	// wide runes count two cells
	if got := wrap("名前 名前 名前", 9); len(got) != 2 {
		t.Fatalf("wide wrap = %q", got)
	}
	if got := wrap("a  b", 0); len(got) != 1 || got[0] != "a b" {
		t.Fatalf("unlimited wrap = %q", got)
	}
}

func TestShort(t *testing.T) {
	var buf bytes.Buffer
	if err := Short(&buf, sampleDocs(), PathModeBasename, "", true); err != nil {
		t.Fatal(err)
	}
	want := "movie.yaml: error DEF4004 Movie.init(title:) self.init must be the first statement of a delegating initializer\n" +
		"movie.yaml: note DEF4004 Movie.init(title:) self.title = … at statement 0 runs before it\n" +
		"movie.yaml: warning DEF4011 Movie.init(title:) [budget] self.budget = … is never executed after an unconditional exit\n" +
		"missing.toml: error GRF1005 missing.toml open missing.toml: no such file or directory\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleDocs(), JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 3 || out.Errors != 2 || out.Warnings != 1 || len(out.Documents) != 3 {
		t.Fatalf("unexpected totals: %+v", out)
	}
	first := out.Documents[0]
	if first.Path != "movie.yaml" || len(first.Hash) != 64 {
		t.Fatalf("unexpected document header: %+v", first)
	}
	d := first.Diagnostics[0]
	if d.Code != "DEF4004" || d.Name != "SelfInitNotFirstStatement" || d.Severity != "error" {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if d.Location.Statement == nil || *d.Location.Statement != 1 || len(d.Notes) != 1 {
		t.Fatalf("unexpected location or notes: %+v", d)
	}
	if out.Documents[1].Diagnostics == nil || len(out.Documents[1].Diagnostics) != 0 {
		t.Fatalf("clean document must have an empty list")
	}
	if out.Documents[2].Diagnostics[0].Location.Statement != nil {
		t.Fatalf("document-level finding has no statement")
	}
}

func TestJSONMax(t *testing.T) {
	out := BuildDiagnosticsOutput(sampleDocs(), JSONOpts{Max: 1})
	if len(out.Documents[0].Diagnostics) != 1 || out.Documents[0].Diagnostics[0].Notes != nil {
		t.Fatalf("expected one diagnostic without notes: %+v", out.Documents[0])
	}
}

func TestSarif(t *testing.T) {
	var buf bytes.Buffer
	err := Sarif(&buf, sampleDocs(), SarifRunMeta{ToolName: "initcheck", ToolVersion: "0.1.0", InvocationArgs: []string{"check", "."}, PathMode: PathModeBasename})
	if err != nil {
		t.Fatal(err)
	}
	var log sarifLog
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF: %v", err)
	}
	run := log.Runs[0]
	if log.Version != "2.1.0" || run.Tool.Driver.Name != "initcheck" {
		t.Fatalf("unexpected header: %+v", log)
	}
	if len(run.Results) != 3 || run.Results[1].Level != "warning" {
		t.Fatalf("unexpected results: %+v", run.Results)
	}
	ids := make([]string, len(run.Tool.Driver.Rules))
	for i, r := range run.Tool.Driver.Rules {
		ids[i] = r.ID
	}
	if strings.Join(ids, ",") != "GRF1005,DEF4004,DEF4011" {
		t.Fatalf("rules = %v", ids)
	}
	if got := run.Results[0].Locations[0].LogicalLocations; len(got) != 2 || got[1].FullyQualifiedName != "Movie.init(title:)" {
		t.Fatalf("logical locations = %+v", got)
	}
}
