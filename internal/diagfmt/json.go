package diagfmt

import (
	"encoding/json"
	"io"

	"initcheck/internal/diag"
)

// LocationJSON is the logical position of a finding.
type LocationJSON struct {
	Type        string `json:"type,omitempty"`
	Initializer string `json:"initializer,omitempty"`
	Property    string `json:"property,omitempty"`
	Statement   *int   `json:"statement,omitempty"`
}

// DiagnosticJSON is one diagnostic in JSON output.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []string     `json:"notes,omitempty"`
}

// DocumentJSON groups the diagnostics of one input.
type DocumentJSON struct {
	Path        string           `json:"path"`
	Hash        string           `json:"hash,omitempty"`
	Cached      bool             `json:"cached,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

// DiagnosticsOutput is the root of JSON output.
type DiagnosticsOutput struct {
	Documents []DocumentJSON `json:"documents"`
	Errors    int            `json:"errors"`
	Warnings  int            `json:"warnings"`
	Count     int            `json:"count"`
}

func makeDiagnostic(d diag.Diagnostic, includeNotes bool) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Name:     d.Code.Name(),
		Message:  d.Message,
		Location: LocationJSON{Type: d.Type, Initializer: d.Initializer, Property: d.Property},
	}
	if d.Order.Stmt >= 0 {
		stmt := d.Order.Stmt
		out.Location.Statement = &stmt
	}
	if includeNotes && len(d.Notes) > 0 {
		out.Notes = make([]string, len(d.Notes))
		for i, n := range d.Notes {
			out.Notes[i] = n.Msg
		}
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON structure without serializing it.
func BuildDiagnosticsOutput(docs []Document, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Documents: make([]DocumentJSON, 0, len(docs))}
	for i := range docs {
		doc := &docs[i]
		items := doc.Diagnostics
		if opts.Max > 0 && opts.Max < len(items) {
			items = items[:opts.Max]
		}
		dj := DocumentJSON{
			Path:        displayPath(doc, opts.PathMode, opts.BaseDir),
			Cached:      doc.Cached,
			Diagnostics: make([]DiagnosticJSON, 0, len(items)),
		}
		if doc.File != nil {
			dj.Hash = doc.File.HashHex()
		}
		for _, d := range items {
			dj.Diagnostics = append(dj.Diagnostics, makeDiagnostic(d, opts.IncludeNotes))
			switch d.Severity {
			case diag.SevError:
				out.Errors++
			case diag.SevWarning:
				out.Warnings++
			}
		}
		out.Count += len(dj.Diagnostics)
		out.Documents = append(out.Documents, dj)
	}
	return out
}

// JSON writes the findings as an indented JSON document.
func JSON(w io.Writer, docs []Document, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(docs, opts))
}
