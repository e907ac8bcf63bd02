package diagfmt

import (
	"initcheck/internal/diag"
	"initcheck/internal/source"
)

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps short or relative paths and shortens long absolute ones.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// Document is the unit every formatter consumes: the findings of one input.
type Document struct {
	Path string
	// File is nil for inputs that could not be read.
	File        *source.File
	Diagnostics []diag.Diagnostic
	Cached      bool
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	Width     uint8 // wrap width for messages, 0 - unlimited
	ShowNotes bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // output cap per document, the bag is untouched
	IncludeNotes bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
	PathMode       PathMode
	BaseDir        string
}

func displayPath(doc *Document, mode PathMode, baseDir string) string {
	f := doc.File
	if f == nil {
		f = &source.File{Path: doc.Path}
	}
	switch mode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", baseDir)
	case PathModeBasename:
		return f.FormatPath("basename", "")
	default:
		return f.FormatPath("auto", "")
	}
}

// Counts sums severities across documents.
type Counts struct {
	Errors   int
	Warnings int
	Infos    int
}

func CountAll(docs []Document) Counts {
	var c Counts
	for i := range docs {
		for _, d := range docs[i].Diagnostics {
			switch d.Severity {
			case diag.SevError:
				c.Errors++
			case diag.SevWarning:
				c.Warnings++
			default:
				c.Infos++
			}
		}
	}
	return c
}
