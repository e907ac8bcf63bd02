package diagfmt

import (
	"io"
	"strings"

	"initcheck/internal/diag"
)

// Short writes one line per diagnostic and note, prefixed with the document
// path:
//
//	<path>: <sev> <ID> <subject>[ [prop]] <msg>
//	<path>: note <ID> <subject> <msg>
func Short(w io.Writer, docs []Document, pathMode PathMode, baseDir string, notes bool) error {
	for i := range docs {
		doc := &docs[i]
		if len(doc.Diagnostics) == 0 {
			continue
		}
		path := displayPath(doc, pathMode, baseDir)
		for _, line := range strings.Split(diag.FormatGoldenDiagnostics(doc.Diagnostics, notes), "\n") {
			if _, err := io.WriteString(w, path+": "+line+"\n"); err != nil {
				return err
			}
		}
	}
	return nil
}
