package diag

import (
	"fmt"
	"strings"
)

// FormatGoldenDiagnostics renders diagnostics into a stable, single-line-per-entry
// representation suitable for golden strings. Input order is preserved (callers
// sort the Bag first); the result is empty when nothing is given.
func FormatGoldenDiagnostics(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s", d.Severity.Label(), d.Code.ID(), d.Subject())
		if d.Property != "" {
			fmt.Fprintf(&b, " [%s]", d.Property)
		}
		b.WriteByte(' ')
		b.WriteString(sanitizeMessage(d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(&b, "\nnote %s %s %s", d.Code.ID(), d.Subject(), sanitizeMessage(n.Msg))
			}
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
