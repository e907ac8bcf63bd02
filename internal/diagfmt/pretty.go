package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"initcheck/internal/diag"
)

// Pretty writes the findings in human-readable form. Every diagnostic is
//
//	<path>: <severity>[<ID>] <subject> [property]
//	  <message>
//	  = note: <note>
//
// followed by a summary line. Items are expected to be sorted already.
func Pretty(w io.Writer, docs []Document, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i := range docs {
		doc := &docs[i]
		path := displayPath(doc, opts.PathMode, opts.BaseDir)
		for _, d := range doc.Diagnostics {
			fmt.Fprintf(w, "%s: %s %s", p.path.Sprint(path), p.severity(d.Severity).Sprintf("%s[%s]", d.Severity.Label(), d.Code.ID()), p.subject.Sprint(d.Subject()))
			if d.Property != "" {
				fmt.Fprintf(w, " [%s]", d.Property)
			}
			fmt.Fprintln(w)
			for _, line := range wrap(d.Message, int(opts.Width)-2) {
				fmt.Fprintf(w, "  %s\n", line)
			}
			if opts.ShowNotes {
				for _, n := range d.Notes {
					fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("= note:"), n.Msg)
				}
			}
		}
	}
	c := CountAll(docs)
	summary := fmt.Sprintf("%d error(s), %d warning(s) in %d document(s)", c.Errors, c.Warnings, len(docs))
	switch {
	case c.Errors > 0:
		fmt.Fprintln(w, p.errs.Sprint(summary))
	case c.Warnings > 0:
		fmt.Fprintln(w, p.warns.Sprint(summary))
	default:
		fmt.Fprintln(w, p.ok.Sprint(summary))
	}
}

type palette struct {
	path, subject, note *color.Color
	errs, warns, infos  *color.Color
	ok                  *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		path:    color.New(color.Bold),
		subject: color.New(color.FgCyan),
		note:    color.New(color.FgBlue, color.Bold),
		errs:    color.New(color.FgRed, color.Bold),
		warns:   color.New(color.FgYellow, color.Bold),
		infos:   color.New(color.FgWhite),
		ok:      color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.path, p.subject, p.note, p.errs, p.warns, p.infos, p.ok} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.errs
	case diag.SevWarning:
		return p.warns
	}
	return p.infos
}

// wrap breaks msg into lines no wider than width display cells. Words wider
// than width stay on their own line.
func wrap(msg string, width int) []string {
	msg = strings.Join(strings.Fields(msg), " ")
	if width <= 0 || runewidth.StringWidth(msg) <= width {
		return []string{msg}
	}
	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, word := range strings.Fields(msg) {
		ww := runewidth.StringWidth(word)
		if curWidth > 0 && curWidth+1+ww > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteByte(' ')
			curWidth++
		}
		cur.WriteString(word)
		curWidth += ww
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}
