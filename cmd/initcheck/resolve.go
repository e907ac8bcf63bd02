package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"initcheck/internal/check"
	"initcheck/internal/schema"
	"initcheck/internal/typegraph"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] <file> [type...]",
	Short: "Print the resolved initializer set of each type",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type resolvedInitJSON struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Failure string `json:"failure"`
	Origin  string `json:"origin"`
	Owner   string `json:"owner,omitempty"`
}

type resolvedTypeJSON struct {
	Type         string             `json:"type"`
	Skipped      bool               `json:"skipped,omitempty"`
	Initializers []resolvedInitJSON `json:"initializers"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}

	doc, err := schema.DecodeFile(args[0])
	if err != nil {
		return err
	}
	g, err := doc.Graph()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	res, err := check.Run(cmd.Context(), g, check.Options{})
	if err != nil {
		return err
	}

	types := g.Types()
	if wanted := args[1:]; len(wanted) > 0 {
		types = types[:0:0]
		for _, id := range wanted {
			t, ok := g.Lookup(id)
			if !ok {
				return fmt.Errorf("%s: unknown type %q", args[0], id)
			}
			types = append(types, t)
		}
	}

	out := make([]resolvedTypeJSON, 0, len(types))
	for _, t := range types {
		entry := resolvedTypeJSON{
			Type:         t.ID(),
			Skipped:      slices.Contains(res.Skipped, t.ID()),
			Initializers: []resolvedInitJSON{},
		}
		for _, in := range res.Resolved[t.ID()] {
			entry.Initializers = append(entry.Initializers, resolvedInitJSON{
				ID:      in.ID(t.ID()),
				Role:    in.Role.String(),
				Failure: in.Failure.String(),
				Origin:  in.Origin.String(),
				Owner:   in.Owner,
			})
		}
		out = append(out, entry)
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	colorOut := false
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		if colorOut, err = useColor(cmd, f); err != nil {
			return err
		}
	}
	renderResolved(cmd.OutOrStdout(), out, colorOut)
	return nil
}

func renderResolved(w io.Writer, types []resolvedTypeJSON, colored bool) {
	typeStyle := color.New(color.Bold)
	tagStyle := color.New(color.FgCyan)
	skipStyle := color.New(color.FgYellow)
	for _, c := range []*color.Color{typeStyle, tagStyle, skipStyle} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	for _, t := range types {
		fmt.Fprintln(w, typeStyle.Sprint(t.Type))
		if t.Skipped {
			fmt.Fprintf(w, "  %s\n", skipStyle.Sprint("(skipped: broken superclass chain)"))
			continue
		}
		if len(t.Initializers) == 0 {
			fmt.Fprintln(w, "  (no initializers)")
			continue
		}
		for _, in := range t.Initializers {
			fmt.Fprintf(w, "  %s", in.ID)
			if tag := originTag(in); tag != "" {
				fmt.Fprintf(w, " %s", tagStyle.Sprint(tag))
			}
			fmt.Fprintln(w)
		}
	}
}

func originTag(in resolvedInitJSON) string {
	switch in.Origin {
	case typegraph.OriginInherited.String():
		return "[inherited from " + in.Owner + "]"
	case typegraph.OriginMemberwise.String(), typegraph.OriginDefault.String():
		return "[" + in.Origin + "]"
	}
	return ""
}
