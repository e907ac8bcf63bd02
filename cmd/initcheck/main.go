package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"initcheck/internal/version"
)

// errDiagnostics signals that error diagnostics were printed; main exits
// with status 1 without printing anything else.
var errDiagnostics = errors.New("error diagnostics reported")

var rootCmd = &cobra.Command{
	Use:   "initcheck",
	Short: "Definite initialization and delegation checker",
	Long: `initcheck reads type graph documents (JSON, YAML, TOML or msgpack) and checks
that every initializer assigns all stored properties before use and that
initializer delegation is well formed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		stopProfiles, err := setupProfiling(cmd)
		if err != nil {
			return err
		}
		profileCleanup = stopProfiles
		cleanup, err := setupTracing(cmd)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runTraceCleanup()
		runProfileCleanup()
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per document, up to 65535 (0=default)")
	rootCmd.PersistentFlags().String("config", "", "path to initcheck.toml (default: search upward from the working directory)")

	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")

	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for --trace-mode ring|both")
}

func main() {
	rootCmd.Version = version.Version
	err := rootCmd.Execute()
	runTraceCleanup()
	runProfileCleanup()
	switch {
	case err == nil:
	case errors.Is(err, errDiagnostics):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "initcheck: %v\n", err)
		os.Exit(2)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag for out.
func useColor(cmd *cobra.Command, out *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(out), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}
