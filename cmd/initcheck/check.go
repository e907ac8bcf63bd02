package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"initcheck/internal/diagfmt"
	"initcheck/internal/driver"
	"initcheck/internal/schema"
	"initcheck/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <path>...",
	Short: "Check documents for initialization and delegation errors",
	Long: `Check reads each document (or every supported document under a directory)
and reports definite initialization and delegation diagnostics. Use "-" to
read a single document from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel documents (0=auto)")
	checkCmd.Flags().Bool("no-warnings", false, "drop warnings from the report")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Bool("cache", false, "reuse results for unchanged documents")
	checkCmd.Flags().Bool("drop-cache", false, "clear the result cache before checking")
	checkCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes")
	checkCmd.Flags().Bool("fullpath", false, "print absolute paths")
	checkCmd.Flags().StringSlice("request-default", nil, "type ids whose default initializer is requested")
	checkCmd.Flags().Bool("watch", false, "re-check whenever a document changes (until interrupted)")
	checkCmd.Flags().String("stdin-format", "yaml", "document format when reading from stdin (json|yaml|toml|msgpack)")
}

type checkSettings struct {
	format    string
	withNotes bool
	pathMode  diagfmt.PathMode
	ui        uiMode
	dropCache bool
	opts      driver.Options
}

// readCheckSettings merges initcheck.toml with the command line. Flags win
// when they were set explicitly.
func readCheckSettings(cmd *cobra.Command) (*checkSettings, error) {
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	configPath, err := root.GetString("config")
	if err != nil {
		return nil, err
	}
	loaded, err := loadConfig(configPath, ".")
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config.Check

	s := &checkSettings{
		format:    "pretty",
		withNotes: true,
		opts: driver.Options{
			Jobs:             cfg.Jobs,
			MaxDiagnostics:   cfg.MaxDiagnostics,
			Policy:           loaded.Policy,
			RequestDefault:   cfg.RequestDefault,
			NoWarnings:       cfg.NoWarnings,
			WarningsAsErrors: cfg.WarningsAsErrors,
		},
	}
	if cfg.Format != "" {
		s.format = cfg.Format
	}
	if cfg.WithNotes != nil {
		s.withNotes = *cfg.WithNotes
	}
	useCache := cfg.Cache

	if flags.Changed("format") {
		if s.format, err = flags.GetString("format"); err != nil {
			return nil, err
		}
	}
	s.format = strings.ToLower(strings.TrimSpace(s.format))
	switch s.format {
	case "pretty", "short", "json", "sarif":
	default:
		return nil, fmt.Errorf("unsupported format %q (must be pretty, short, json or sarif)", s.format)
	}
	if flags.Changed("jobs") {
		if s.opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, err
		}
	}
	if root.Changed("max-diagnostics") {
		if s.opts.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return nil, err
		}
		if err := checkMaxDiagnostics(s.opts.MaxDiagnostics); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-warnings") {
		if s.opts.NoWarnings, err = flags.GetBool("no-warnings"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("warnings-as-errors") {
		if s.opts.WarningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("with-notes") {
		if s.withNotes, err = flags.GetBool("with-notes"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("request-default") {
		if s.opts.RequestDefault, err = flags.GetStringSlice("request-default"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cache") {
		if useCache, err = flags.GetBool("cache"); err != nil {
			return nil, err
		}
	}
	if s.dropCache, err = flags.GetBool("drop-cache"); err != nil {
		return nil, err
	}
	if useCache || s.dropCache {
		if cfg.CacheDir != "" {
			s.opts.Cache, err = driver.NewDiskCache(cfg.CacheDir)
		} else {
			s.opts.Cache, err = driver.OpenDiskCache("initcheck")
		}
		if err != nil {
			return nil, err
		}
	}

	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return nil, err
	}
	if fullPath {
		s.pathMode = diagfmt.PathModeAbsolute
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, err
	}
	if s.ui, err = readUIMode(uiValue); err != nil {
		return nil, err
	}
	s.opts.Tool = version.Fingerprint()
	return s, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	s, err := readCheckSettings(cmd)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if s.dropCache {
		if err := s.opts.Cache.DropAll(); err != nil {
			return fmt.Errorf("failed to drop cache: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "cache cleared: %s\n", s.opts.Cache.Dir())
		}
	}

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return err
	}
	stdin := len(args) == 1 && args[0] == "-"
	if watch && stdin {
		return errors.New("--watch cannot read from stdin")
	}

	hasErrors, err := checkOnce(cmd, s, args, stdin, quiet, showTimings, !watch)
	if err != nil {
		return err
	}
	if watch {
		return watchAndRecheck(cmd, s, args, quiet, showTimings)
	}
	if hasErrors {
		return errDiagnostics
	}
	return nil
}

// checkOnce runs one check over args and prints the report. allowUI permits
// the progress view.
func checkOnce(cmd *cobra.Command, s *checkSettings, args []string, stdin, quiet, showTimings, allowUI bool) (bool, error) {
	ctx := cmd.Context()
	var results []driver.FileResult
	if stdin {
		res, err := checkStdin(cmd, s)
		if err != nil {
			return false, err
		}
		results = []driver.FileResult{res}
	} else {
		files, err := driver.Expand(args)
		if err != nil {
			return false, err
		}
		if len(files) == 0 {
			return false, errors.New("no documents found")
		}
		if allowUI && !quiet && s.format == "pretty" && len(files) > 1 && shouldUseTUI(s.ui) {
			results, err = runCheckWithUI(ctx, "initcheck", files, s.opts)
		} else {
			results, err = driver.CheckPaths(ctx, files, s.opts)
		}
		if err != nil {
			return false, err
		}
	}

	docs := make([]diagfmt.Document, len(results))
	hasErrors := false
	for i := range results {
		r := &results[i]
		docs[i] = diagfmt.Document{Path: r.Path, File: r.File, Diagnostics: r.Diagnostics, Cached: r.Cached}
		if r.HasErrors() {
			hasErrors = true
		}
	}

	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}
	if err := writeReport(cmd, cmd.OutOrStdout(), docs, s, baseDir, quiet); err != nil {
		return false, err
	}
	if showTimings {
		printTimings(cmd.ErrOrStderr(), results)
	}
	return hasErrors, nil
}

// watchAndRecheck re-runs the check after every settled batch of changes
// until the process is interrupted.
func watchAndRecheck(cmd *cobra.Command, s *checkSettings, args []string, quiet, showTimings bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	cmd.SetContext(ctx)
	if !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes (ctrl-c to stop)")
	}
	return driver.Watch(ctx, args, driver.DefaultDebounce, func(changed []string) error {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "\n%d document(s) changed, re-checking\n", len(changed))
		}
		_, err := checkOnce(cmd, s, args, false, quiet, showTimings, false)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func checkStdin(cmd *cobra.Command, s *checkSettings) (driver.FileResult, error) {
	formatName, err := cmd.Flags().GetString("stdin-format")
	if err != nil {
		return driver.FileResult{}, err
	}
	format, err := schema.ParseFormat(formatName)
	if err != nil {
		return driver.FileResult{}, err
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return driver.FileResult{}, fmt.Errorf("failed to read stdin: %w", err)
	}
	return driver.CheckBytes(cmd.Context(), "<stdin>", data, format, s.opts)
}

func writeReport(cmd *cobra.Command, out io.Writer, docs []diagfmt.Document, s *checkSettings, baseDir string, quiet bool) error {
	switch s.format {
	case "json":
		return diagfmt.JSON(out, docs, diagfmt.JSONOpts{
			PathMode:     s.pathMode,
			BaseDir:      baseDir,
			IncludeNotes: s.withNotes,
		})
	case "sarif":
		return diagfmt.Sarif(out, docs, diagfmt.SarifRunMeta{
			ToolName:       "initcheck",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
			PathMode:       s.pathMode,
			BaseDir:        baseDir,
		})
	case "short":
		return diagfmt.Short(out, docs, s.pathMode, baseDir, s.withNotes)
	}

	colorOut := false
	if f, ok := out.(*os.File); ok {
		var err error
		if colorOut, err = useColor(cmd, f); err != nil {
			return err
		}
	}
	width := uint8(0)
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		width = 100
	}
	counts := diagfmt.CountAll(docs)
	if quiet && counts.Errors == 0 && counts.Warnings == 0 {
		return nil
	}
	diagfmt.Pretty(out, docs, diagfmt.PrettyOpts{
		Color:     colorOut,
		PathMode:  s.pathMode,
		BaseDir:   filepath.Clean(baseDir),
		Width:     width,
		ShowNotes: s.withNotes,
	})
	return nil
}
