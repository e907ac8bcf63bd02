package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"initcheck/internal/check"
	"initcheck/internal/diag"
	"initcheck/internal/schema"
	"initcheck/internal/source"
	"initcheck/internal/trace"
	"initcheck/internal/version"
)

// Options configures CheckPaths.
type Options struct {
	// Jobs bounds the number of documents checked at once. Zero uses GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Policy         *diag.Policy
	RequestDefault []string
	// NoWarnings drops warnings after the check. WarningsAsErrors promotes
	// them first, so with both set nothing is dropped.
	NoWarnings       bool
	WarningsAsErrors bool
	// Cache, when set, is consulted before and filled after each check.
	Cache    *DiskCache
	Progress ProgressSink
	// Tool identifies the checker build in cache keys. Empty uses
	// version.Fingerprint().
	Tool string
}

// FileResult is the outcome for one document.
type FileResult struct {
	Path string
	// File is nil when the document could not be read.
	File        *source.File
	Diagnostics []diag.Diagnostic
	// Skipped lists types left out because of a broken superclass chain.
	Skipped []string
	// Result is nil when the diagnostics came from the cache or the
	// document did not decode.
	Result  *check.Result
	Cached  bool
	Elapsed time.Duration
}

// HasErrors reports whether any diagnostic is an error.
func (r *FileResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}

// Expand turns paths into the list of documents to check. Directories are
// walked for supported extensions in lexical order; explicit files are kept
// as given. Duplicates are dropped.
func Expand(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// unreadable files are reported as diagnostics of the file
			add(p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && schema.Supported(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		slices.Sort(found)
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// CheckPaths checks every document under paths. Results are in input order.
// The returned error is non-nil only when ctx is canceled or a directory
// cannot be walked.
func CheckPaths(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	files, err := Expand(paths)
	if err != nil {
		return nil, err
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "check-paths")
	defer span.WithExtra("documents", fmt.Sprint(len(files))).End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	fileSet := source.NewFileSet()
	results := make([]FileResult, len(files))
	emitQueued(opts.Progress, files)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			res, err := checkFile(gctx, fileSet, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CheckBytes checks an in-memory document, e.g. one read from stdin.
func CheckBytes(ctx context.Context, name string, data []byte, format schema.Format, opts Options) (FileResult, error) {
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual(name, data))
	return checkLoaded(ctx, name, file, format, opts)
}

func checkFile(ctx context.Context, fileSet *source.FileSet, path string, opts Options) (FileResult, error) {
	if err := ctx.Err(); err != nil {
		return FileResult{}, err
	}
	start := time.Now()
	emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusWorking})
	id, err := fileSet.Load(path)
	if err != nil {
		res := invalid(path, nil, err, opts)
		res.Diagnostics = applyFlags(res.Diagnostics, opts)
		res.Elapsed = time.Since(start)
		emitResult(opts.Progress, &res, StageLoad, StatusError, err, res.Elapsed)
		return res, nil
	}
	format, ok := schema.FormatForPath(path)
	if !ok {
		err := fmt.Errorf("unsupported document extension %q", filepath.Ext(path))
		res := invalid(path, fileSet.Get(id), err, opts)
		res.Diagnostics = applyFlags(res.Diagnostics, opts)
		res.Elapsed = time.Since(start)
		emitResult(opts.Progress, &res, StageDecode, StatusError, err, res.Elapsed)
		return res, nil
	}
	res, err := checkLoaded(ctx, path, fileSet.Get(id), format, opts)
	res.Elapsed = time.Since(start)
	return res, err
}

func checkLoaded(ctx context.Context, path string, file *source.File, format schema.Format, opts Options) (FileResult, error) {
	start := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopePass, "document")
	span.WithExtra("path", path)
	defer span.End("")

	tool := opts.Tool
	if tool == "" {
		tool = version.Fingerprint()
	}
	key := NewCacheKey(file.Hash, tool, opts.Policy.Fingerprint(), opts.RequestDefault, opts.MaxDiagnostics)
	var payload CachePayload
	if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
		res := FileResult{Path: path, File: file, Diagnostics: payload.Diagnostics, Skipped: payload.Skipped, Cached: true}
		res.Diagnostics = applyFlags(res.Diagnostics, opts)
		span.WithExtra("cache", "hit")
		emitResult(opts.Progress, &res, StageCheck, StatusCached, nil, time.Since(start))
		return res, nil
	}

	emit(opts.Progress, Event{File: path, Stage: StageDecode, Status: StatusWorking})
	doc, err := schema.Decode(file.Content, format)
	if err == nil {
		var res FileResult
		res, err = checkDocument(ctx, path, file, doc, opts)
		if err == nil {
			store(opts.Cache, key, tool, &res)
			res.Diagnostics = applyFlags(res.Diagnostics, opts)
			emitResult(opts.Progress, &res, StageCheck, statusOf(&res), nil, time.Since(start))
			return res, nil
		}
		if ctx.Err() != nil {
			return FileResult{}, err
		}
	}
	// invalid results name the path, which the content key does not cover
	res := invalid(path, file, err, opts)
	res.Diagnostics = applyFlags(res.Diagnostics, opts)
	emitResult(opts.Progress, &res, StageDecode, StatusError, err, time.Since(start))
	return res, nil
}

func checkDocument(ctx context.Context, path string, file *source.File, doc *schema.Document, opts Options) (FileResult, error) {
	g, err := doc.Graph()
	if err != nil {
		return FileResult{}, err
	}
	emit(opts.Progress, Event{File: path, Stage: StageCheck, Status: StatusWorking})
	res, err := check.Run(ctx, g, check.Options{
		MaxDiagnostics: opts.MaxDiagnostics,
		Policy:         opts.Policy,
		RequestDefault: opts.RequestDefault,
	})
	if err != nil {
		return FileResult{}, err
	}
	return FileResult{
		Path:        path,
		File:        file,
		Diagnostics: slices.Clone(res.Diagnostics()),
		Skipped:     res.Skipped,
		Result:      res,
	}, nil
}

// invalid reports a document that could not be read or decoded.
func invalid(path string, file *source.File, err error, opts Options) FileResult {
	bag := diag.NewBag(1)
	rep := diag.PolicyReporter{Policy: opts.Policy, Next: diag.BagReporter{Bag: bag}}
	loc := diag.Location{Type: path, Order: diag.Order{Type: -1, Init: -1, Stmt: -1}}
	diag.ReportError(rep, diag.DocumentInvalid, loc, err.Error()).Emit()
	return FileResult{Path: path, File: file, Diagnostics: bag.Items()}
}

func store(cache *DiskCache, key CacheKey, tool string, res *FileResult) {
	if cache == nil || res.File == nil {
		return
	}
	// a failed write only costs a later recheck
	_ = cache.Put(key, &CachePayload{
		Tool:        tool,
		Path:        res.Path,
		Diagnostics: res.Diagnostics,
		Skipped:     res.Skipped,
		Stored:      time.Now().UTC(),
	})
}

func applyFlags(ds []diag.Diagnostic, opts Options) []diag.Diagnostic {
	if !opts.NoWarnings && !opts.WarningsAsErrors {
		return ds
	}
	bag := diag.NewBag(len(ds))
	for _, d := range ds {
		bag.Add(d)
	}
	if opts.WarningsAsErrors {
		bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	} else {
		bag.Filter(func(d diag.Diagnostic) bool { return d.Severity != diag.SevWarning })
	}
	return bag.Items()
}

func statusOf(res *FileResult) Status {
	if res.HasErrors() {
		return StatusError
	}
	return StatusDone
}
