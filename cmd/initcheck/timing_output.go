package main

import (
	"fmt"
	"io"
	"time"

	"initcheck/internal/driver"
)

// printTimings writes per-document phase timings followed by the total
// wall time spent in documents.
func printTimings(out io.Writer, results []driver.FileResult) {
	if out == nil {
		return
	}
	var total time.Duration
	for i := range results {
		r := &results[i]
		total += r.Elapsed
		switch {
		case r.Cached:
			fmt.Fprintf(out, "%s: cached %.1f ms\n", r.Path, toMillis(r.Elapsed))
		case r.Result != nil && r.Result.Timer != nil:
			fmt.Fprintf(out, "%s: %.1f ms\n%s", r.Path, toMillis(r.Elapsed), r.Result.Timer.Summary())
		default:
			fmt.Fprintf(out, "%s: %.1f ms\n", r.Path, toMillis(r.Elapsed))
		}
	}
	fmt.Fprintf(out, "checked %d document(s) in %.1f ms\n", len(results), toMillis(total))
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
