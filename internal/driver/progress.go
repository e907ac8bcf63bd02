package driver

import (
	"time"

	"initcheck/internal/diag"
)

// Stage describes a step of checking one document.
type Stage string

const (
	// StageLoad reads the document from disk.
	StageLoad Stage = "load"
	// StageDecode decodes and validates the document.
	StageDecode Stage = "decode"
	// StageCheck runs the analysis.
	StageCheck Stage = "check"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the document is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the stage is running.
	StatusWorking Status = "working"
	// StatusCached indicates the result came from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the document is done.
	StatusDone Status = "done"
	// StatusError indicates the document has error diagnostics or failed to load.
	StatusError Status = "error"
)

// Event reports progress for a document (or for the whole run when File is empty).
// Errors and Warnings are set on the final event of a document.
type Event struct {
	File     string
	Stage    Stage
	Status   Status
	Err      error
	Elapsed  time.Duration
	Errors   int
	Warnings int
}

// Final reports whether no further events follow for the document.
func (e Event) Final() bool {
	return e.Status == StatusDone || e.Status == StatusCached || e.Status == StatusError
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines at once.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to a channel.
type ChannelSink chan<- Event

func (s ChannelSink) OnEvent(ev Event) {
	s <- ev
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(ev Event) {
	f(ev)
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}

// emitResult sends the final event for res with its finding counts.
func emitResult(sink ProgressSink, res *FileResult, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	ev := Event{File: res.Path, Stage: stage, Status: status, Err: err, Elapsed: elapsed}
	for _, d := range res.Diagnostics {
		switch d.Severity {
		case diag.SevError:
			ev.Errors++
		case diag.SevWarning:
			ev.Warnings++
		}
	}
	sink.OnEvent(ev)
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}
