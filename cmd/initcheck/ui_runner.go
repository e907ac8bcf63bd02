package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"initcheck/internal/driver"
	"initcheck/internal/ui"
)

type checkOutcome struct {
	results []driver.FileResult
	err     error
}

// runCheckWithUI runs CheckPaths while a progress view renders on stderr.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink(events)
		res, err := driver.CheckPaths(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
