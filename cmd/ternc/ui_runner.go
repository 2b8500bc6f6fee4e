package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tern/internal/pipeline"
	"tern/internal/ui"
)

type checkOutcome struct {
	result *pipeline.Result
	err    error
}

func runCheckWithUI(ctx context.Context, title string, paths []string, opts pipeline.Options) (*pipeline.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = pipeline.ChannelSink{Ch: events}
		res, err := pipeline.Run(ctx, paths, opts)
		outcomeCh <- checkOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	for range events {
		// модель могла выйти раньше: не даём Run заблокироваться
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
