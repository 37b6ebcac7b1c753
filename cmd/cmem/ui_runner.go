package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cmem/internal/conformance"
	"cmem/internal/ui"
)

type runOutcome struct {
	results []conformance.Result
	err     error
}

// runSuitesWithUI drives the runner behind a progress TUI. The runner
// publishes observer events into a channel the Bubble Tea model consumes.
func runSuitesWithUI(ctx context.Context, title string, r *conformance.Runner, suites []conformance.Suite) ([]conformance.Result, error) {
	events := make(chan conformance.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		rCopy := *r
		rCopy.Observer = func(ev conformance.Event) { events <- ev }
		res, err := rCopy.Run(ctx, suites)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	names := make([]string, len(suites))
	for i, s := range suites {
		names[i] = s.Name
	}
	model := ui.NewProgressModel(title, names, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
