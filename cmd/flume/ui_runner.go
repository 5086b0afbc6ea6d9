package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"flume/internal/driver"
	"flume/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI: auto means an interactive stdout with pretty output,
// machine formats are never mixed with the progress view.
func shouldUseTUI(mode uiMode, pretty bool) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return pretty && isTerminal(os.Stdout)
	}
}

type compileOutcome struct {
	result *driver.Result
	err    error
}

func runCompileWithUI(ctx context.Context, title string, opts driver.Options) (*driver.Result, error) {
	phases := []string{"include", "parse", "sema"}
	if opts.Linter != nil {
		phases = append(phases, "lint")
	}
	events := make(chan driver.PhaseEvent, 16)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		next := opts.Observer
		opts.Observer = func(ev driver.PhaseEvent) {
			if next != nil {
				next(ev)
			}
			events <- ev
		}
		res, err := driver.Compile(ctx, opts)
		outcomeCh <- compileOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, phases, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI мог выйти раньше; дочитываем события, чтобы driver не заблокировался
		go func() {
			for range events { //nolint:revive // drain
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
