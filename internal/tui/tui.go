// Package tui runs the interactive inbox.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ProgramRunner runs a bubbletea program.
type ProgramRunner interface {
	Run(ctx context.Context, model tea.Model) error
}

// DefaultProgramRunner runs programs on the alternate screen.
type DefaultProgramRunner struct{}

// Run starts a bubbletea program and blocks until it exits. Cancelling ctx
// stops the program without an error.
func (DefaultProgramRunner) Run(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Run starts model with the DefaultProgramRunner.
func Run(ctx context.Context, model tea.Model) error {
	return DefaultProgramRunner{}.Run(ctx, model)
}
