package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TUI represents the terminal user interface
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a new TUI instance
func NewTUI(opts Options, progOpts ...tea.ProgramOption) *TUI {
	model := NewModel(opts)
	progOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, progOpts...)

	return &TUI{
		program: tea.NewProgram(model, progOpts...),
		model:   model,
	}
}

// Start runs the TUI until the user exits
func (t *TUI) Start() error {
	_, err := t.program.Run()
	if t.model.cancel != nil {
		t.model.cancel()
	}
	return err
}

// Stop stops the TUI gracefully
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// OutputDir returns the output folder the user ended the session with
func (t *TUI) OutputDir() string {
	return t.model.OutputDir()
}
