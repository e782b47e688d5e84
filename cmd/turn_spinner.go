package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/support-agent-cli/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type turnDoneMsg struct {
	turn application.TurnResult
	err  error
}

type turnSpinnerModel struct {
	spinner spinner.Model
	label   string
	process tea.Cmd
	turn    application.TurnResult
	err     error
	done    bool
}

func newTurnSpinnerModel(label string, process tea.Cmd) turnSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return turnSpinnerModel{
		spinner: s,
		label:   label,
		process: process,
	}
}

func (m turnSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.process)
}

func (m turnSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case turnDoneMsg:
		m.done = true
		m.turn = msg.turn
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m turnSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// runTurnSpinner shows a spinner on output while process runs. The turn is
// returned even when process fails so the caller can print the apology.
func runTurnSpinner(ctx context.Context, output io.Writer, process func(context.Context) (application.TurnResult, error)) (application.TurnResult, error) {
	processCmd := func() tea.Msg {
		turn, err := process(ctx)
		return turnDoneMsg{turn: turn, err: err}
	}

	p := tea.NewProgram(
		newTurnSpinnerModel("Thinking...", processCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.TurnResult{}, err
	}

	result, ok := finalModel.(turnSpinnerModel)
	if !ok {
		return application.TurnResult{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.turn, result.err
}
