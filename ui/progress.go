package ui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type doneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = LabelStyle
	return spinnerModel{spinner: s, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + DimStyle.Render(m.label) + "\n"
}

// RunWithSpinner runs fn while a spinner is drawn on w. With show false it
// simply calls fn.
func RunWithSpinner[T any](w io.Writer, show bool, label string, fn func() (T, error)) (T, error) {
	if !show {
		return fn()
	}

	p := tea.NewProgram(newSpinnerModel(label), tea.WithOutput(w), tea.WithInput(nil))

	var (
		result T
		err    error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		result, err = fn()
		p.Send(doneMsg{})
	}()

	_, _ = p.Run()
	<-finished
	return result, err
}
