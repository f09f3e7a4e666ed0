package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/tui/components"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case InstallStartMsg:
		m.ensurePackage(msg.Spec)
		if msg.Total > m.total {
			m.total = msg.Total
		}
		m.current = msg.Spec
		m.output = nil
		return m, nil
	case InstallOutputMsg:
		if msg.Spec != m.current {
			return m, nil
		}
		m.output = append(m.output, msg.Line)
		if len(m.output) > outputTail {
			m.output = m.output[len(m.output)-outputTail:]
		}
		return m, nil
	case InstallCompleteMsg:
		spec := msg.Result.Spec
		if spec == "" {
			return m, nil
		}
		m.ensurePackage(spec)
		if m.packages[spec].State != components.PackageInstalling {
			return m, nil
		}
		m.packages[spec] = components.EntryFromResult(msg.Result)
		if msg.Result.Status == model.InstallFailed {
			m.failed++
		} else {
			m.succeeded++
		}
		if spec == m.current {
			m.current = ""
			m.output = nil
		}
		return m, nil
	case FinishedMsg:
		m.finished = true
		m.remaining = append([]string(nil), msg.Remaining...)
		m.err = msg.Err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			m.finished = true
			if m.onCancel != nil {
				m.onCancel()
			}
			return m, tea.Quit
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
