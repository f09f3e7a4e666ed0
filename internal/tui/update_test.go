package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/tui/components"
)

func apply(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestUpdateHandlesInstallStart(t *testing.T) {
	m := apply(t, NewModel("", nil), InstallStartMsg{Spec: "wheel", Position: 0, Total: 2})
	require.Equal(t, components.PackageInstalling, m.packages["wheel"].State)
	require.Equal(t, 2, m.TotalPackages())
	require.Equal(t, "wheel", m.current)
}

func TestUpdateKeepsOutputTail(t *testing.T) {
	m := apply(t, NewModel("", nil), InstallStartMsg{Spec: "wheel", Total: 1})
	for i := 0; i < outputTail+3; i++ {
		m = apply(t, m, InstallOutputMsg{Spec: "wheel", Line: string(rune('a' + i))})
	}
	require.Len(t, m.output, outputTail)
	require.Equal(t, "h", m.output[outputTail-1])

	m = apply(t, m, InstallOutputMsg{Spec: "other", Line: "stray"})
	require.NotContains(t, m.output, "stray")
}

func TestUpdateHandlesInstallCompletion(t *testing.T) {
	m := apply(t, NewModel("", nil),
		InstallStartMsg{Spec: "broken-pkg", Total: 2},
		InstallCompleteMsg{Result: model.InstallResult{Spec: "broken-pkg", Status: model.InstallFailed, ExitCode: 1}},
		InstallStartMsg{Spec: "wheel", Position: 1, Total: 2},
		InstallCompleteMsg{Result: model.InstallResult{Spec: "wheel", Status: model.InstallSucceeded}},
		InstallCompleteMsg{Result: model.InstallResult{Spec: "wheel", Status: model.InstallSucceeded}},
	)
	require.Equal(t, 2, m.Attempted())
	require.Equal(t, 1, m.failed)
	require.Equal(t, 1, m.succeeded)
	require.Equal(t, components.PackageFailed, m.packages["broken-pkg"].State)
	require.Equal(t, []string{"broken-pkg", "wheel"}, m.order)
	require.False(t, m.IsFinished())
}

func TestUpdateFinishedQuits(t *testing.T) {
	m := NewModel("", nil)
	updated, cmd := m.Update(FinishedMsg{Remaining: []string{"broken-pkg"}, Err: errors.New("probe failed")})
	m = updated.(Model)
	require.True(t, m.IsFinished())
	require.Equal(t, []string{"broken-pkg"}, m.remaining)
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestUpdateCtrlCCancels(t *testing.T) {
	cancelled := false
	m := NewModel("", func() { cancelled = true })
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	require.True(t, m.Cancelled())
	require.True(t, cancelled)
	require.NotNil(t, cmd)
}
