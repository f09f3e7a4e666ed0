package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/pyreqs/internal/model"
	"github.com/alexisbeaulieu97/pyreqs/internal/tui/components"
)

// outputTail is how many of pip's latest lines stay on screen.
const outputTail = 5

// InstallStartMsg indicates pip has been launched for a package.
type InstallStartMsg struct {
	Spec     string
	Position int
	Total    int
}

// InstallOutputMsg carries one line of pip output.
type InstallOutputMsg struct {
	Spec string
	Line string
}

// InstallCompleteMsg reports that one install finished.
type InstallCompleteMsg struct {
	Result model.InstallResult
}

// FinishedMsg is sent once installs are done and the requirements were evaluated again.
type FinishedMsg struct {
	Remaining []string
	Err       error
}

// Model contains the Bubbletea state for the install progress view.
type Model struct {
	title     string
	packages  map[string]components.PackageEntry
	order     []string
	output    []string
	current   string
	total     int
	succeeded int
	failed    int
	remaining []string
	err       error
	spinner   spinner.Model
	finished  bool
	cancelled bool
	onCancel  func()
}

// NewModel constructs the install view. onCancel, if set, runs when the user presses ctrl+c.
func NewModel(title string, onCancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	return Model{
		title:    title,
		packages: make(map[string]components.PackageEntry),
		spinner:  s,
		onCancel: onCancel,
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// TotalPackages returns the number of packages to install.
func (m Model) TotalPackages() int {
	return m.total
}

// Attempted returns the number of finished installs.
func (m Model) Attempted() int {
	return m.succeeded + m.failed
}

// IsFinished reports whether the run has completed.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user interrupted the run.
func (m Model) Cancelled() bool {
	return m.cancelled
}

func (m *Model) ensurePackage(spec string) {
	if spec == "" {
		return
	}
	if _, exists := m.packages[spec]; !exists {
		m.packages[spec] = components.PackageEntry{Spec: spec, State: components.PackageInstalling}
		m.order = append(m.order, spec)
	}
}
