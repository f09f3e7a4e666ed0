package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/pyreqs/internal/model"
)

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards install progress either to a running program or, when
// output is not interactive, straight into a Model that is printed at the end.
type Observer struct {
	mu      sync.Mutex
	program Sender
	state   *Model
}

// NewProgramObserver forwards progress to a running Bubbletea program.
func NewProgramObserver(program Sender) *Observer {
	return &Observer{program: program}
}

// NewStateObserver applies progress directly to state.
func NewStateObserver(state *Model) *Observer {
	return &Observer{state: state}
}

// InstallStarted implements installer.Observer.
func (o *Observer) InstallStarted(spec string, position, total int) {
	o.Dispatch(InstallStartMsg{Spec: spec, Position: position, Total: total})
}

// InstallOutput implements installer.Observer.
func (o *Observer) InstallOutput(spec, line string) {
	o.Dispatch(InstallOutputMsg{Spec: spec, Line: line})
}

// InstallFinished implements installer.Observer.
func (o *Observer) InstallFinished(result model.InstallResult) {
	o.Dispatch(InstallCompleteMsg{Result: result})
}

// Dispatch delivers msg to the program or the local model.
func (o *Observer) Dispatch(msg tea.Msg) {
	if o.program != nil {
		o.program.Send(msg)
		return
	}
	if o.state == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	updated, _ := o.state.Update(msg)
	if m, ok := updated.(Model); ok {
		*o.state = m
	}
}
