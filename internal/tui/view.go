package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/pyreqs/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("pyreqs • %s", m.heading())))

	progress := components.NewProgress(m.total).View(m.Attempted(), m.failed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewPackageList(m.order, m.packages).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Packages"), m.renderEntries(entries))
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.total,
		Succeeded: m.succeeded,
		Failed:    m.failed,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Remaining: m.remaining,
	}).View()
	if m.err != nil {
		summary = strings.TrimSpace(summary + "\n" + failureStyle.Render("Final check failed: "+m.err.Error()))
	}
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func (m Model) renderEntries(entries []components.PackageEntry) string {
	var lines []string
	for _, entry := range entries {
		icon := m.stateIcon(entry.State)
		line := fmt.Sprintf(" %s %s", icon, entry.Spec)
		if entry.State == components.PackageFailed {
			line = fmt.Sprintf("%s (exit %d)", line, entry.ExitCode)
			if strings.TrimSpace(entry.LastLine) != "" {
				line = fmt.Sprintf("%s: %s", line, entry.LastLine)
			}
		}
		if entry.Duration > 0 {
			line = fmt.Sprintf("%s %s", line, pendingStyle.Render(entry.Duration.Truncate(10*time.Millisecond).String()))
		}
		lines = append(lines, line)

		if entry.Spec == m.current {
			for _, out := range m.output {
				lines = append(lines, outputStyle.Render(out))
			}
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) heading() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return "Installing requirements"
}

func (m Model) stateIcon(state components.PackageState) string {
	if state == components.PackageInstalling && !m.finished {
		return m.spinner.View()
	}
	return StatusIcon(state)
}

// StatusIcon returns the glyph representing a package state.
func StatusIcon(state components.PackageState) string {
	switch state {
	case components.PackageInstalled:
		return successStyle.Render("✓")
	case components.PackageInstalling:
		return runningStyle.Render("⏳")
	case components.PackageFailed:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
