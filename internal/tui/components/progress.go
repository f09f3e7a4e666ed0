package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// Progress renders how many of the missing packages have been attempted.
type Progress struct {
	bar   progress.Model
	total int
}

// NewProgress creates a progress component for the given total.
func NewProgress(total int) Progress {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 30
	return Progress{bar: bar, total: total}
}

// View renders the bar for the attempted count, noting failures when there are any.
func (p Progress) View(attempted, failed int) string {
	ratio := 0.0
	if p.total > 0 {
		ratio = math.Min(1.0, float64(attempted)/float64(p.total))
	}
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", attempted, p.total))
	parts := []string{label, " ", p.bar.ViewAs(ratio)}
	if failed > 0 {
		parts = append(parts, " ", failedStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
