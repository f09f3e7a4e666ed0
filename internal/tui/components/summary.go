package components

import (
	"fmt"
	"strings"
)

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Succeeded int
	Failed    int
	Finished  bool
	Cancelled bool
	// Remaining lists requirements still unmet after the final evaluation.
	Remaining []string
}

// Summary renders a textual install summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Packages: %d/%d installed", s.data.Succeeded, s.data.Total))
	}

	switch {
	case s.data.Cancelled:
		lines = append(lines, "Installation cancelled")
	case s.data.Finished && s.data.Failed > 0:
		lines = append(lines, fmt.Sprintf("%d of %d installs failed", s.data.Failed, s.data.Total))
	case s.data.Finished && s.data.Total > 0:
		lines = append(lines, "All missing packages installed")
	}

	if s.data.Finished && len(s.data.Remaining) > 0 {
		lines = append(lines, "Still missing:")
		for _, spec := range s.data.Remaining {
			lines = append(lines, fmt.Sprintf("  ✗ %s", spec))
		}
	}

	return strings.Join(lines, "\n")
}
