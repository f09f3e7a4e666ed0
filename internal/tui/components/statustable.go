package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/alexisbeaulieu97/pyreqs/internal/model"
)

const statusColumn = 1

// StatusTable renders one row per checked requirement.
type StatusTable struct {
	statuses []model.RequirementStatus
}

// NewStatusTable constructs a status table component.
func NewStatusTable(statuses []model.RequirementStatus) StatusTable {
	return StatusTable{statuses: statuses}
}

// View renders the table.
func (t StatusTable) View() string {
	rows := make([][]string, 0, len(t.statuses))
	for _, st := range t.statuses {
		installed := st.InstalledVersion
		if installed == "" {
			installed = "-"
		}
		rows = append(rows, []string{st.Spec, string(st.Status), installed, string(st.Method), st.Message})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("REQUIREMENT", "STATUS", "INSTALLED", "CHECKED BY", "DETAIL").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col != statusColumn || row < 0 || row >= len(t.statuses) {
				return cellStyle
			}
			switch t.statuses[row].Status {
			case model.StatusSatisfied:
				return cellStyle.Inherit(satisfiedStyle)
			case model.StatusCheckerFailed:
				return cellStyle.Inherit(failedStyle)
			default:
				return cellStyle.Inherit(missingStyle)
			}
		}).
		String()
}
