package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table renders rows of plain text in aligned columns
type Table struct {
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the given column headings
func NewTable(headers ...string) *Table {
	return &Table{Headers: headers}
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// Render returns the table as a string, or a muted note when empty
func (t *Table) Render() string {
	if len(t.Rows) == 0 {
		return MutedStyle.Render("  (none)")
	}

	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, t.renderRow(t.Headers, widths, TableHeaderStyle))
	for _, row := range t.Rows {
		lines = append(lines, t.renderRow(row, widths, TableCellStyle))
	}
	return strings.Join(lines, "\n")
}

func (t *Table) renderRow(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		// Width includes the horizontal padding of the style
		rendered[i] = style.Width(w + 2).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// String implements fmt.Stringer
func (t *Table) String() string {
	return t.Render()
}
