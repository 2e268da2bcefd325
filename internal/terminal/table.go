package terminal

import (
	"strconv"
	"strings"

	"roster/internal/render"

	"github.com/charmbracelet/lipgloss"
)

const emptyMessage = "No students yet."

var tableHeaders = []string{"#", "Name", "Student ID", "Major", "GPA", "ID"}

func rowCells(r render.Row) []string {
	name := r.Name
	if r.Badge != "" {
		name += " [" + r.Badge + "]"
	}
	return []string{strconv.Itoa(r.Index), name, r.Code, r.Major, r.GPA, r.ID}
}

// FormatTable lays the rows out in padded columns. An empty table renders
// as the empty-state line.
func FormatTable(t render.Table, styles Styles) string {
	if t.Empty {
		return styles.Muted.Render(emptyMessage) + "\n"
	}

	rows := make([][]string, 0, len(t.Rows))
	widths := make([]int, len(tableHeaders))
	for i, h := range tableHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range t.Rows {
		cells := rowCells(r)
		for i, c := range cells {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
		rows = append(rows, cells)
	}

	var sb strings.Builder
	sep := styles.Muted.Render("|")
	writeRow := func(cells []string, style lipgloss.Style) {
		for i, c := range cells {
			sb.WriteString(style.Width(widths[i] + 2).Padding(0, 1).Render(c))
			if i < len(cells)-1 {
				sb.WriteString(sep)
			}
		}
		sb.WriteString("\n")
	}

	writeRow(tableHeaders, styles.Header)
	total := len(widths) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("-", total)) + "\n")
	for _, cells := range rows {
		writeRow(cells, styles.Body)
	}
	return sb.String()
}
