package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	archivedStyle = cellStyle.Faint(true)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// printTable renders rows as a bordered table. Rows listed in archived are
// drawn faint.
func printTable(w io.Writer, headers []string, rows [][]string, archived map[int]bool) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case archived[row]:
				return archivedStyle
			}

			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
}

func printDone(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}

// nameOf looks an id up in names, falling back to the id itself.
func nameOf(names map[uuid.UUID]string, id uuid.UUID) string {
	if n, ok := names[id]; ok {
		return n
	}

	return id.String()
}
