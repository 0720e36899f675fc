package pr

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Цвета статусных строк мастера.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)
)

func Title(format string, a ...any) {
	Println(TitleStyle.Render(fmt.Sprintf(format, a...)))
}

func Success(format string, a ...any) {
	Println(SuccessStyle.Render("✓ " + fmt.Sprintf(format, a...)))
}

func Error(format string, a ...any) {
	Println(ErrorStyle.Render("✗ " + fmt.Sprintf(format, a...)))
}

func Warn(format string, a ...any) {
	Println(WarnStyle.Render("! " + fmt.Sprintf(format, a...)))
}

func Info(format string, a ...any) {
	Println(InfoStyle.Render(fmt.Sprintf(format, a...)))
}

// Table рендерит таблицу с рамкой. Ячейки столбца status окрашиваются по значению
// (OK — зелёным, FAIL — красным).
func Table(headers []string, rows [][]string) string {
	statusCol := -1
	for i, h := range headers {
		if h == "Status" {
			statusCol = i
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusCol && row >= 0 && row < len(rows) {
				switch rows[row][col] {
				case StatusOK:
					return cellStyle.Foreground(lipgloss.Color("#04B575"))
				case StatusFail:
					return cellStyle.Foreground(lipgloss.Color("#EF4444"))
				}
			}
			return cellStyle
		})
	return t.Render()
}

// Значения столбца Status.
const (
	StatusOK   = "OK"
	StatusFail = "FAIL"
)
