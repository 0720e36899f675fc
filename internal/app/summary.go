package app

import (
	"strconv"
	"strings"

	"telegram-session-manager/internal/domain/report"
	"telegram-session-manager/internal/infra/pr"
)

// printSummary печатает итоги прогона: счётчики, долю успехов, статистику по форматам
// и детальную таблицу пар.
func (a *App) printSummary(s report.Summary, records []report.Record) {
	pr.Println()
	pr.Println(strings.Repeat("=", 60))
	pr.Title("Summary")
	pr.Println(strings.Repeat("=", 60))

	pr.Success("Succeeded: %d", s.Success)
	pr.Error("Failed: %d", s.Failed)
	pr.Info("Success rate: %.1f%%", s.Rate)

	pr.Println()
	pr.Println("Per library:")
	for _, st := range s.PerLibrary {
		pr.Printf("  • %s: %d/%d succeeded\n", st.Library, st.Success, st.Total)
	}

	pr.Println()
	pr.Println(pr.Table([]string{"#", "Status", "Library", "Phone"}, summaryRows(records)))
}

func summaryRows(records []report.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		status := pr.StatusFail
		if r.Success {
			status = pr.StatusOK
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), status, r.Library, r.Phone})
	}
	return rows
}
