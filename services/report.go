package services

import (
	"fmt"
	"io"

	"mt2-alerts/models"
)

type Report struct {
	RowsScanned  int
	RowsSkipped  int
	RowsPriced   int
	RowsUnpriced int
	CheapestName string
	Cheapest     int64
	HasCheapest  bool
	Alerts       []models.AlertRecord
}

// GenerateReport summarises one run's extraction and filter output.
func GenerateReport(results []models.RowResult, alerts []models.AlertRecord) Report {
	report := Report{
		RowsScanned: len(results),
		Alerts:      alerts,
	}

	for _, r := range results {
		if r.Skipped() {
			report.RowsSkipped++
			continue
		}
		if !r.Row.HasPrice() {
			report.RowsUnpriced++
			continue
		}
		report.RowsPriced++

		price := *r.Row.Price
		if !report.HasCheapest || price < report.Cheapest {
			report.Cheapest = price
			report.CheapestName = r.Row.DisplayName()
			report.HasCheapest = true
		}
	}

	return report
}

func PrintReport(w io.Writer, report Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌──────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                     Storefront Price Check                   │")
	fmt.Fprintln(w, "├───────────────────────────────┬──────────────────────────────┤")
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Rows Scanned", report.RowsScanned)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Rows Skipped", report.RowsSkipped)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Rows Priced", report.RowsPriced)
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Rows Without Price", report.RowsUnpriced)
	if report.HasCheapest {
		fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Cheapest Price", report.Cheapest)
	}
	fmt.Fprintf(w, "│ %-29s │ %-28d │\n", "Alerts", len(report.Alerts))
	fmt.Fprintln(w, "└───────────────────────────────┴──────────────────────────────┘")

	if report.HasCheapest {
		fmt.Fprintf(w, "Cheapest: %s\n", report.CheapestName)
	}

	if len(report.Alerts) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌─────┬──────────────────────────────────────────────┬──────────┐")
	fmt.Fprintln(w, "│ #   │ Item                                         │ Yang     │")
	fmt.Fprintln(w, "├─────┼──────────────────────────────────────────────┼──────────┤")
	for i, a := range report.Alerts {
		fmt.Fprintf(w, "│ %-3d │ %-44s │ %-8d │\n", i+1, truncateText(a.DisplayName, 44), a.Price)
	}
	fmt.Fprintln(w, "└─────┴──────────────────────────────────────────────┴──────────┘")
}

func truncateText(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
