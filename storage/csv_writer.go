package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mt2-alerts/models"
)

var csvHeader = []string{
	"started_at", "finished_at", "rows_scanned", "rows_skipped", "rows_priced",
	"alerts", "notified", "cheapest_alert", "warning", "error",
}

// CSVWriter appends one line per run to a CSV file.
type CSVWriter struct {
	path string
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Record appends the run summary, writing the header when the file is new.
// The output directory is created if needed.
func (w *CSVWriter) Record(_ context.Context, result models.RunResult) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("could not create output dir: %w", err)
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open run log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("could not stat run log: %w", err)
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		writer.Write(csvHeader)
	}
	writer.Write(csvRow(result))
	writer.Flush()

	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv write error: %w", err)
	}
	return nil
}

func csvRow(r models.RunResult) []string {
	return []string{
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		strconv.Itoa(r.RowsScanned),
		strconv.Itoa(r.RowsSkipped),
		strconv.Itoa(r.RowsPriced),
		strconv.Itoa(len(r.Alerts)),
		strconv.FormatBool(r.Notified),
		cheapestAlert(r.Alerts),
		strings.TrimSpace(r.Warning),
		strings.TrimSpace(r.Err),
	}
}

func cheapestAlert(alerts []models.AlertRecord) string {
	if len(alerts) == 0 {
		return ""
	}
	best := alerts[0]
	for _, a := range alerts[1:] {
		if a.Price < best.Price {
			best = a
		}
	}
	return fmt.Sprintf("%s (%d)", best.DisplayName, best.Price)
}
