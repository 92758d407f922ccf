package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mt2-alerts/models"

	"github.com/stretchr/testify/require"
)

func TestCSVWriterAppendsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "runs.csv")
	w := NewCSVWriter(path)

	started := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	first := models.RunResult{
		StartedAt:   started,
		FinishedAt:  started.Add(20 * time.Second),
		RowsScanned: 10,
		RowsSkipped: 1,
		RowsPriced:  8,
		Alerts: []models.AlertRecord{
			{DisplayName: "Espada", Price: 900},
			{DisplayName: "Anillo", Price: 450},
		},
		Notified: true,
	}
	second := models.RunResult{
		StartedAt:  started.Add(time.Hour),
		FinishedAt: started.Add(time.Hour + 15*time.Second),
		Err:        "navigation step \"select locale\" failed",
	}

	require.NoError(t, w.Record(context.Background(), first))
	require.NoError(t, w.Record(context.Background(), second))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, csvHeader, records[0])
	require.Equal(t, []string{
		"2026-10-19T08:00:00Z", "2026-10-19T08:00:20Z", "10", "1", "8", "2", "true", "Anillo (450)", "", "",
	}, records[1])
	require.Equal(t, "0", records[2][5])
	require.Equal(t, "false", records[2][6])
	require.Equal(t, "navigation step \"select locale\" failed", records[2][9])
}
