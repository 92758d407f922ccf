package storage

import (
	"context"
	"fmt"
	"time"

	"mt2-alerts/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWriter stores run summaries and the alerts each run raised.
// Nothing is read back: the table is an audit trail.
type PostgresWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

func (w *PostgresWriter) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS check_runs (
		id BIGSERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		finished_at TIMESTAMPTZ NOT NULL,
		rows_scanned INTEGER NOT NULL,
		rows_skipped INTEGER NOT NULL,
		rows_priced INTEGER NOT NULL,
		notified BOOLEAN NOT NULL,
		warning TEXT,
		error TEXT
	);

	CREATE TABLE IF NOT EXISTS check_run_alerts (
		run_id BIGINT NOT NULL REFERENCES check_runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		display_name TEXT NOT NULL,
		price BIGINT NOT NULL,
		seller TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_check_runs_started_at ON check_runs(started_at);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// Record inserts the run and its alerts in one transaction.
func (w *PostgresWriter) Record(ctx context.Context, result models.RunResult) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx, `
	INSERT INTO check_runs (started_at, finished_at, rows_scanned, rows_skipped, rows_priced, notified, warning, error)
	VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
	RETURNING id;
	`,
		result.StartedAt,
		result.FinishedAt,
		result.RowsScanned,
		result.RowsSkipped,
		result.RowsPriced,
		result.Notified,
		result.Warning,
		result.Err,
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(result.Alerts) > 0 {
		batch := &pgx.Batch{}
		for i, a := range result.Alerts {
			batch.Queue(`
			INSERT INTO check_run_alerts (run_id, position, display_name, price, seller)
			VALUES ($1, $2, $3, $4, $5);
			`, runID, i, a.DisplayName, a.Price, a.Seller)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range result.Alerts {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("batch insert failed at alert %d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return fmt.Errorf("close alert batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}
