package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"mt2-alerts/config"
	"mt2-alerts/models"
	"mt2-alerts/utils"
)

// ListingSource is an open browser session that can produce listing rows.
type ListingSource interface {
	FetchListings(ctx context.Context) ([]models.RowResult, error)
	Close()
}

type SessionOpener func(ctx context.Context, cfg *config.Config) (ListingSource, error)

type AlertNotifier interface {
	Notify(alerts []models.AlertRecord) (bool, error)
}

// RunRecorder keeps a summary of each finished run.
type RunRecorder interface {
	Record(ctx context.Context, result models.RunResult) error
}

// UnhandledError is a panic recovered during a run.
type UnhandledError struct {
	Value interface{}
	Stack []byte
}

func (e *UnhandledError) Error() string {
	return fmt.Sprintf("unhandled error: %v", e.Value)
}

// Checker runs one price check: validate config, open a browser session,
// extract, filter, notify and close the session.
type Checker struct {
	cfg       *config.Config
	open      SessionOpener
	notifier  AlertNotifier
	recorders []RunRecorder
	out       io.Writer
}

func NewChecker(cfg *config.Config, open SessionOpener, notifier AlertNotifier, recorders ...RunRecorder) *Checker {
	return &Checker{
		cfg:       cfg,
		open:      open,
		notifier:  notifier,
		recorders: recorders,
		out:       os.Stdout,
	}
}

// Run performs one check. A *config.MissingError is returned before any
// session is opened. Delivery problems are reported in RunResult.Warning and
// do not fail the run.
func (c *Checker) Run(ctx context.Context) (models.RunResult, error) {
	result := models.RunResult{StartedAt: time.Now()}

	if err := c.cfg.Validate(); err != nil {
		return result, err
	}
	utils.Debug("state: ConfigValidated")

	err := c.runSession(ctx, &result)
	result.FinishedAt = time.Now()
	if err != nil {
		result.Err = err.Error()
	}

	c.record(ctx, result)
	return result, err
}

func (c *Checker) runSession(ctx context.Context, result *models.RunResult) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &UnhandledError{Value: v, Stack: debug.Stack()}
		}
	}()

	if c.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.RunTimeout)
		defer cancel()
	}

	source, err := c.open(ctx, c.cfg)
	if err != nil {
		return fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		source.Close()
		utils.Debug("state: SessionClosed")
	}()
	utils.Debug("state: SessionOpen")

	rows, err := source.FetchListings(ctx)
	if err != nil {
		return err
	}
	utils.Debug("state: NavigatedAndExtracted")

	for _, r := range rows {
		if r.Skipped() {
			utils.Debug("row %d skipped: %s", r.Index, r.SkipReason)
		}
	}

	alerts := FilterAlerts(rows, Threshold{
		Limit:     c.cfg.PriceThreshold,
		Inclusive: c.cfg.InclusiveThreshold,
	})
	utils.Debug("state: Filtered")

	report := GenerateReport(rows, alerts)
	result.RowsScanned = report.RowsScanned
	result.RowsSkipped = report.RowsSkipped
	result.RowsPriced = report.RowsPriced
	result.Alerts = alerts
	PrintReport(c.out, report)

	if len(alerts) == 0 {
		utils.Info("No alerts")
		utils.Debug("state: Skipped")
		return nil
	}

	utils.Info("%d item(s) within the %d Yang threshold", len(alerts), c.cfg.PriceThreshold)
	sent, err := c.notifier.Notify(alerts)
	if err != nil {
		result.Warning = err.Error()
		utils.Warn("Alert email not sent: %v", err)
		return nil
	}
	result.Notified = sent
	utils.Debug("state: Notified")
	return nil
}

// ReportTo sends the per-run summary table to w instead of stdout.
func (c *Checker) ReportTo(w io.Writer) *Checker {
	c.out = w
	return c
}

func (c *Checker) record(ctx context.Context, result models.RunResult) {
	for _, r := range c.recorders {
		if err := r.Record(ctx, result); err != nil {
			utils.Warn("Failed to record run: %v", err)
		}
	}
}
