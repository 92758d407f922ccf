package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"mt2-alerts/config"
	"mt2-alerts/models"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows   []models.RowResult
	err    error
	panics bool
	closed int
}

func (s *fakeSource) FetchListings(context.Context) ([]models.RowResult, error) {
	if s.panics {
		panic("selector engine crashed")
	}
	return s.rows, s.err
}

func (s *fakeSource) Close() {
	s.closed++
}

type fakeNotifier struct {
	calls int
	got   []models.AlertRecord
	err   error
}

func (n *fakeNotifier) Notify(alerts []models.AlertRecord) (bool, error) {
	n.calls++
	n.got = alerts
	if n.err != nil {
		return false, n.err
	}
	return true, nil
}

type fakeRecorder struct {
	results []models.RunResult
}

func (r *fakeRecorder) Record(_ context.Context, result models.RunResult) error {
	r.results = append(r.results, result)
	return nil
}

func checkerConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.EmailAddress = "bot@example.com"
	cfg.EmailPassword = "secret"
	cfg.EmailTo = "me@example.com"
	return cfg
}

type harness struct {
	source   *fakeSource
	notifier *fakeNotifier
	recorder *fakeRecorder
	opened   int
	checker  *Checker
}

func newHarness(cfg *config.Config, source *fakeSource) *harness {
	h := &harness{source: source, notifier: &fakeNotifier{}, recorder: &fakeRecorder{}}
	open := func(context.Context, *config.Config) (ListingSource, error) {
		h.opened++
		return h.source, nil
	}
	h.checker = NewChecker(cfg, open, h.notifier, h.recorder).ReportTo(io.Discard)
	return h
}

func TestRunSendsAlerts(t *testing.T) {
	h := newHarness(checkerConfig(), &fakeSource{rows: []models.RowResult{
		priced("a", 500), priced("b", 1200), priced("c", 1000), priced("d", 999),
	}})

	result, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.True(t, result.Notified)
	require.Equal(t, 4, result.RowsScanned)
	require.Equal(t, []int64{500, 1000, 999}, pricesOf(h.notifier.got))
	require.Equal(t, 1, h.source.closed)
	require.Len(t, h.recorder.results, 1)
	require.False(t, h.recorder.results[0].FinishedAt.IsZero())
}

func TestRunWithoutAlertsNeverNotifies(t *testing.T) {
	h := newHarness(checkerConfig(), &fakeSource{rows: []models.RowResult{
		priced("a", 5000), {SkipReason: "no name column"},
	}})

	result, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.Notified)
	require.Zero(t, h.notifier.calls)
	require.Equal(t, 1, h.source.closed)
}

func TestRunMissingPasswordFailsBeforeSession(t *testing.T) {
	cfg := checkerConfig()
	cfg.EmailPassword = ""
	h := newHarness(cfg, &fakeSource{})

	_, err := h.checker.Run(context.Background())
	var missing *config.MissingError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, []string{"EMAIL_PASSWORD"}, missing.Keys)
	require.Zero(t, h.opened)
	require.Empty(t, h.recorder.results)
}

func TestRunNavigationFailureClosesSession(t *testing.T) {
	navErr := errors.New("navigation step \"select server\" failed: context deadline exceeded")
	h := newHarness(checkerConfig(), &fakeSource{err: navErr})

	result, err := h.checker.Run(context.Background())
	require.ErrorIs(t, err, navErr)
	require.Equal(t, 1, h.source.closed)
	require.Zero(t, h.notifier.calls)
	require.Equal(t, navErr.Error(), result.Err)
	require.Len(t, h.recorder.results, 1)
}

func TestRunDeliveryFailureIsNonFatal(t *testing.T) {
	h := newHarness(checkerConfig(), &fakeSource{rows: []models.RowResult{priced("a", 10)}})
	h.notifier.err = &DeliveryError{Err: errors.New("connection refused")}

	result, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.Notified)
	require.Contains(t, result.Warning, "connection refused")
	require.Equal(t, 1, h.notifier.calls)
	require.Equal(t, 1, h.source.closed)
}

func TestRunRecoversPanics(t *testing.T) {
	h := newHarness(checkerConfig(), &fakeSource{panics: true})

	_, err := h.checker.Run(context.Background())
	var unhandled *UnhandledError
	require.True(t, errors.As(err, &unhandled))
	require.Equal(t, "selector engine crashed", unhandled.Value)
	require.NotEmpty(t, unhandled.Stack)
	require.Equal(t, 1, h.source.closed)
}

func TestRunOpenFailure(t *testing.T) {
	cfg := checkerConfig()
	launchErr := errors.New("chrome not found")
	open := func(context.Context, *config.Config) (ListingSource, error) {
		return nil, launchErr
	}
	c := NewChecker(cfg, open, &fakeNotifier{}).ReportTo(io.Discard)

	_, err := c.Run(context.Background())
	require.ErrorIs(t, err, launchErr)
}

func TestRunExclusiveThreshold(t *testing.T) {
	cfg := checkerConfig()
	cfg.InclusiveThreshold = false
	h := newHarness(cfg, &fakeSource{rows: []models.RowResult{priced("a", 1000), priced("b", 999)}})

	_, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []int64{999}, pricesOf(h.notifier.got))
}

func TestRunReportsSummary(t *testing.T) {
	h := newHarness(checkerConfig(), &fakeSource{rows: []models.RowResult{priced("Anillo", 700)}})
	var buf bytes.Buffer
	h.checker.ReportTo(&buf)

	_, err := h.checker.Run(context.Background())
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Rows Scanned")
	require.Contains(t, buf.String(), "Cheapest: Anillo")
}
