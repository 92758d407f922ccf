package storefront

import (
	"context"
	"fmt"

	"mt2-alerts/config"
	"mt2-alerts/models"
	"mt2-alerts/utils"

	"github.com/chromedp/chromedp"
)

// Session owns one browser tab for the duration of a single check.
type Session struct {
	cfg         *config.Config
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

// OpenSession starts a local Chrome, or attaches to the DevTools endpoint in
// cfg.RemoteURL, and opens a tab. The caller must Close the session.
func OpenSession(ctx context.Context, cfg *config.Config) (*Session, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)
	if cfg.UsesRemoteBrowser() {
		utils.Info("Connecting to remote browser at %s", cfg.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, cfg.RemoteURL)
	} else {
		utils.Info("Launching Chrome browser...")
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, utils.BrowserOpts(cfg.Headless, cfg.ChromeBin)...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run allocates the browser, so launch failures surface here
	// instead of on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	utils.Success("Browser ready")
	return &Session{
		cfg:         cfg,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
	}, nil
}

// Close shuts the tab and, for a local browser, the Chrome process. It is
// safe to call more than once.
func (s *Session) Close() {
	if s.tabCancel == nil {
		return
	}
	utils.Info("Closing browser...")
	if err := chromedp.Cancel(s.tabCtx); err != nil {
		utils.Debug("browser close: %v", err)
	}
	s.tabCancel()
	s.allocCancel()
	s.tabCancel = nil
}

// FetchListings drives the page to the configured state and extracts the
// first RowLimit table rows. The tab inherits the context given to
// OpenSession, so cancelling that context aborts the current step.
func (s *Session) FetchListings(context.Context) ([]models.RowResult, error) {
	html, err := NewNavigator(s.cfg).LoadListingPage(s.tabCtx)
	if err != nil {
		return nil, err
	}
	return ExtractRows(html, s.cfg.RowLimit)
}
