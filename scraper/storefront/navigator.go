package storefront

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mt2-alerts/config"
	"mt2-alerts/utils"

	"github.com/chromedp/chromedp"
)

const (
	serverSelect = "#server-select"
	sortSelect   = "#sort-by-select"
)

// NavigationError reports the page-preparation step that failed. Timeouts
// are not retried: the page layout is assumed stable, so a timeout means an
// outage or a markup change.
type NavigationError struct {
	Step string
	Err  error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation step %q failed: %v", e.Step, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

func (e *NavigationError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

type step struct {
	name   string
	tasks  chromedp.Tasks
	settle time.Duration
}

type Navigator struct {
	cfg *config.Config
}

func NewNavigator(cfg *config.Config) *Navigator {
	return &Navigator{cfg: cfg}
}

func (n *Navigator) steps(html *string) []step {
	flag := fmt.Sprintf("//img[@src='%s']", n.cfg.LocaleFlagSrc)

	return []step{
		{
			name: "open store page",
			tasks: chromedp.Tasks{
				chromedp.Navigate(n.cfg.StoreURL),
				utils.HideWebDriver(),
			},
		},
		{
			name: "select locale",
			tasks: chromedp.Tasks{
				chromedp.WaitVisible(flag, chromedp.BySearch),
				chromedp.Click(flag, chromedp.BySearch),
			},
			settle: n.cfg.LocaleDelay,
		},
		{
			name:  "select server",
			tasks: selectByValue(serverSelect, n.cfg.ServerValue),
		},
		{
			name:   "sort by price",
			tasks:  selectByValue(sortSelect, n.cfg.SortValue),
			settle: n.cfg.SortDelay,
		},
		{
			name: "read listing table",
			tasks: chromedp.Tasks{
				chromedp.OuterHTML("html", html, chromedp.ByQuery),
			},
		},
	}
}

// LoadListingPage runs every step in tabCtx, bounding each one by
// WaitTimeout, and returns the rendered document.
func (n *Navigator) LoadListingPage(tabCtx context.Context) (string, error) {
	var html string
	for _, s := range n.steps(&html) {
		utils.Debug("navigator: %s", s.name)
		if err := n.run(tabCtx, s); err != nil {
			return "", &NavigationError{Step: s.name, Err: err}
		}
	}

	utils.Success("Listing page ready (%d bytes)", len(html))
	return html, nil
}

func (n *Navigator) run(ctx context.Context, s step) error {
	stepCtx, cancel := context.WithTimeout(ctx, n.cfg.WaitTimeout)
	defer cancel()

	if err := chromedp.Run(stepCtx, s.tasks); err != nil {
		return err
	}
	if s.settle > 0 {
		// client-side re-rendering is not observable through wait conditions
		return chromedp.Run(ctx, chromedp.Sleep(s.settle))
	}
	return nil
}

// selectByValue waits for the select control to be usable, picks the option
// with the given value and fires the events a framework listens for.
func selectByValue(sel, value string) chromedp.Tasks {
	var ok bool
	return chromedp.Tasks{
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.WaitEnabled(sel, chromedp.ByQuery),
		chromedp.Evaluate(fmt.Sprintf(`(() => {
			const el = document.querySelector(%q);
			if (!el) return false;
			const opt = Array.from(el.options).find(o => o.value === %q);
			if (!opt) return false;
			el.value = opt.value;
			el.dispatchEvent(new Event('input', { bubbles: true }));
			el.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		})()`, sel, value), &ok),
		chromedp.ActionFunc(func(context.Context) error {
			if !ok {
				return fmt.Errorf("option %q not found in %s", value, sel)
			}
			return nil
		}),
	}
}
