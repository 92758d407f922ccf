package utils

import (
	"context"

	"github.com/chromedp/chromedp"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// BrowserOpts returns the launch options for a local Chrome process.
//
//   - no-sandbox and disable-dev-shm-usage keep Chrome alive inside containers
//     and CI runners with a small /dev/shm
//   - disable-blink-features=AutomationControlled removes the navigator.webdriver flag
//   - chromeBin overrides the auto-detected binary when non-empty
func BrowserOpts(headless bool, chromeBin string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(desktopUserAgent),
	}

	if headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	return opts
}

// HideWebDriver patches the automation markers some storefront scripts
// check before rendering listings.
func HideWebDriver() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		return chromedp.Evaluate(`
			Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
		`, nil).Do(ctx)
	})
}
