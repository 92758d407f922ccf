package models

import "time"

// UnknownSeller is shown when a row has no seller column.
const UnknownSeller = "(unknown)"

// BonusSeparator joins an item name and its bonus text.
const BonusSeparator = " — "

type ListingRow struct {
	Name   string
	Bonus  string
	Price  *int64
	Seller string
}

// DisplayName is the name as shown in notifications.
func (r ListingRow) DisplayName() string {
	if r.Bonus == "" {
		return r.Name
	}
	return r.Name + BonusSeparator + r.Bonus
}

func (r ListingRow) HasPrice() bool {
	return r.Price != nil
}

// RowResult is the outcome of extracting one table row. Index is the
// zero-based position among the scanned rows.
type RowResult struct {
	Index      int
	Row        ListingRow
	SkipReason string
}

func (r RowResult) Skipped() bool {
	return r.SkipReason != ""
}

type AlertRecord struct {
	DisplayName string
	Price       int64
	Seller      string
}

type RunResult struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	RowsScanned int
	RowsSkipped int
	RowsPriced  int
	Alerts      []AlertRecord
	Notified    bool
	Warning     string
	Err         string
}

func (r RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
