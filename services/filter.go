package services

import "mt2-alerts/models"

// Threshold is the price boundary an item must meet to raise an alert.
type Threshold struct {
	Limit     int64
	Inclusive bool
}

func (t Threshold) Matches(price int64) bool {
	if t.Inclusive {
		return price <= t.Limit
	}
	return price < t.Limit
}

// FilterAlerts keeps the extracted rows whose price meets the threshold, in
// their original order. Skipped and unpriced rows never match.
func FilterAlerts(results []models.RowResult, threshold Threshold) []models.AlertRecord {
	var alerts []models.AlertRecord
	for _, r := range results {
		if r.Skipped() || !r.Row.HasPrice() {
			continue
		}
		price := *r.Row.Price
		if !threshold.Matches(price) {
			continue
		}
		alerts = append(alerts, models.AlertRecord{
			DisplayName: r.Row.DisplayName(),
			Price:       price,
			Seller:      r.Row.Seller,
		})
	}
	return alerts
}
