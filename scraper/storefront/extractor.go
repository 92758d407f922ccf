package storefront

import (
	"fmt"
	"strings"

	"mt2-alerts/models"

	"github.com/PuerkitoBio/goquery"
)

// Positional lookups inside one listing row. Columns are zero-based td
// indexes among the row's direct cells.
const (
	rowSelector   = "table tr"
	nameSelector  = "div[class='font-medium text-white text-sm']"
	bonusSelector = "span"

	nameColumn   = 1
	priceColumn  = 3
	sellerColumn = 5
)

// hiddenSelector matches nodes a browser does not render, so their text never
// reaches innerText.
const hiddenSelector = "script, style, template, [hidden], [style*='display:none'], [style*='display: none']"

// ExtractRows parses the rendered page and returns one result per row for
// the first limit table rows. A row that cannot be read is reported through
// SkipReason and never stops the remaining rows.
func ExtractRows(html string, limit int) ([]models.RowResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	return ExtractFromDocument(doc, limit), nil
}

func ExtractFromDocument(doc *goquery.Document, limit int) []models.RowResult {
	doc.Find(hiddenSelector).Remove()

	rows := doc.Find(rowSelector)
	if limit > 0 && rows.Length() > limit {
		rows = rows.Slice(0, limit)
	}

	results := make([]models.RowResult, 0, rows.Length())
	rows.Each(func(i int, tr *goquery.Selection) {
		row, reason := extractRow(tr)
		results = append(results, models.RowResult{
			Index:      i,
			Row:        row,
			SkipReason: reason,
		})
	})
	return results
}

func extractRow(tr *goquery.Selection) (models.ListingRow, string) {
	cells := tr.ChildrenFiltered("td")

	nameCell := cells.Eq(nameColumn)
	if nameCell.Length() == 0 {
		return models.ListingRow{}, "no name column"
	}
	nameEl := nameCell.Find(nameSelector).First()
	if nameEl.Length() == 0 {
		return models.ListingRow{}, "no item name element"
	}
	row := models.ListingRow{
		Name:   cleanText(nameEl.Text()),
		Seller: models.UnknownSeller,
	}

	if bonus := nameCell.Find(bonusSelector).First(); bonus.Length() > 0 {
		row.Bonus = cleanText(bonus.Text())
	}

	priceCell := cells.Eq(priceColumn)
	if priceCell.Length() == 0 {
		return models.ListingRow{}, "no price column"
	}
	row.Price = ParsePrice(cleanText(priceCell.Text()))

	if seller := cleanText(cells.Eq(sellerColumn).Text()); seller != "" {
		row.Seller = seller
	}

	return row, ""
}

// cleanText collapses runs of whitespace the way rendered text reads.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
