// Package structure groups raw scraped quotes into per-author records with a
// fixed number of quote slots.
package structure

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/table"
)

// Raw CSV column names.
const (
	ColumnQuote  = "Quote"
	ColumnAuthor = "Author"
)

// Columns returns the structured table header: s2paragraph1..s9paragraph1
// followed by Author.
func Columns() []string {
	cols := make([]string, 0, model.SlotCount+1)
	for i := 2; i < 2+model.SlotCount; i++ {
		cols = append(cols, fmt.Sprintf("s%dparagraph1", i))
	}
	return append(cols, ColumnAuthor)
}

// Build groups (quote, author) pairs by exact author match, in first-seen
// author order. Quotes that are empty or longer than MaxQuoteLen after
// trimming are dropped before grouping. Each record keeps the first
// SlotCount surviving quotes in insertion order; short groups are padded
// with absent slots.
func Build(rows []model.QuoteRow) []model.QuoteRecord {
	order := make([]string, 0)
	grouped := make(map[string][]string)

	for _, row := range rows {
		// Length limit counts characters, not bytes; scraped quotes
		// routinely carry multi-byte punctuation.
		trimmed := strings.TrimSpace(row.Quote)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > model.MaxQuoteLen {
			continue
		}
		if _, seen := grouped[row.Author]; !seen {
			order = append(order, row.Author)
		}
		grouped[row.Author] = append(grouped[row.Author], row.Quote)
	}

	records := make([]model.QuoteRecord, 0, len(order))
	for _, author := range order {
		rec := model.QuoteRecord{Author: author}
		quotes := grouped[author]
		for i := 0; i < model.SlotCount; i++ {
			if i < len(quotes) {
				rec.Quotes[i] = model.Slot{Text: quotes[i]}
			} else {
				rec.Quotes[i] = model.AbsentSlot()
			}
		}
		records = append(records, rec)
	}
	return records
}

// BuildFromTable structures a raw quotes table. The table must carry Quote
// and Author columns; a missing one rejects the whole input with a
// SchemaError.
func BuildFromTable(t *table.Table) ([]model.QuoteRecord, error) {
	if err := t.RequireColumns(ColumnQuote, ColumnAuthor); err != nil {
		return nil, err
	}
	quoteIdx, _ := t.Column(ColumnQuote)
	authorIdx, _ := t.Column(ColumnAuthor)

	rows := make([]model.QuoteRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		rows = append(rows, model.QuoteRow{
			Quote:  row[quoteIdx],
			Author: row[authorIdx],
		})
	}
	return Build(rows), nil
}

// ToTable renders records as the structured table.
func ToTable(records []model.QuoteRecord) *table.Table {
	t := &table.Table{Header: Columns()}
	for _, rec := range records {
		row := make([]string, 0, model.SlotCount+1)
		for _, slot := range rec.Quotes {
			row = append(row, slot.Cell())
		}
		row = append(row, rec.Author)
		t.Rows = append(t.Rows, row)
	}
	return t
}
