// Package model defines the data types shared across the quote pipeline.
package model

import "strings"

// SlotCount is the fixed number of quote slots in a structured record.
const SlotCount = 8

// Sentinel marks an absent quote slot in tabular form.
const Sentinel = "NA"

// MaxQuoteLen is the longest quote (after trimming) that survives structuring.
const MaxQuoteLen = 180

// QuoteRow is one scraped quote as it appears in the raw CSV.
type QuoteRow struct {
	Serial int
	Quote  string
	Link   string
	Author string
}

// Slot is a single quote position in a QuoteRecord. Absent distinguishes a
// genuinely empty slot from a quote whose text happens to equal the sentinel.
type Slot struct {
	Text   string
	Absent bool
}

// AbsentSlot returns the distinguished empty slot.
func AbsentSlot() Slot {
	return Slot{Absent: true}
}

// Cell renders the slot for tabular output. Absent slots render as the
// sentinel, matching the on-disk format.
func (s Slot) Cell() string {
	if s.Absent {
		return Sentinel
	}
	return s.Text
}

// SlotFromCell parses a tabular cell back into a Slot. A cell equal to the
// sentinel or blank is treated as absent; this is a literal string match, so
// a real quote reading exactly "NA" is indistinguishable from an empty slot.
func SlotFromCell(cell string) Slot {
	if cell == Sentinel || strings.TrimSpace(cell) == "" {
		return AbsentSlot()
	}
	return Slot{Text: cell}
}

// QuoteRecord is one author's structured row: exactly SlotCount quote slots.
type QuoteRecord struct {
	Author string
	Quotes [SlotCount]Slot
}

// PresentQuotes returns the non-absent quote texts in slot order.
func (r QuoteRecord) PresentQuotes() []string {
	var out []string
	for _, s := range r.Quotes {
		if !s.Absent && strings.TrimSpace(s.Text) != "" {
			out = append(out, s.Text)
		}
	}
	return out
}
