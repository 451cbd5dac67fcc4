// Package sanitize partitions structured quote tables into rows that are
// complete and rows with at least one missing cell.
package sanitize

import (
	"strings"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/table"
)

// Missing reports whether a cell counts as absent: empty or whitespace-only,
// or exactly the sentinel string.
func Missing(cell string) bool {
	return strings.TrimSpace(cell) == "" || cell == model.Sentinel
}

// Partition splits the table row-wise. A row with no missing cell in any
// column goes to clean, everything else to removed. No cell is rewritten;
// removed rows are surfaced for inspection, never silently discarded.
func Partition(t *table.Table) (clean, removed *table.Table) {
	clean = &table.Table{Header: append([]string(nil), t.Header...)}
	removed = &table.Table{Header: append([]string(nil), t.Header...)}

	for _, row := range t.Rows {
		target := clean
		for _, cell := range row {
			if Missing(cell) {
				target = removed
				break
			}
		}
		target.Rows = append(target.Rows, append([]string(nil), row...))
	}
	return clean, removed
}
