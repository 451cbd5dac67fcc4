// Package identify assigns run-scoped composite identifiers to structured
// quote rows so they can round-trip through the generation batch.
package identify

import (
	"fmt"
	"strings"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/table"
)

// ColumnCustomID is the identifier column prepended to the table.
const ColumnCustomID = "custom_id"

// ColumnAuthor is the author column identifiers are derived from.
const ColumnAuthor = "Author"

// assigner holds the run-scoped counters. Both maps start empty on every
// Assign call, which is what makes identifiers stable within a run but
// dependent on encounter order across runs.
type assigner struct {
	ordinals    map[string]int
	occurrences map[string]int
	next        int
}

func newAssigner() *assigner {
	return &assigner{
		ordinals:    make(map[string]int),
		occurrences: make(map[string]int),
		next:        1,
	}
}

// id produces the next identifier for author: "{ordinal}-{key}-{occurrence}"
// where key is the author with spaces replaced by underscores.
func (a *assigner) id(author string) string {
	if _, seen := a.ordinals[author]; !seen {
		a.ordinals[author] = a.next
		a.next++
	}
	a.occurrences[author]++
	key := strings.ReplaceAll(author, " ", "_")
	return fmt.Sprintf("%d-%s-%d", a.ordinals[author], key, a.occurrences[author])
}

// Assign produces a new table with custom_id as the leading column. Authors
// are trimmed before use; an empty author fails the stage with a
// ValidationError. The pass is deterministic and order-dependent: reordering
// the input reorders the ordinals.
func Assign(t *table.Table) (*table.Table, error) {
	if err := t.RequireColumns(ColumnAuthor); err != nil {
		return nil, err
	}
	authorIdx, _ := t.Column(ColumnAuthor)

	out := &table.Table{
		Header: append([]string{ColumnCustomID}, t.Header...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}

	a := newAssigner()
	for i, row := range t.Rows {
		author := strings.TrimSpace(row[authorIdx])
		if author == "" {
			return nil, &model.ValidationError{Field: ColumnAuthor, Row: i + 1, Reason: "is empty"}
		}
		out.Rows = append(out.Rows, append([]string{a.id(author)}, row...))
	}
	return out, nil
}
