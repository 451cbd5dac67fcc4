package identify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/table"
)

func authorTable(authors ...string) *table.Table {
	t := &table.Table{Header: []string{"s2paragraph1", "Author"}}
	for _, a := range authors {
		t.Rows = append(t.Rows, []string{"quote", a})
	}
	return t
}

func TestAssignEncounterOrder(t *testing.T) {
	t.Parallel()

	out, err := Assign(authorTable("Ann", "Bob", "Ann"))
	require.NoError(t, err)

	require.Equal(t, []string{ColumnCustomID, "s2paragraph1", "Author"}, out.Header)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, "1-Ann-1", out.Rows[0][0])
	assert.Equal(t, "2-Bob-1", out.Rows[1][0])
	assert.Equal(t, "1-Ann-2", out.Rows[2][0])
}

func TestAssignUnderscoresSpaces(t *testing.T) {
	t.Parallel()

	out, err := Assign(authorTable("Marie Curie"))
	require.NoError(t, err)
	assert.Equal(t, "1-Marie_Curie-1", out.Rows[0][0])
}

func TestAssignTrimsAuthorForID(t *testing.T) {
	t.Parallel()

	out, err := Assign(authorTable("  Bob  "))
	require.NoError(t, err)
	assert.Equal(t, "1-Bob-1", out.Rows[0][0])
	// The row cell itself is carried through untouched.
	assert.Equal(t, "  Bob  ", out.Rows[0][2])
}

func TestAssignUniqueness(t *testing.T) {
	t.Parallel()

	var authors []string
	for i := 0; i < 20; i++ {
		authors = append(authors, fmt.Sprintf("Author %d", i%5))
	}
	out, err := Assign(authorTable(authors...))
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, row := range out.Rows {
		_, dup := seen[row[0]]
		require.False(t, dup, "duplicate custom_id %s", row[0])
		seen[row[0]] = struct{}{}
	}
}

func TestAssignOrderDependent(t *testing.T) {
	t.Parallel()

	first, err := Assign(authorTable("Ann", "Bob"))
	require.NoError(t, err)
	second, err := Assign(authorTable("Bob", "Ann"))
	require.NoError(t, err)

	assert.Equal(t, "1-Ann-1", first.Rows[0][0])
	assert.Equal(t, "1-Bob-1", second.Rows[0][0])
}

func TestAssignEmptyAuthor(t *testing.T) {
	t.Parallel()

	_, err := Assign(authorTable("Ann", "   "))
	require.Error(t, err)

	var vErr *model.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Author", vErr.Field)
	assert.Equal(t, 2, vErr.Row)
}

func TestAssignMissingAuthorColumn(t *testing.T) {
	t.Parallel()

	_, err := Assign(&table.Table{Header: []string{"s2paragraph1"}})
	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "Author", schemaErr.Column)
}
