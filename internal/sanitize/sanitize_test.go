package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvichaar/quotepipe/internal/table"
)

func TestMissing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cell string
		want bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \t", true},
		{"sentinel", "NA", true},
		{"sentinel lowercase is a real value", "na", false},
		{"sentinel with spaces is a real value", " NA ", false},
		{"ordinary text", "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Missing(tt.cell))
		})
	}
}

func TestPartitionIsStrict(t *testing.T) {
	t.Parallel()

	in := &table.Table{
		Header: []string{"a", "b", "c"},
		Rows: [][]string{
			{"1", "2", "3"},
			{"1", "", "3"},
			{"1", "2", "NA"},
			{"x", "y", "z"},
			{"  ", "y", "z"},
		},
	}

	clean, removed := Partition(in)

	assert.Equal(t, in.Header, clean.Header)
	assert.Equal(t, in.Header, removed.Header)

	// clean ∪ removed = input, clean ∩ removed = ∅.
	require.Equal(t, len(in.Rows), len(clean.Rows)+len(removed.Rows))
	assert.Equal(t, [][]string{{"1", "2", "3"}, {"x", "y", "z"}}, clean.Rows)
	assert.Equal(t, [][]string{{"1", "", "3"}, {"1", "2", "NA"}, {"  ", "y", "z"}}, removed.Rows)
}

func TestPartitionDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := &table.Table{
		Header: []string{"a"},
		Rows:   [][]string{{"NA"}},
	}
	_, removed := Partition(in)

	removed.Rows[0][0] = "changed"
	assert.Equal(t, "NA", in.Rows[0][0])
}

func TestPartitionEmptyTable(t *testing.T) {
	t.Parallel()

	clean, removed := Partition(&table.Table{Header: []string{"a"}})
	assert.Empty(t, clean.Rows)
	assert.Empty(t, removed.Rows)
}
