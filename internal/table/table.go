// Package table reads and writes the header-plus-rows CSV and XLSX tables
// that every pipeline stage exchanges.
package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/suvichaar/quotepipe/internal/model"
)

// Table is an in-memory tabular file: a header row plus data rows. Rows are
// padded to the header width on read so column indexes are always valid.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// RequireColumns returns a SchemaError naming the first missing column.
func (t *Table) RequireColumns(names ...string) error {
	for _, name := range names {
		if _, ok := t.Column(name); !ok {
			return model.NewSchemaError(name)
		}
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// ReadCSV parses a CSV document with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // allow ragged rows; padded below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("table: empty input")
	}
	if err != nil {
		return nil, eris.Wrap(err, "table: read header")
	}

	t := &Table{Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "table: read row")
		}
		t.Rows = append(t.Rows, padRow(record, len(header)))
	}
	return t, nil
}

// ReadXLSX parses the first sheet of an XLSX workbook, treating the first
// row as the header.
func ReadXLSX(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "table: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("table: xlsx has no sheets")
	}

	sheet := f.Sheets[0]
	var t Table
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, padRow(cells, len(t.Header)))
	}
	if t.Header == nil {
		return nil, eris.New("table: empty input")
	}
	return &t, nil
}

// ReadFile loads a table from disk, dispatching on the file extension.
// Anything that is not .xlsx is parsed as CSV.
func ReadFile(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "table: open %s", path)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// WriteCSV renders the table as CSV, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header); err != nil {
		return eris.Wrap(err, "table: write header")
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "table: write row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "table: flush")
}

// WriteFile writes the table to disk as CSV.
func (t *Table) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "table: create %s", path)
	}
	if err := t.WriteCSV(f); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "table: close %s", path)
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
