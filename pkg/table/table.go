package table

import (
	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
)

// Table is an immutable columnar result: one typed column per schema slot,
// all of the same length.
type Table struct {
	schema  schema.Schema
	columns []Column
	rows    int
}

// New assembles a table from a schema and its columns. Column count must
// match the schema and every column must agree on length and type.
func New(s schema.Schema, columns []Column) (*Table, error) {
	if len(columns) != len(s) {
		return nil, sorerrors.Newf(sorerrors.ErrorTypeInternal,
			"schema has %d columns but %d were provided", len(s), len(columns))
	}

	rows := 0
	for i, col := range columns {
		if col.Type() != s[i] {
			return nil, sorerrors.Newf(sorerrors.ErrorTypeInternal,
				"column %d is %s but schema says %s", i, col.Type(), s[i])
		}
		if i == 0 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, sorerrors.Newf(sorerrors.ErrorTypeInternal,
				"column %d has %d rows, expected %d", i, col.Len(), rows)
		}
	}

	return &Table{schema: s, columns: columns, rows: rows}, nil
}

// Empty returns a table with the given schema and zero rows.
func Empty(s schema.Schema) *Table {
	columns := make([]Column, len(s))
	for i, t := range s {
		columns[i] = NewColumn(t)
	}
	t, _ := New(s, columns)
	return t
}

// Schema returns the table's schema.
func (t *Table) Schema() schema.Schema {
	return t.schema
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return t.rows
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.columns)
}

// ColumnType returns the type of column col.
func (t *Table) ColumnType(col int) (schema.ColumnType, error) {
	if col < 0 || col >= len(t.columns) {
		return 0, t.indexError("column", col, len(t.columns))
	}
	return t.schema[col], nil
}

// Value returns the cell at (col, row).
func (t *Table) Value(col, row int) (Cell, error) {
	if col < 0 || col >= len(t.columns) {
		return Missing, t.indexError("column", col, len(t.columns))
	}
	if row < 0 || row >= t.rows {
		return Missing, t.indexError("row", row, t.rows)
	}
	return t.columns[col].Value(row), nil
}

// IsMissing reports whether the cell at (col, row) is missing.
func (t *Table) IsMissing(col, row int) (bool, error) {
	cell, err := t.Value(col, row)
	if err != nil {
		return false, err
	}
	return cell.IsMissing(), nil
}

// Column returns column col for bulk access.
func (t *Table) Column(col int) (Column, error) {
	if col < 0 || col >= len(t.columns) {
		return nil, t.indexError("column", col, len(t.columns))
	}
	return t.columns[col], nil
}

func (t *Table) indexError(what string, got, n int) *sorerrors.Error {
	return sorerrors.Newf(sorerrors.ErrorTypeIndex, "%s index %d out of range [0, %d)", what, got, n).
		WithDetail("rows", t.rows).
		WithDetail("columns", len(t.columns))
}
