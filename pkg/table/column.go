// Package table provides columnar storage for parsed SoR data.
//
// A table owns one typed column per schema slot. Columns store values
// densely with a validity bitmap on the side, so missing values cost one bit
// each and reads never chase pointers. Workers build private columns for
// their chunk and the coordinator splices them together in order, so columns
// support bulk append of a whole same-typed column.
package table

import (
	"strconv"

	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
)

// CellKind discriminates the value held by a Cell.
type CellKind uint8

const (
	CellMissing CellKind = iota
	CellBool
	CellInt
	CellFloat
	CellString
)

// Cell is one value of a column: either missing or a scalar of the column's
// type. The zero Cell is missing.
type Cell struct {
	Kind  CellKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Missing is the missing cell.
var Missing = Cell{}

// BoolCell returns a boolean cell.
func BoolCell(v bool) Cell { return Cell{Kind: CellBool, Bool: v} }

// IntCell returns an integer cell.
func IntCell(v int64) Cell { return Cell{Kind: CellInt, Int: v} }

// FloatCell returns a float cell.
func FloatCell(v float64) Cell { return Cell{Kind: CellFloat, Float: v} }

// StringCell returns a string cell.
func StringCell(v string) Cell { return Cell{Kind: CellString, Str: v} }

// IsMissing reports whether the cell holds no value.
func (c Cell) IsMissing() bool { return c.Kind == CellMissing }

// String renders the cell for display. Booleans print as 1 or 0, strings are
// double-quoted, and missing cells print as "Missing Value".
func (c Cell) String() string {
	switch c.Kind {
	case CellBool:
		if c.Bool {
			return "1"
		}
		return "0"
	case CellInt:
		return strconv.FormatInt(c.Int, 10)
	case CellFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case CellString:
		return `"` + c.Str + `"`
	default:
		return "Missing Value"
	}
}

// Column is a typed, append-only vector of cells with missing-value support.
type Column interface {
	// Type returns the column's schema type.
	Type() schema.ColumnType
	// Len returns the number of cells.
	Len() int
	// Value returns the cell at position i. i must be in range.
	Value(i int) Cell
	// IsMissing reports whether the cell at i is missing. i must be in range.
	IsMissing(i int) bool
	// Append adds one cell. A missing cell is always accepted; a scalar must
	// match the column type.
	Append(c Cell) error
	// AppendColumn splices a whole column of the same type onto this one.
	AppendColumn(other Column) error
}

// NewColumn returns an empty column of the given type.
func NewColumn(t schema.ColumnType) Column {
	switch t {
	case schema.ColumnTypeBool:
		return &BoolColumn{}
	case schema.ColumnTypeInt:
		return &IntColumn{}
	case schema.ColumnTypeFloat:
		return &FloatColumn{}
	default:
		return &StringColumn{}
	}
}

// bitmap is a packed vector of bits, 64 per word.
type bitmap struct {
	words []uint64
	n     int
}

func (b *bitmap) append(v bool) {
	word := b.n / 64
	if word >= len(b.words) {
		b.words = append(b.words, 0)
	}
	if v {
		b.words[word] |= 1 << (b.n % 64)
	}
	b.n++
}

func (b *bitmap) get(i int) bool {
	return b.words[i/64]&(1<<(i%64)) != 0
}

func (b *bitmap) appendBitmap(other *bitmap) {
	for i := 0; i < other.n; i++ {
		b.append(other.get(i))
	}
}

func typeMismatch(want schema.ColumnType, c Cell) error {
	return sorerrors.Newf(sorerrors.ErrorTypeInternal, "cannot append cell kind %d to %s column", c.Kind, want)
}

func columnMismatch(want, got schema.ColumnType) error {
	return sorerrors.Newf(sorerrors.ErrorTypeInternal, "cannot splice %s column onto %s column", got, want)
}

// BoolColumn stores booleans bit-packed, 64 values per word.
type BoolColumn struct {
	values   bitmap
	validity bitmap
}

func (c *BoolColumn) Type() schema.ColumnType { return schema.ColumnTypeBool }
func (c *BoolColumn) Len() int                { return c.validity.n }
func (c *BoolColumn) IsMissing(i int) bool    { return !c.validity.get(i) }

func (c *BoolColumn) Value(i int) Cell {
	if !c.validity.get(i) {
		return Missing
	}
	return BoolCell(c.values.get(i))
}

func (c *BoolColumn) Append(cell Cell) error {
	switch cell.Kind {
	case CellMissing:
		c.values.append(false)
		c.validity.append(false)
	case CellBool:
		c.values.append(cell.Bool)
		c.validity.append(true)
	default:
		return typeMismatch(schema.ColumnTypeBool, cell)
	}
	return nil
}

func (c *BoolColumn) AppendColumn(other Column) error {
	o, ok := other.(*BoolColumn)
	if !ok {
		return columnMismatch(schema.ColumnTypeBool, other.Type())
	}
	c.values.appendBitmap(&o.values)
	c.validity.appendBitmap(&o.validity)
	return nil
}

// IntColumn stores 64-bit integers.
type IntColumn struct {
	values   []int64
	validity bitmap
}

func (c *IntColumn) Type() schema.ColumnType { return schema.ColumnTypeInt }
func (c *IntColumn) Len() int                { return len(c.values) }
func (c *IntColumn) IsMissing(i int) bool    { return !c.validity.get(i) }

func (c *IntColumn) Value(i int) Cell {
	if !c.validity.get(i) {
		return Missing
	}
	return IntCell(c.values[i])
}

func (c *IntColumn) Append(cell Cell) error {
	switch cell.Kind {
	case CellMissing:
		c.values = append(c.values, 0)
		c.validity.append(false)
	case CellInt:
		c.values = append(c.values, cell.Int)
		c.validity.append(true)
	default:
		return typeMismatch(schema.ColumnTypeInt, cell)
	}
	return nil
}

func (c *IntColumn) AppendColumn(other Column) error {
	o, ok := other.(*IntColumn)
	if !ok {
		return columnMismatch(schema.ColumnTypeInt, other.Type())
	}
	c.values = append(c.values, o.values...)
	c.validity.appendBitmap(&o.validity)
	return nil
}

// FloatColumn stores 64-bit floats.
type FloatColumn struct {
	values   []float64
	validity bitmap
}

func (c *FloatColumn) Type() schema.ColumnType { return schema.ColumnTypeFloat }
func (c *FloatColumn) Len() int                { return len(c.values) }
func (c *FloatColumn) IsMissing(i int) bool    { return !c.validity.get(i) }

func (c *FloatColumn) Value(i int) Cell {
	if !c.validity.get(i) {
		return Missing
	}
	return FloatCell(c.values[i])
}

func (c *FloatColumn) Append(cell Cell) error {
	switch cell.Kind {
	case CellMissing:
		c.values = append(c.values, 0)
		c.validity.append(false)
	case CellFloat:
		c.values = append(c.values, cell.Float)
		c.validity.append(true)
	default:
		return typeMismatch(schema.ColumnTypeFloat, cell)
	}
	return nil
}

func (c *FloatColumn) AppendColumn(other Column) error {
	o, ok := other.(*FloatColumn)
	if !ok {
		return columnMismatch(schema.ColumnTypeFloat, other.Type())
	}
	c.values = append(c.values, o.values...)
	c.validity.appendBitmap(&o.validity)
	return nil
}

// StringColumn stores strings. Values must own their memory; the decoder
// copies out of shared input buffers before appending.
type StringColumn struct {
	values   []string
	validity bitmap
}

func (c *StringColumn) Type() schema.ColumnType { return schema.ColumnTypeString }
func (c *StringColumn) Len() int                { return len(c.values) }
func (c *StringColumn) IsMissing(i int) bool    { return !c.validity.get(i) }

func (c *StringColumn) Value(i int) Cell {
	if !c.validity.get(i) {
		return Missing
	}
	return StringCell(c.values[i])
}

func (c *StringColumn) Append(cell Cell) error {
	switch cell.Kind {
	case CellMissing:
		c.values = append(c.values, "")
		c.validity.append(false)
	case CellString:
		c.values = append(c.values, cell.Str)
		c.validity.append(true)
	default:
		return typeMismatch(schema.ColumnTypeString, cell)
	}
	return nil
}

func (c *StringColumn) AppendColumn(other Column) error {
	o, ok := other.(*StringColumn)
	if !ok {
		return columnMismatch(schema.ColumnTypeString, other.Type())
	}
	c.values = append(c.values, o.values...)
	c.validity.appendBitmap(&o.validity)
	return nil
}
