package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/table"
)

func decodeOne(t *testing.T, s schema.Schema, record string) []table.Cell {
	t.Helper()
	columns := make([]table.Column, len(s))
	for i, ct := range s {
		columns[i] = table.NewColumn(ct)
	}
	dec := NewDecoder(s)
	require.NoError(t, dec.DecodeRecord([]byte(record), columns))

	cells := make([]table.Cell, len(columns))
	for i, col := range columns {
		require.Equal(t, 1, col.Len())
		cells[i] = col.Value(0)
	}
	return cells
}

func TestDecodeRecord(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeBool, schema.ColumnTypeInt, schema.ColumnTypeFloat, schema.ColumnTypeString}
	cells := decodeOne(t, s, `<1> <-42> <3.25> <"hello world">`)

	assert.Equal(t, table.BoolCell(true), cells[0])
	assert.Equal(t, table.IntCell(-42), cells[1])
	assert.Equal(t, table.FloatCell(3.25), cells[2])
	assert.Equal(t, table.StringCell("hello world"), cells[3])
}

func TestDecodeShortRecordPadsMissing(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt, schema.ColumnTypeInt, schema.ColumnTypeInt}
	cells := decodeOne(t, s, "<7>")

	assert.Equal(t, table.IntCell(7), cells[0])
	assert.True(t, cells[1].IsMissing())
	assert.True(t, cells[2].IsMissing())
}

func TestDecodeExtraFieldsIgnored(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt}
	cells := decodeOne(t, s, "<1> <2> <3>")

	require.Len(t, cells, 1)
	assert.Equal(t, table.IntCell(1), cells[0])
}

func TestDecodeMissingField(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt, schema.ColumnTypeString}
	cells := decodeOne(t, s, "<> <>")

	assert.True(t, cells[0].IsMissing())
	assert.True(t, cells[1].IsMissing())
}

func TestDecodeBoolAcceptsOnlyZeroAndOne(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeBool}

	assert.Equal(t, table.BoolCell(false), decodeOne(t, s, "<0>")[0])
	assert.Equal(t, table.BoolCell(true), decodeOne(t, s, "<1>")[0])
	assert.True(t, decodeOne(t, s, "<2>")[0].IsMissing())
	assert.True(t, decodeOne(t, s, "<true>")[0].IsMissing())
	assert.True(t, decodeOne(t, s, `<"1">`)[0].IsMissing())
}

func TestDecodeIncompatibleFieldBecomesMissing(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt, schema.ColumnTypeFloat}
	dec := NewDecoder(s)
	columns := []table.Column{
		table.NewColumn(schema.ColumnTypeInt),
		table.NewColumn(schema.ColumnTypeFloat),
	}

	require.NoError(t, dec.DecodeRecord([]byte("<abc> <xyz>"), columns))
	assert.True(t, columns[0].IsMissing(0))
	assert.True(t, columns[1].IsMissing(0))
	assert.Equal(t, int64(2), dec.Anomalies())
}

func TestDecodeQuotedNumberInNumericColumnIsMissing(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt}
	assert.True(t, decodeOne(t, s, `<"42">`)[0].IsMissing())
}

func TestDecodeMalformedTruncates(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt, schema.ColumnTypeInt, schema.ColumnTypeInt}
	dec := NewDecoder(s)
	columns := make([]table.Column, len(s))
	for i, ct := range s {
		columns[i] = table.NewColumn(ct)
	}

	require.NoError(t, dec.DecodeRecord([]byte("<1> <bad field> <3>"), columns))
	assert.Equal(t, table.IntCell(1), columns[0].Value(0))
	assert.True(t, columns[1].IsMissing(0))
	assert.True(t, columns[2].IsMissing(0))
	assert.Equal(t, int64(1), dec.Malformed())
}

func TestDecodeEmptyRecordIsAllMissing(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeBool, schema.ColumnTypeString}
	cells := decodeOne(t, s, "\n")

	assert.True(t, cells[0].IsMissing())
	assert.True(t, cells[1].IsMissing())
}

func TestPooledDecoderResetsBetweenUses(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeInt}
	col := table.NewColumn(schema.ColumnTypeInt)

	dec := acquireDecoder(s)
	require.NoError(t, dec.DecodeRecord([]byte("<abc>"), []table.Column{col}))
	require.NoError(t, dec.DecodeRecord([]byte("<1> oops"), []table.Column{col}))
	assert.Equal(t, int64(1), dec.Anomalies())
	assert.Equal(t, int64(1), dec.Malformed())
	releaseDecoder(dec)

	// A recycled decoder must not carry tallies or the old schema forward.
	s2 := schema.Schema{schema.ColumnTypeString}
	dec = acquireDecoder(s2)
	defer releaseDecoder(dec)

	col2 := table.NewColumn(schema.ColumnTypeString)
	require.NoError(t, dec.DecodeRecord([]byte("<hello>"), []table.Column{col2}))
	assert.Zero(t, dec.Anomalies())
	assert.Zero(t, dec.Malformed())
	assert.Equal(t, table.StringCell("hello"), col2.Value(0))
}

func TestDecodeStringOwnsItsBytes(t *testing.T) {
	s := schema.Schema{schema.ColumnTypeString}
	record := []byte("<abc>")
	col := table.NewColumn(schema.ColumnTypeString)
	dec := NewDecoder(s)
	require.NoError(t, dec.DecodeRecord(record, []table.Column{col}))

	record[1] = 'x'
	assert.Equal(t, table.StringCell("abc"), col.Value(0))
}
