package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sor/pkg/config"
	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
	"github.com/ajitpratap0/sor/pkg/table"
	"github.com/ajitpratap0/sor/pkg/testutil"
)

func newTestParser(t *testing.T, mutate func(*config.ParseConfig)) *Parser {
	t.Helper()
	cfg := config.NewParseConfig()
	if mutate != nil {
		mutate(cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func TestParseBasic(t *testing.T) {
	input := "<1> <hi> <>\n<0> <bye> <2.5>\n"
	p := newTestParser(t, nil)

	tbl, err := p.Parse(context.Background(), []byte(input))
	require.NoError(t, err)

	assert.Equal(t, 2, tbl.RowCount())
	assert.True(t, tbl.Schema().Equal(schema.Schema{
		schema.ColumnTypeBool, schema.ColumnTypeString, schema.ColumnTypeFloat,
	}))

	cell, err := tbl.Value(0, 1)
	require.NoError(t, err)
	assert.Equal(t, table.BoolCell(false), cell)

	cell, err = tbl.Value(2, 0)
	require.NoError(t, err)
	assert.True(t, cell.IsMissing())
}

func TestParseSchemaAppliesToWholeFile(t *testing.T) {
	// Only the first record is sampled, so column one is Bool; the later
	// value that does not fit decodes as missing.
	input := "<1>\n<7>\n"
	p := newTestParser(t, func(cfg *config.ParseConfig) {
		cfg.Sample.MaxRecords = 1
	})

	tbl, err := p.Parse(context.Background(), []byte(input))
	require.NoError(t, err)
	require.True(t, tbl.Schema().Equal(schema.Schema{schema.ColumnTypeBool}))

	missing, err := tbl.IsMissing(0, 1)
	require.NoError(t, err)
	assert.True(t, missing)
}

func TestParseOrderPreservedAcrossWorkerCounts(t *testing.T) {
	var sb strings.Builder
	const rows = 1000
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "<%d> <name%d>\n", i+2, i)
	}
	input := []byte(sb.String())

	for _, workers := range []int{1, 2, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			p := newTestParser(t, func(cfg *config.ParseConfig) {
				cfg.Workers = workers
			})

			tbl, err := p.Parse(context.Background(), input)
			require.NoError(t, err)
			require.Equal(t, rows, tbl.RowCount())

			for i := 0; i < rows; i++ {
				cell, err := tbl.Value(0, i)
				require.NoError(t, err)
				require.Equal(t, table.IntCell(int64(i+2)), cell, "row %d", i)

				cell, err = tbl.Value(1, i)
				require.NoError(t, err)
				require.Equal(t, table.StringCell(fmt.Sprintf("name%d", i)), cell, "row %d", i)
			}
		})
	}
}

func TestParseMoreWorkersThanRecords(t *testing.T) {
	p := newTestParser(t, func(cfg *config.ParseConfig) {
		cfg.Workers = 32
	})

	tbl, err := p.Parse(context.Background(), []byte("<1> <a>\n<2> <b>\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.RowCount())
}

func TestParseEmptyInput(t *testing.T) {
	p := newTestParser(t, nil)

	tbl, err := p.Parse(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, tbl.RowCount())
	assert.Zero(t, tbl.ColumnCount())
}

func TestParseEmptyLinesBecomeMissingRows(t *testing.T) {
	input := "<1> <a>\n\n<2> <b>\n"
	p := newTestParser(t, nil)

	tbl, err := p.Parse(context.Background(), []byte(input))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.RowCount())

	missing, err := tbl.IsMissing(0, 1)
	require.NoError(t, err)
	assert.True(t, missing)

	cell, err := tbl.Value(0, 2)
	require.NoError(t, err)
	assert.Equal(t, table.IntCell(2), cell)
}

func TestParseNoTrailingNewline(t *testing.T) {
	p := newTestParser(t, nil)

	tbl, err := p.Parse(context.Background(), []byte("<1>\n<2>"))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.RowCount())
}

func TestParseMixedRecordScenario(t *testing.T) {
	input := "<0> <1.2> <hello>\n<1> <2.0> <\"bye bye\">\n<1> <> <>\n"
	p := newTestParser(t, nil)

	tbl, err := p.Parse(context.Background(), []byte(input))
	require.NoError(t, err)

	require.True(t, tbl.Schema().Equal(schema.Schema{
		schema.ColumnTypeBool, schema.ColumnTypeFloat, schema.ColumnTypeString,
	}))

	cell, err := tbl.Value(1, 1)
	require.NoError(t, err)
	assert.Equal(t, table.FloatCell(2.0), cell)

	missing, err := tbl.IsMissing(2, 2)
	require.NoError(t, err)
	assert.True(t, missing)

	missing, err = tbl.IsMissing(1, 2)
	require.NoError(t, err)
	assert.True(t, missing)
}

func TestAlignRange(t *testing.T) {
	data := []byte("<1>\n<22>\n<333>\n")

	tests := []struct {
		name string
		from int64
		len  int64
		want string
	}{
		{"whole input", 0, 0, "<1>\n<22>\n<333>\n"},
		{"from mid record skips it", 1, 0, "<22>\n<333>\n"},
		{"from record boundary keeps it", 4, 0, "<22>\n<333>\n"},
		{"length extends through record", 0, 5, "<1>\n<22>\n"},
		{"length on boundary does not extend", 0, 4, "<1>\n"},
		{"window in the middle", 1, 6, "<22>\n"},
		{"from at last record start", 9, 0, "<333>\n"},
		{"from inside last record skips it", 10, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := alignRange(data, tt.from, tt.len)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := alignRange(data, -1, 0)
	assert.True(t, sorerrors.IsType(err, sorerrors.ErrorTypeFile))

	_, err = alignRange(data, int64(len(data))+1, 0)
	assert.Error(t, err)

	got, err := alignRange([]byte("<1> <2"), 3, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAlignRangeHugeLength(t *testing.T) {
	data := []byte("<1>\n<22>\n<333>\n")

	// A length near MaxInt64 must clamp to end of input, not wrap around.
	got, err := alignRange(data, 0, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(got))

	got, err = alignRange(data, 1, math.MaxInt64)
	require.NoError(t, err)
	assert.Equal(t, "<22>\n<333>\n", string(got))

	got, err = alignRange(data, 4, math.MaxInt64-2)
	require.NoError(t, err)
	assert.Equal(t, "<22>\n<333>\n", string(got))
}

func TestParseWithRange(t *testing.T) {
	input := "<1> <a>\n<2> <b>\n<3> <c>\n"
	p := newTestParser(t, func(cfg *config.ParseConfig) {
		cfg.Range.From = 2
		cfg.Range.Length = 8
	})

	// From 2 lands inside record one, which is skipped; byte 9 lands in
	// record two, which is read through its delimiter.
	tbl, err := p.Parse(context.Background(), []byte(input))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.RowCount())

	cell, err := tbl.Value(0, 0)
	require.NoError(t, err)
	assert.Equal(t, table.IntCell(2), cell)
}

func TestPartitionBoundariesOnRecordStarts(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&sb, "<%d>\n", i)
	}
	data := []byte(sb.String())

	for _, n := range []int{1, 3, 7, 16} {
		chunks := partition(data, n)
		require.NotEmpty(t, chunks)

		var total int
		for _, chunk := range chunks {
			require.NotEmpty(t, chunk)
			assert.Equal(t, byte('\n'), chunk[len(chunk)-1])
			total += len(chunk)
		}
		assert.Equal(t, len(data), total)
	}
}

func TestParseFilePlain(t *testing.T) {
	path := testutil.WriteSorFile(t, "<1> <x>\n<2> <y>\n")

	p := newTestParser(t, nil)
	tbl, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.RowCount())
}

func TestParseFileGenerated(t *testing.T) {
	path := testutil.GenerateSorFile(t, 300, 4, 99)

	p := newTestParser(t, nil)
	tbl, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 300, tbl.RowCount())
	assert.Equal(t, 4, tbl.ColumnCount())
}

func TestParseFileGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sor.gz")

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("<1> <x>\n<2> <y>\n<3> <z>\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	p := newTestParser(t, nil)
	tbl, err := p.ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.RowCount())

	cell, err := tbl.Value(1, 2)
	require.NoError(t, err)
	assert.Equal(t, table.StringCell("z"), cell)
}

func TestParseFileMissing(t *testing.T) {
	p := newTestParser(t, nil)
	_, err := p.ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.sor"))
	require.Error(t, err)
	assert.True(t, sorerrors.IsType(err, sorerrors.ErrorTypeFile))
}

func TestChunkIterator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sor")
	var sb strings.Builder
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&sb, "<%d>\n", i+2)
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o644))

	it, err := NewChunkIterator(path, nil, 10, schema.DefaultSampleLimits)
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Schema().Equal(schema.Schema{schema.ColumnTypeInt}))

	var sizes []int
	next := 2
	for {
		tbl, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		sizes = append(sizes, tbl.RowCount())
		for i := 0; i < tbl.RowCount(); i++ {
			cell, err := tbl.Value(0, i)
			require.NoError(t, err)
			require.Equal(t, table.IntCell(int64(next)), cell)
			next++
		}
	}

	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Equal(t, 27, next)
}

func TestChunkIteratorRejectsBadChunkSize(t *testing.T) {
	_, err := NewChunkIterator("unused", nil, 0, schema.DefaultSampleLimits)
	require.Error(t, err)
	assert.True(t, sorerrors.IsType(err, sorerrors.ErrorTypeConfig))
}

func TestRowCountConservation(t *testing.T) {
	// Every delimiter yields a row regardless of content, plus one row for
	// trailing bytes without a delimiter.
	input := "<1>\nmalformed garbage\n\n<not parseable\n<2>"
	p := newTestParser(t, func(cfg *config.ParseConfig) {
		cfg.Workers = 4
	})

	tbl, err := p.Parse(context.Background(), []byte(input))
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.RowCount())
}
