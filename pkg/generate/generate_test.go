package generate

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/sor/pkg/config"
	"github.com/ajitpratap0/sor/pkg/parser"
	"github.com/ajitpratap0/sor/pkg/schema"
)

func TestWriteDeterministic(t *testing.T) {
	opts := Defaults()
	opts.Rows = 50
	opts.Seed = 42

	var a, b bytes.Buffer
	require.NoError(t, Write(&a, opts))
	require.NoError(t, Write(&b, opts))
	assert.Equal(t, a.Bytes(), b.Bytes())

	opts.Seed = 43
	var c bytes.Buffer
	require.NoError(t, Write(&c, opts))
	assert.NotEqual(t, a.Bytes(), c.Bytes())
}

func TestGeneratedOutputParses(t *testing.T) {
	opts := Defaults()
	opts.Rows = 200
	opts.Seed = 7
	opts.MissingRate = 0.1

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, opts))

	p, err := parser.New(config.NewParseConfig())
	require.NoError(t, err)
	tbl, err := p.Parse(context.Background(), buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 200, tbl.RowCount())
	require.Equal(t, 8, tbl.ColumnCount())

	s := tbl.Schema()
	assert.Equal(t, schema.ColumnTypeInt, s[0])
	assert.Equal(t, schema.ColumnTypeFloat, s[1])
	assert.Equal(t, schema.ColumnTypeBool, s[2])
	assert.Equal(t, schema.ColumnTypeString, s[3])
	assert.Equal(t, schema.ColumnTypeInt, s[4])
}

func TestValidate(t *testing.T) {
	opts := Defaults()
	opts.Cols = 0
	assert.Error(t, Write(&bytes.Buffer{}, opts))

	opts = Defaults()
	opts.MissingRate = 1.0
	assert.Error(t, Write(&bytes.Buffer{}, opts))
}
