// Package parser turns SoR input into a columnar table: it infers a schema
// from a bounded prefix sample, decodes records against that fixed schema
// across parallel workers, and splices the workers' private columns together
// in input order.
package parser

import (
	"strconv"

	"github.com/ajitpratap0/sor/pkg/lexer"
	"github.com/ajitpratap0/sor/pkg/pool"
	"github.com/ajitpratap0/sor/pkg/schema"
	stringpool "github.com/ajitpratap0/sor/pkg/strings"
	"github.com/ajitpratap0/sor/pkg/table"
)

// Decoder turns lexed records into table cells under a fixed schema. A
// decoder is not safe for concurrent use; each worker owns one.
type Decoder struct {
	schema  schema.Schema
	scanner lexer.Scanner

	// Per-decoder tallies, folded into parse totals after the workers join.
	malformed int64
	anomalies int64
}

// NewDecoder returns a decoder for the given schema.
func NewDecoder(s schema.Schema) *Decoder {
	return &Decoder{schema: s}
}

// decoderPool recycles decoders across chunks and parses. Workers and the
// chunk iterator churn through one decoder per chunk; pooling keeps that off
// the allocator.
var decoderPool = pool.New(
	func() *Decoder { return &Decoder{} },
	func(d *Decoder) {
		d.schema = nil
		d.malformed = 0
		d.anomalies = 0
	},
)

// acquireDecoder takes a pooled decoder and arms it for the given schema.
func acquireDecoder(s schema.Schema) *Decoder {
	d := decoderPool.Get()
	d.schema = s
	return d
}

// releaseDecoder returns a decoder to the pool. The caller must not use it
// afterwards.
func releaseDecoder(d *Decoder) {
	decoderPool.Put(d)
}

// DecodeRecord decodes one record into the given columns, which must match
// the decoder's schema in order and type. Every record yields exactly one
// row: short records are padded with missing cells, fields beyond the schema
// width are ignored, and a field that fails to decode under its column type
// becomes missing. An error here means a column rejected a cell, which is a
// bug in the caller, not bad data.
func (d *Decoder) DecodeRecord(record []byte, columns []table.Column) error {
	d.scanner.Reset(record)

	col := 0
	for ; col < len(d.schema); col++ {
		tok, ok := d.scanner.Next()
		if !ok {
			break
		}
		if err := columns[col].Append(d.decodeField(tok, d.schema[col])); err != nil {
			return err
		}
	}

	// Drain so malformation past the schema width is still counted.
	for {
		if _, ok := d.scanner.Next(); !ok {
			break
		}
	}
	if d.scanner.Malformed() {
		d.malformed++
	}

	for ; col < len(d.schema); col++ {
		if err := columns[col].Append(table.Missing); err != nil {
			return err
		}
	}
	return nil
}

// decodeField converts one token to a cell of the given type. Missing tokens
// and undecodable payloads both yield the missing cell; the latter bumps the
// anomaly tally.
func (d *Decoder) decodeField(tok lexer.Token, t schema.ColumnType) table.Cell {
	if tok.Missing {
		return table.Missing
	}

	raw := stringpool.BytesToString(tok.Raw)
	switch t {
	case schema.ColumnTypeBool:
		if !tok.Quoted {
			switch raw {
			case "0":
				return table.BoolCell(false)
			case "1":
				return table.BoolCell(true)
			}
		}
	case schema.ColumnTypeInt:
		if !tok.Quoted {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				return table.IntCell(v)
			}
		}
	case schema.ColumnTypeFloat:
		if !tok.Quoted {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				return table.FloatCell(v)
			}
		}
	case schema.ColumnTypeString:
		// The token aliases a shared input buffer; the cell must own its
		// bytes.
		return table.StringCell(stringpool.Clone(raw))
	}

	d.anomalies++
	return table.Missing
}

// Malformed returns how many records violated the field grammar.
func (d *Decoder) Malformed() int64 {
	return d.malformed
}

// Anomalies returns how many fields failed to decode under their column type.
func (d *Decoder) Anomalies() int64 {
	return d.anomalies
}
