package parser

import (
	"bufio"
	"io"
	"os"

	"github.com/ajitpratap0/sor/pkg/pool"
	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
	"github.com/ajitpratap0/sor/pkg/table"
)

const (
	iterScanBuffer = 64 * 1024
	iterMaxRecord  = 16 * 1024 * 1024
)

// ChunkIterator streams a SoR file as a sequence of fixed-size tables,
// letting callers process inputs larger than memory one batch at a time.
// Every batch shares the same schema, so batches splice cleanly.
type ChunkIterator struct {
	file    *os.File
	scanner *bufio.Scanner
	scanBuf []byte
	schema  schema.Schema
	rows    int
	decoder *Decoder
	done    bool
}

// NewChunkIterator opens the named file for streaming in batches of
// rowsPerChunk records. A nil schema is inferred from the file's prefix
// sample before streaming begins.
func NewChunkIterator(path string, s schema.Schema, rowsPerChunk int, limits schema.SampleLimits) (*ChunkIterator, error) {
	if rowsPerChunk <= 0 {
		return nil, sorerrors.Newf(sorerrors.ErrorTypeConfig, "rows per chunk must be positive, got %d", rowsPerChunk)
	}

	if s == nil {
		sampleFile, err := os.Open(path) //nolint:gosec // G304: path is controlled by caller
		if err != nil {
			return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to open file").
				WithDetail("path", path)
		}
		s, err = schema.InferReader(sampleFile, limits)
		sampleFile.Close()
		if err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path) //nolint:gosec // G304: path is controlled by caller
	if err != nil {
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to open file").
			WithDetail("path", path)
	}

	scanBuf := pool.GlobalBufferPool.Get(iterScanBuffer)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(scanBuf[:0], iterMaxRecord)

	return &ChunkIterator{
		file:    file,
		scanner: scanner,
		scanBuf: scanBuf,
		schema:  s,
		rows:    rowsPerChunk,
		decoder: acquireDecoder(s),
	}, nil
}

// Schema returns the schema every batch decodes against.
func (it *ChunkIterator) Schema() schema.Schema {
	return it.schema
}

// Next returns the next batch. It returns io.EOF, and no table, once the
// input is exhausted. The final batch may hold fewer rows than configured.
func (it *ChunkIterator) Next() (*table.Table, error) {
	if it.done {
		return nil, io.EOF
	}

	columns := make([]table.Column, len(it.schema))
	for i, t := range it.schema {
		columns[i] = table.NewColumn(t)
	}

	rows := 0
	for rows < it.rows {
		if !it.scanner.Scan() {
			if err := it.scanner.Err(); err != nil {
				return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to read record")
			}
			it.done = true
			break
		}
		if err := it.decoder.DecodeRecord(it.scanner.Bytes(), columns); err != nil {
			return nil, err
		}
		rows++
	}

	if rows == 0 {
		return nil, io.EOF
	}
	return table.New(it.schema, columns)
}

// Close releases the file, the scan buffer and the decoder.
func (it *ChunkIterator) Close() error {
	if it.scanBuf != nil {
		pool.GlobalBufferPool.Put(it.scanBuf)
		it.scanBuf = nil
	}
	if it.decoder != nil {
		releaseDecoder(it.decoder)
		it.decoder = nil
	}
	if it.file != nil {
		err := it.file.Close()
		it.file = nil
		return err
	}
	return nil
}
