package parser

import (
	"bytes"
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ajitpratap0/sor/pkg/logger"
	"github.com/ajitpratap0/sor/pkg/metrics"
	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
	"github.com/ajitpratap0/sor/pkg/table"
)

// alignRange clips data to the byte window [from, from+length) and snaps the
// window to record boundaries. A record partially ahead of the window is
// skipped; the record containing the window's final byte is read through its
// delimiter. A non-positive length means through the end of the input.
func alignRange(data []byte, from, length int64) ([]byte, error) {
	size := int64(len(data))
	if from < 0 || from > size {
		return nil, sorerrors.Newf(sorerrors.ErrorTypeFile, "range start %d out of bounds [0, %d]", from, size)
	}

	start := from
	if start > 0 && data[start-1] != '\n' {
		i := bytes.IndexByte(data[start:], '\n')
		if i < 0 {
			return nil, nil
		}
		start += int64(i) + 1
	}

	// length can be anything the caller passed; compare against the room
	// left so from+length cannot overflow.
	end := size
	if length > 0 && length < size-from {
		end = from + length
		if data[end-1] != '\n' {
			i := bytes.IndexByte(data[end:], '\n')
			if i < 0 {
				end = size
			} else {
				end += int64(i) + 1
			}
		}
	}

	if start >= end {
		return nil, nil
	}
	return data[start:end], nil
}

// partition splits data into at most n chunks whose boundaries fall on
// record starts, so every record belongs to exactly one chunk. Chunks may be
// fewer than n when records are large relative to the input.
func partition(data []byte, n int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}

	chunks := make([][]byte, 0, n)
	target := len(data) / n
	start := 0
	for i := 1; i < n && start < len(data); i++ {
		cut := i * target
		if cut <= start {
			continue
		}
		// Snap forward to the next record start.
		j := bytes.IndexByte(data[cut:], '\n')
		if j < 0 {
			break
		}
		cut += j + 1
		if cut <= start || cut >= len(data) {
			continue
		}
		chunks = append(chunks, data[start:cut])
		start = cut
	}
	if start < len(data) {
		chunks = append(chunks, data[start:])
	}
	return chunks
}

// chunkResult is one worker's private output.
type chunkResult struct {
	columns   []table.Column
	rows      int
	malformed int64
	anomalies int64
	err       error
}

// decodeChunk decodes every record of one chunk into fresh private columns.
// Record boundaries are delimiter positions: a chunk with n newlines holds n
// records, plus one more if bytes trail the last newline. Empty records
// yield all-missing rows.
func decodeChunk(ctx context.Context, s schema.Schema, chunk []byte) chunkResult {
	res := chunkResult{columns: make([]table.Column, len(s))}
	for i, t := range s {
		res.columns[i] = table.NewColumn(t)
	}

	dec := acquireDecoder(s)
	defer releaseDecoder(dec)

	for len(chunk) > 0 {
		if err := ctx.Err(); err != nil {
			res.err = sorerrors.Wrap(err, sorerrors.ErrorTypeInternal, "parse canceled")
			return res
		}

		record := chunk
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			record = chunk[:i+1]
			chunk = chunk[i+1:]
		} else {
			chunk = nil
		}

		if err := dec.DecodeRecord(record, res.columns); err != nil {
			res.err = err
			return res
		}
		res.rows++
	}

	res.malformed = dec.Malformed()
	res.anomalies = dec.Anomalies()
	return res
}

// parseParallel decodes data across workers and splices the results in input
// order. Workers never share mutable state; each owns its decoder and
// columns, and results meet only after the join.
func parseParallel(ctx context.Context, s schema.Schema, data []byte, workers int) (*table.Table, error) {
	chunks := partition(data, workers)
	if len(chunks) == 0 {
		return table.Empty(s), nil
	}

	log := logger.WithContext(ctx)
	timer := metrics.NewTimer("decode")
	metrics.WorkersActive.Set(float64(len(chunks)))
	defer metrics.WorkersActive.Set(0)

	results := make([]chunkResult, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []byte) {
			defer wg.Done()
			results[i] = decodeChunk(ctx, s, chunk)
		}(i, chunk)
	}
	wg.Wait()

	// Errors surface only after every worker has joined.
	var malformed, anomalies int64
	rows := 0
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		rows += res.rows
		malformed += res.malformed
		anomalies += res.anomalies
	}

	mergeTimer := metrics.NewTimer("merge")
	merged := make([]table.Column, len(s))
	for c := range merged {
		merged[c] = table.NewColumn(s[c])
		for _, res := range results {
			if err := merged[c].AppendColumn(res.columns[c]); err != nil {
				return nil, err
			}
		}
	}
	mergeTimer.Stop()

	tbl, err := table.New(s, merged)
	if err != nil {
		return nil, err
	}

	metrics.RecordsParsed.Add(float64(rows))
	metrics.BytesRead.Add(float64(len(data)))
	metrics.MalformedRecords.Add(float64(malformed))
	metrics.DecodeAnomalies.Add(float64(anomalies))

	log.Debug("parallel decode complete",
		zap.Int("workers", len(chunks)),
		zap.Int("rows", rows),
		zap.Int64("malformed_records", malformed),
		zap.Int64("decode_anomalies", anomalies),
		zap.Duration("decode_time", timer.Stop()))

	return tbl, nil
}
