package schema

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ajitpratap0/sor/pkg/lexer"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
)

// SampleLimits bounds the inference sample. A zero or negative limit means
// that dimension is unbounded; with both unbounded the whole input is
// sampled.
type SampleLimits struct {
	// MaxRecords caps how many records the sample reads.
	MaxRecords int
	// MaxBytes caps how many input bytes the sample reads. The record in
	// which the cap is reached is still processed in full.
	MaxBytes int64
}

// DefaultSampleLimits is the standard inference budget.
var DefaultSampleLimits = SampleLimits{MaxRecords: 500, MaxBytes: 1 << 20}

// Infer derives a schema from a prefix sample of the input.
//
// The column count is the maximum field count of any sampled record. Each
// column's type is the fold of Widen over the types of its non-missing
// sampled values; a column with no non-missing value in the sample is Bool.
// Malformed records contribute the fields lexed before the malformation.
// Sampling is a pure function of the input bytes and the limits, so repeated
// runs over the same input always agree.
func Infer(data []byte, limits SampleLimits) Schema {
	var (
		types    []ColumnType
		observed []bool
		records  int
		consumed int64
	)

	for len(data) > 0 {
		if limits.MaxRecords > 0 && records >= limits.MaxRecords {
			break
		}
		if limits.MaxBytes > 0 && consumed >= limits.MaxBytes {
			break
		}

		record := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			record = data[:i+1]
			data = data[i+1:]
		} else {
			data = nil
		}
		consumed += int64(len(record))
		records++

		tokens, _ := lexer.Fields(record)
		for len(types) < len(tokens) {
			types = append(types, ColumnTypeBool)
			observed = append(observed, false)
		}
		for i, tok := range tokens {
			t, ok := TypeOf(tok)
			if !ok {
				continue
			}
			types[i] = types[i].Widen(t)
			observed[i] = true
		}
	}

	if len(types) == 0 {
		return Schema{}
	}
	return Schema(types)
}

// InferReader derives a schema from a prefix sample of a stream. It reads
// little beyond the sample budget, so the caller must not assume the stream
// was consumed to EOF. Records are read whole: a record in which the byte
// budget runs out is still sampled in full, matching Infer.
func InferReader(r io.Reader, limits SampleLimits) (Schema, error) {
	br := bufio.NewReader(r)
	var sample bytes.Buffer
	records := 0
	for {
		if limits.MaxRecords > 0 && records >= limits.MaxRecords {
			break
		}
		if limits.MaxBytes > 0 && int64(sample.Len()) >= limits.MaxBytes {
			break
		}

		line, err := br.ReadBytes('\n')
		sample.Write(line)
		if len(line) > 0 {
			records++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to read inference sample")
		}
	}

	return Infer(sample.Bytes(), SampleLimits{}), nil
}
