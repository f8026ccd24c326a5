package parser

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/sor/pkg/config"
	"github.com/ajitpratap0/sor/pkg/logger"
	"github.com/ajitpratap0/sor/pkg/metrics"
	"github.com/ajitpratap0/sor/pkg/mmap"
	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
	"github.com/ajitpratap0/sor/pkg/table"
)

const tracerName = "github.com/ajitpratap0/sor/pkg/parser"

// Parser reads SoR files into columnar tables.
type Parser struct {
	cfg *config.ParseConfig
}

// New returns a parser with the given configuration. A nil configuration
// uses defaults.
func New(cfg *config.ParseConfig) (*Parser, error) {
	if cfg == nil {
		cfg = config.NewParseConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Parser{cfg: cfg}, nil
}

// ParseFile reads the named file into a table. Plain files are memory-mapped
// and never copied; gzip, zstd and lz4 files (by extension) are decompressed
// into memory first. The configured byte range and worker count apply either
// way. The schema is inferred from the input's prefix sample.
func (p *Parser) ParseFile(ctx context.Context, path string) (*table.Table, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "parser.ParseFile",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("file.path", path),
		attribute.Int("workers", p.cfg.EffectiveWorkers()),
	)

	loadTimer := metrics.NewTimer("load")
	data, cleanup, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	loadTimer.Stop()

	ctx = context.WithValue(ctx, logger.FileKey, filepath.Base(path))
	return p.Parse(ctx, data)
}

// Parse reads in-memory SoR bytes into a table, applying the configured byte
// range, sampling budget and worker count.
func (p *Parser) Parse(ctx context.Context, data []byte) (*table.Table, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "parser.Parse")
	defer span.End()

	data, err := alignRange(data, p.cfg.Range.From, p.cfg.Range.Length)
	if err != nil {
		return nil, err
	}

	s := p.InferSchema(ctx, data)
	return p.ParseWithSchema(ctx, data, s)
}

// ParseWithSchema reads in-memory SoR bytes against a caller-supplied schema,
// skipping inference. The configured byte range is NOT applied; the caller
// passes exactly the bytes to decode.
func (p *Parser) ParseWithSchema(ctx context.Context, data []byte, s schema.Schema) (*table.Table, error) {
	tbl, err := parseParallel(ctx, s, data, p.cfg.EffectiveWorkers())
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("parse complete",
		zap.Int("rows", tbl.RowCount()),
		zap.Int("columns", tbl.ColumnCount()),
		zap.Int("bytes", len(data)))
	return tbl, nil
}

// InferSchema derives a schema from the prefix sample of data under the
// configured sampling budget.
func (p *Parser) InferSchema(ctx context.Context, data []byte) schema.Schema {
	_, span := otel.Tracer(tracerName).Start(ctx, "parser.InferSchema")
	defer span.End()

	timer := metrics.NewTimer("infer")
	s := schema.Infer(data, schema.SampleLimits{
		MaxRecords: p.cfg.Sample.MaxRecords,
		MaxBytes:   p.cfg.Sample.MaxBytes,
	})
	metrics.SchemasInferred.Inc()
	span.SetAttributes(attribute.Int("schema.columns", len(s)))
	timer.Stop()
	return s
}

// loadFile returns the file's bytes and a cleanup function. Plain files are
// memory-mapped; compressed files are inflated into memory so that the
// byte-range and partitioning logic sees uncompressed offsets.
func loadFile(path string) ([]byte, func(), error) {
	switch filepath.Ext(path) {
	case ".gz", ".zst", ".lz4":
		data, err := readCompressed(path)
		if err != nil {
			return nil, nil, err
		}
		return data, func() {}, nil
	}

	r, err := mmap.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return r.Bytes(), func() { _ = r.Close() }, nil
}

func readCompressed(path string) ([]byte, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is controlled by caller
	if err != nil {
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to open file").
			WithDetail("path", path)
	}
	defer f.Close()

	var r io.Reader
	switch filepath.Ext(path) {
	case ".gz":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to read gzip header").
				WithDetail("path", path)
		}
		defer gz.Close()
		r = gz
	case ".zst":
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to read zstd header").
				WithDetail("path", path)
		}
		defer zr.Close()
		r = zr
	case ".lz4":
		r = lz4.NewReader(f)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to decompress file").
			WithDetail("path", path)
	}
	return data, nil
}
