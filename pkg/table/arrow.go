package table

import (
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/sor/pkg/schema"
	"github.com/ajitpratap0/sor/pkg/sorerrors"
)

// ArrowSchema returns the Arrow equivalent of the table's schema. Columns are
// named c0..cN and every field is nullable, since any cell may be missing.
func (t *Table) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.schema))
	for i, ct := range t.schema {
		fields[i] = arrow.Field{
			Name:     "c" + strconv.Itoa(i),
			Type:     arrowType(ct),
			Nullable: true,
		}
	}
	return arrow.NewSchema(fields, nil)
}

// ToArrow materializes the table as one Arrow record batch. The caller owns
// the returned record and must Release it.
func (t *Table) ToArrow() (arrow.Record, error) {
	builder := array.NewRecordBuilder(memory.NewGoAllocator(), t.ArrowSchema())
	defer builder.Release()

	for i, col := range t.columns {
		if err := appendArrowColumn(builder.Field(i), col); err != nil {
			return nil, err
		}
	}

	return builder.NewRecord(), nil
}

// WriteArrowIPC writes the table to w in the Arrow IPC file format.
func (t *Table) WriteArrowIPC(w io.Writer) error {
	record, err := t.ToArrow()
	if err != nil {
		return err
	}
	defer record.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(record.Schema()))
	if err != nil {
		return sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to create Arrow IPC writer")
	}
	if err := fw.Write(record); err != nil {
		fw.Close()
		return sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to write Arrow record")
	}
	if err := fw.Close(); err != nil {
		return sorerrors.Wrap(err, sorerrors.ErrorTypeFile, "failed to close Arrow IPC writer")
	}
	return nil
}

func arrowType(t schema.ColumnType) arrow.DataType {
	switch t {
	case schema.ColumnTypeBool:
		return arrow.FixedWidthTypes.Boolean
	case schema.ColumnTypeInt:
		return arrow.PrimitiveTypes.Int64
	case schema.ColumnTypeFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

func appendArrowColumn(b array.Builder, col Column) error {
	for i := 0; i < col.Len(); i++ {
		cell := col.Value(i)
		if cell.IsMissing() {
			b.AppendNull()
			continue
		}
		switch fb := b.(type) {
		case *array.BooleanBuilder:
			fb.Append(cell.Bool)
		case *array.Int64Builder:
			fb.Append(cell.Int)
		case *array.Float64Builder:
			fb.Append(cell.Float)
		case *array.StringBuilder:
			fb.Append(cell.Str)
		default:
			return sorerrors.Newf(sorerrors.ErrorTypeInternal, "unsupported Arrow builder %T", b)
		}
	}
	return nil
}
