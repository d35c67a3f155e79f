package source

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/apache/arrow/go/v7/arrow"
	"github.com/apache/arrow/go/v7/arrow/array"
	"github.com/apache/arrow/go/v7/arrow/ipc"
	"github.com/apache/arrow/go/v7/arrow/memory"
	"github.com/apache/arrow/go/v7/parquet"
	"github.com/apache/arrow/go/v7/parquet/pqarrow"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// columnBuilder accumulates an Arrow column as gota records.
type columnBuilder struct {
	name    string
	typ     series.Type
	records []string
}

// readArrow reads an Arrow IPC file (Feather v2) into a DataFrame.
func readArrow(r *bytes.Reader) (dataframe.DataFrame, error) {
	fr, err := ipc.NewFileReader(r, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open arrow file: %w", err)
	}
	defer fr.Close()

	builders, err := newBuilders(fr.Schema())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("read record batch %d: %w", i, err)
		}
		if err := appendRecord(builders, rec); err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return buildFrame(builders), nil
}

// readParquet reads a Parquet file into a DataFrame via its Arrow form.
func readParquet(r *bytes.Reader) (dataframe.DataFrame, error) {
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), r, parquet.NewReaderProperties(mem),
		pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open parquet file: %w", err)
	}
	defer tbl.Release()

	builders, err := newBuilders(tbl.Schema())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	tr := array.NewTableReader(tbl, 64*1024)
	defer tr.Release()
	for tr.Next() {
		if err := appendRecord(builders, tr.Record()); err != nil {
			return dataframe.DataFrame{}, err
		}
	}
	return buildFrame(builders), nil
}

func newBuilders(schema *arrow.Schema) ([]*columnBuilder, error) {
	builders := make([]*columnBuilder, len(schema.Fields()))
	for i, field := range schema.Fields() {
		typ, err := seriesType(field.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", field.Name, err)
		}
		builders[i] = &columnBuilder{name: field.Name, typ: typ}
	}
	return builders, nil
}

func seriesType(dt arrow.DataType) (series.Type, error) {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32:
		return series.Int, nil
	case arrow.UINT64, arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return series.Float, nil
	case arrow.BOOL:
		return series.Bool, nil
	case arrow.STRING, arrow.BINARY:
		return series.String, nil
	default:
		return "", fmt.Errorf("unsupported arrow type %s", dt)
	}
}

func appendRecord(builders []*columnBuilder, rec arrow.Record) error {
	if int(rec.NumCols()) != len(builders) {
		return fmt.Errorf("record batch has %d columns, schema has %d", rec.NumCols(), len(builders))
	}
	for c, b := range builders {
		col := rec.Column(c)
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				b.records = append(b.records, "NaN")
				continue
			}
			v, err := cellText(col, i)
			if err != nil {
				return fmt.Errorf("column %q: %w", b.name, err)
			}
			b.records = append(b.records, v)
		}
	}
	return nil
}

func cellText(col arrow.Array, i int) (string, error) {
	switch a := col.(type) {
	case *array.Int8:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int16:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10), nil
	case *array.Uint8:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Uint16:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Uint32:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Uint64:
		return strconv.FormatUint(a.Value(i), 10), nil
	case *array.Float16:
		return strconv.FormatFloat(float64(a.Value(i).Float32()), 'g', -1, 32), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'g', -1, 32), nil
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'g', -1, 64), nil
	case *array.Boolean:
		return strconv.FormatBool(a.Value(i)), nil
	case *array.String:
		return a.Value(i), nil
	case *array.Binary:
		return string(a.Value(i)), nil
	default:
		return "", fmt.Errorf("unsupported arrow array %T", col)
	}
}

func buildFrame(builders []*columnBuilder) dataframe.DataFrame {
	cols := make([]series.Series, len(builders))
	for i, b := range builders {
		records := b.records
		if records == nil {
			records = []string{}
		}
		cols[i] = series.New(records, b.typ, b.name)
	}
	return dataframe.New(cols...)
}
