package query

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/series"

	"github.com/ArashLab/caplot/internal/table"
)

// numericTypes lists database type names whose values some drivers return as
// text but which should be read as numbers.
var numericTypes = map[string]series.Type{
	"NUMERIC": series.Float,
	"DECIMAL": series.Float,
	"FLOAT4":  series.Float,
	"FLOAT8":  series.Float,
	"REAL":    series.Float,
	"DOUBLE":  series.Float,
	"INT2":    series.Int,
	"INT4":    series.Int,
	"INT8":    series.Int,
	"INTEGER": series.Int,
	"BIGINT":  series.Int,
}

// ScanRows reads every row of rows into a Table.
//
// Column types come from hints when a result column has the same name as a
// hinted column; otherwise they are inferred from the scanned values.
// Callers are responsible for closing rows.
func ScanRows(rows *sql.Rows, hints map[string]series.Type) (*table.Table, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}
	dbTypes := make([]string, len(names))
	if cts, err := rows.ColumnTypes(); err == nil {
		for i, ct := range cts {
			dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
		}
	}

	values := make([][]any, len(names))
	dest := make([]any, len(names))
	for i := range dest {
		dest[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i := range dest {
			v := *dest[i].(*any)
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			values[i] = append(values[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	cols := make([]series.Series, len(names))
	for i, name := range names {
		typ, ok := hints[name]
		if !ok {
			typ = inferType(values[i], dbTypes[i])
		}
		cols[i] = series.New(records(values[i], typ), typ, name)
	}
	return table.FromColumns(cols...)
}

// inferType picks the narrowest gota type that holds every non-NULL value.
func inferType(values []any, dbType string) series.Type {
	if typ, ok := numericTypes[dbType]; ok {
		return typ
	}
	var sawInt, sawFloat, sawBool, sawText bool
	for _, v := range values {
		switch v.(type) {
		case nil:
		case int64, int32, int:
			sawInt = true
		case float64, float32:
			sawFloat = true
		case bool:
			sawBool = true
		default:
			sawText = true
		}
	}
	switch {
	case sawText:
		return series.String
	case sawBool && !sawInt && !sawFloat:
		return series.Bool
	case sawFloat:
		return series.Float
	case sawInt:
		return series.Int
	case sawBool:
		return series.Int
	default:
		return series.String
	}
}

// records formats scanned values as gota records. NULL becomes "NaN",
// which gota reads back as a missing value.
func records(values []any, typ series.Type) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch val := v.(type) {
		case nil:
			out[i] = "NaN"
		case int64:
			if typ == series.Bool {
				out[i] = strconv.FormatBool(val != 0)
			} else {
				out[i] = strconv.FormatInt(val, 10)
			}
		case int32:
			out[i] = strconv.FormatInt(int64(val), 10)
		case int:
			out[i] = strconv.Itoa(val)
		case float64:
			out[i] = strconv.FormatFloat(val, 'g', -1, 64)
		case float32:
			out[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
		case bool:
			if typ == series.Bool {
				out[i] = strconv.FormatBool(val)
			} else if val {
				out[i] = "1"
			} else {
				out[i] = "0"
			}
		case time.Time:
			out[i] = val.Format(time.RFC3339Nano)
		case string:
			out[i] = val
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}
