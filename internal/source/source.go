// Package source loads datasets from frames, files and SQL databases.
//
// A source is one of:
//
//   - a gota dataframe.DataFrame or a *table.Table (used as-is)
//   - a path to a delimited or columnar file, optionally compressed
//   - a database URL whose scheme is in the supported dialect list
//
// A query given with a file or frame source is applied after loading as a
// row filter over the table "data". A database source requires a query; it
// runs on the database and its result becomes the dataset.
package source

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-gota/gota/dataframe"

	"github.com/ArashLab/caplot/internal/errs"
	"github.com/ArashLab/caplot/internal/query"
	"github.com/ArashLab/caplot/internal/table"
)

// Loader turns sources into tables.
type Loader struct {
	engine *query.Engine
	logger *slog.Logger
}

// NewLoader creates a Loader that applies post-load queries with engine.
// A nil logger uses slog.Default().
func NewLoader(engine *query.Engine, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil {
		engine = query.NewEngine(logger)
	}
	return &Loader{engine: engine, logger: logger}
}

// Load reads src and returns it as a freshly indexed Table.
//
// Errors:
//   - UNSUPPORTED_SOURCE when src is not a frame, table, file path or
//     supported database URL, or when the file suffix is unknown
//   - MISSING_QUERY when src is a database URL and q is empty
//   - QUERY when q fails against the loaded data
func (l *Loader) Load(ctx context.Context, src any, q string) (*table.Table, error) {
	var (
		t   *table.Table
		err error
	)
	switch s := src.(type) {
	case dataframe.DataFrame:
		t, err = table.New(s)
	case *dataframe.DataFrame:
		if s == nil {
			return nil, errs.New(errs.CodeUnsupportedSource, "nil data frame")
		}
		t, err = table.New(*s)
	case *table.Table:
		if s == nil {
			return nil, errs.New(errs.CodeUnsupportedSource, "nil table")
		}
		// Re-index so identifiers always start at zero after a load.
		t, err = table.New(s.Frame())
	case string:
		if IsDatabaseURL(s) {
			if strings.TrimSpace(q) == "" {
				return nil, errs.New(errs.CodeMissingQuery, "a query is required when loading from a database").
					With("source", redact(s))
			}
			return l.loadDatabase(ctx, s, q)
		}
		if strings.Contains(s, "://") {
			return nil, errs.New(errs.CodeUnsupportedSource, "unsupported database dialect").
				With("source", redact(s))
		}
		t, err = l.loadFile(s)
	default:
		return nil, errs.New(errs.CodeUnsupportedSource, "unsupported source type %T", src)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Debug("source loaded", "rows", t.Len(), "columns", len(t.Names()))
	if strings.TrimSpace(q) == "" {
		return t, nil
	}
	return l.engine.Select(ctx, t, q)
}
