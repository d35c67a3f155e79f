// Package query evaluates SQL against an in-memory dataset.
//
// A query sees the dataset as a single table named "data" whose columns are
// the dataset's columns plus "index", the row identifier:
//
//	SELECT * FROM data WHERE pvalue < 5e-8
//	SELECT "index" FROM data WHERE "PC1" > 0 AND cohort = 'A'
//
// # Evaluation
//
//   - The table is copied into a private SQLite ":memory:" database
//     (mattn/go-sqlite3) with parameterized inserts, one transaction.
//   - Only a single SELECT (or WITH ... SELECT) statement is accepted.
//   - Every failure is an errs.CodeQuery error carrying the query text.
//
// Rows returns the identifiers a query selects (used for filter and
// highlight subsets); Select returns the full result as a new dataset (used
// for load-time filters). ScanRows is shared with database sources.
package query
