// Package errs defines the error taxonomy shared by every caplot component.
//
// All failures surfaced to callers are *Error values carrying a Code. Callers
// test for a category with Is (or one of the named predicates), which uses
// errors.As and therefore sees through fmt.Errorf("%w") wrapping.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes caplot errors.
type Code string

const (
	// CodeUnsupportedSource indicates a source that is neither a table, a
	// readable file, nor a supported database URL.
	CodeUnsupportedSource Code = "UNSUPPORTED_SOURCE"

	// CodeMissingQuery indicates a database source given without a query.
	CodeMissingQuery Code = "MISSING_QUERY"

	// CodeQuery indicates malformed or unresolvable SQL.
	CodeQuery Code = "QUERY"

	// CodeUnknownContig indicates a contig absent from the reference genome.
	CodeUnknownContig Code = "UNKNOWN_CONTIG"

	// CodeInvalidValue indicates a data value the chart cannot plot,
	// for example a non-positive p-value under a logarithm.
	CodeInvalidValue Code = "INVALID_VALUE"

	// CodeInsufficientPalette indicates a palette with too few distinct colors.
	CodeInsufficientPalette Code = "INSUFFICIENT_PALETTE"

	// CodeInvalidSubplotSpec indicates subplots that are neither a list of
	// column names nor a list of column pairs.
	CodeInvalidSubplotSpec Code = "INVALID_SUBPLOT_SPEC"

	// CodeUnsupportedExportFormat indicates an unknown export file suffix.
	CodeUnsupportedExportFormat Code = "UNSUPPORTED_EXPORT_FORMAT"

	// CodeRemoteService indicates a non-success response from the
	// annotation service.
	CodeRemoteService Code = "REMOTE_SERVICE"

	// CodeInvalidOption indicates a chart option that failed validation.
	CodeInvalidOption Code = "INVALID_OPTION"

	// CodeUnknownColumn indicates a reference to a column the dataset lacks.
	CodeUnknownColumn Code = "UNKNOWN_COLUMN"

	// CodeNoData indicates an operation that needs a dataset before one was loaded.
	CodeNoData Code = "NO_DATA"
)

// Error is the structured error returned by caplot operations.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Details contains additional context (column names, queries, suffixes).
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%s", k, e.Details[k])
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code around an underlying cause.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// With returns the error with an added detail entry.
func (e *Error) With(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsUnsupportedSource reports whether err is an unsupported-source error.
func IsUnsupportedSource(err error) bool { return Is(err, CodeUnsupportedSource) }

// IsMissingQuery reports whether err is a missing-query error.
func IsMissingQuery(err error) bool { return Is(err, CodeMissingQuery) }

// IsQueryError reports whether err is a query error.
func IsQueryError(err error) bool { return Is(err, CodeQuery) }

// IsUnknownContig reports whether err is an unknown-contig error.
func IsUnknownContig(err error) bool { return Is(err, CodeUnknownContig) }

// IsInvalidValue reports whether err is an invalid-value error.
func IsInvalidValue(err error) bool { return Is(err, CodeInvalidValue) }

// IsInsufficientPalette reports whether err is an insufficient-palette error.
func IsInsufficientPalette(err error) bool { return Is(err, CodeInsufficientPalette) }

// IsInvalidSubplotSpec reports whether err is an invalid-subplot-spec error.
func IsInvalidSubplotSpec(err error) bool { return Is(err, CodeInvalidSubplotSpec) }

// IsUnsupportedExportFormat reports whether err is an unsupported-export-format error.
func IsUnsupportedExportFormat(err error) bool { return Is(err, CodeUnsupportedExportFormat) }

// IsRemoteService reports whether err is a remote-service error.
func IsRemoteService(err error) bool { return Is(err, CodeRemoteService) }

// NewQueryError creates a QUERY error for the given SQL text.
func NewQueryError(query string, err error) *Error {
	return Wrap(CodeQuery, err, "query failed").With("query", query)
}

// NewUnknownColumnError creates an UNKNOWN_COLUMN error.
func NewUnknownColumnError(column string) *Error {
	return New(CodeUnknownColumn, "no column named %q in data", column).With("column", column)
}

// NewInsufficientPaletteError creates an INSUFFICIENT_PALETTE error.
func NewInsufficientPaletteError(palette string, have, need int) *Error {
	return New(CodeInsufficientPalette,
		"palette %q does not have enough distinct colors (%d < %d)", palette, have, need).
		With("palette", palette)
}
