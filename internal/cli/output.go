package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ArashLab/caplot/internal/errs"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The chart could not be produced from the data (query, contig, palette, service errors)
	ExitCommandError = 2 // Command error (bad flags, unsupported source or format, invalid options)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Error code constants reported in CLI output.
const (
	ErrCodeGeneric                 = "E001" // Generic/unknown error
	ErrCodeUnsupportedSource       = "E201"
	ErrCodeMissingQuery            = "E202"
	ErrCodeQuery                   = "E203"
	ErrCodeUnknownContig           = "E204"
	ErrCodeInvalidValue            = "E205"
	ErrCodeInsufficientPalette     = "E206"
	ErrCodeInvalidSubplotSpec      = "E207"
	ErrCodeUnsupportedExportFormat = "E208"
	ErrCodeRemoteService           = "E209"
	ErrCodeInvalidOption           = "E210"
	ErrCodeUnknownColumn           = "E211"
	ErrCodeNoData                  = "E212"
)

var errorCodes = map[errs.Code]string{
	errs.CodeUnsupportedSource:       ErrCodeUnsupportedSource,
	errs.CodeMissingQuery:            ErrCodeMissingQuery,
	errs.CodeQuery:                   ErrCodeQuery,
	errs.CodeUnknownContig:           ErrCodeUnknownContig,
	errs.CodeInvalidValue:            ErrCodeInvalidValue,
	errs.CodeInsufficientPalette:     ErrCodeInsufficientPalette,
	errs.CodeInvalidSubplotSpec:      ErrCodeInvalidSubplotSpec,
	errs.CodeUnsupportedExportFormat: ErrCodeUnsupportedExportFormat,
	errs.CodeRemoteService:           ErrCodeRemoteService,
	errs.CodeInvalidOption:           ErrCodeInvalidOption,
	errs.CodeUnknownColumn:           ErrCodeUnknownColumn,
	errs.CodeNoData:                  ErrCodeNoData,
}

// MapErrorCode returns the CLI error code for err.
func MapErrorCode(err error) string {
	if code, ok := errorCodes[errs.CodeOf(err)]; ok {
		return code
	}
	return ErrCodeGeneric
}

// exitCodeFor classifies err: mistakes in the invocation are command
// errors, everything else is a failure.
func exitCodeFor(err error) int {
	switch errs.CodeOf(err) {
	case errs.CodeUnsupportedSource, errs.CodeMissingQuery, errs.CodeInvalidOption,
		errs.CodeInvalidSubplotSpec, errs.CodeUnsupportedExportFormat:
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E001", "E201", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error) error {
	code := MapErrorCode(err)
	message := err.Error()
	var details interface{}
	var e *errs.Error
	if errors.As(err, &e) {
		message = e.Message
		if e.Err != nil {
			message = fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		if len(e.Details) > 0 {
			details = detailMap(e.Details)
		}
	}
	_ = f.Error(code, message, details)
	return WrapExitError(exitCodeFor(err), code, err)
}

// detailMap prints as "k=v" pairs in key order in text output.
type detailMap map[string]string

func (d detailMap) String() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + d[k]
	}
	return strings.Join(parts, " ")
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
