package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sadopc/worktime/internal/calendar"
	"github.com/sadopc/worktime/internal/statelog"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Runtime failure (unreadable log, storage error, etc.)
	ExitCommandError = 2 // Command error (bad flags, invalid range, etc.)
)

// Error codes reported in CLI errors.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeConfig        = "E002" // Config could not be loaded
	ErrCodeStorage       = "E003" // Log or database I/O failed
	ErrCodeInvalidArgs   = "E004" // Invalid flag or argument
	ErrCodeInvalidRange  = "E005" // Range start is not before its end
	ErrCodeFutureRewrite = "E006" // Rewrite reaches into the future
	ErrCodeCorruptLog    = "E007" // Transition log line could not be parsed
	ErrCodeSampler       = "E008" // Sampler could not be built
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // Reported error code (optional, derived from Err when empty)
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
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
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
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format. Text output
// prints data with fmt, so result types implement fmt.Stringer.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
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

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// classify maps an error to its CLI error code and exit code.
func classify(err error) (code string, exit int) {
	var exitErr *ExitError
	hasExit := errors.As(err, &exitErr)
	switch {
	case hasExit && exitErr.ErrCode != "":
		return exitErr.ErrCode, exitErr.Code
	case errors.Is(err, statelog.ErrInvalidRange):
		return ErrCodeInvalidRange, ExitCommandError
	case errors.Is(err, statelog.ErrFutureRewrite):
		return ErrCodeFutureRewrite, ExitCommandError
	case errors.Is(err, calendar.ErrFuture):
		return ErrCodeInvalidArgs, ExitCommandError
	case statelog.IsParseError(err):
		return ErrCodeCorruptLog, ExitFailure
	case statelog.IsIOError(err), errors.Is(err, statelog.ErrOutOfOrder):
		return ErrCodeStorage, ExitFailure
	case hasExit && exitErr.Code == ExitCommandError:
		return ErrCodeInvalidArgs, ExitCommandError
	case hasExit:
		return ErrCodeGeneric, exitErr.Code
	}
	return ErrCodeGeneric, ExitFailure
}

// invalidArgs is a command error caused by a bad flag or argument.
func invalidArgs(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeInvalidArgs, Message: fmt.Sprintf(format, args...)}
}
