package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/komaplan/internal/logger"
)

var (
	// ErrValidation marks bad user input. Messages are shown to the user verbatim.
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable marks a missing collaborator (schedule sheet, report sheet, store).
	ErrUnavailable = errors.New("collaborator unavailable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Validation returns an error matching ErrValidation whose message is exactly the formatted text.
func Validation(format string, args ...interface{}) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Unavailable returns an error matching ErrUnavailable.
func Unavailable(format string, args ...interface{}) error {
	return &kindError{kind: ErrUnavailable, msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err was raised by input validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable reports whether err signals a missing collaborator.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
