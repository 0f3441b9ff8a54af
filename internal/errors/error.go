package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/vcell/pkg/app"
	"github.com/vango-dev/vcell/pkg/signal"
	"github.com/vango-dev/vcell/pkg/store"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryStore    Category = "store"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// CellError is a structured error with a code, suggestion, and
// documentation link.
type CellError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *CellError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *CellError) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *CellError) WithSuggestion(s string) *CellError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *CellError) WithDetail(d string) *CellError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *CellError) Wrap(err error) *CellError {
	e.Wrapped = err
	return e
}

// New creates a CellError from a registered error code.
func New(code string) *CellError {
	template, ok := registry[code]
	if !ok {
		return &CellError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &CellError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
		DocURL:     template.DocURL,
	}
}

// Newf creates a new CellError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *CellError {
	return &CellError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a CellError with the given code.
func FromError(err error, code string) *CellError {
	if err == nil {
		return nil
	}
	var ce *CellError
	if stderrors.As(err, &ce) {
		return ce
	}
	return New(code).Wrap(err)
}

// Classify picks the code for err from the sentinels it wraps. Errors
// that match nothing known become E099.
func Classify(err error) *CellError {
	if err == nil {
		return nil
	}
	var ce *CellError
	if stderrors.As(err, &ce) {
		return ce
	}
	switch {
	case stderrors.Is(err, signal.ErrUpdating):
		return New(CodeUpdating).Wrap(err)
	case stderrors.Is(err, signal.ErrUninitialized):
		return New(CodeUninitialized).Wrap(err)
	case stderrors.Is(err, app.ErrLoopStopped):
		return New(CodeLoopStopped).Wrap(err)
	case stderrors.Is(err, store.ErrDecode):
		return New(CodeStoreDecode).Wrap(err)
	case stderrors.Is(err, store.ErrClosed):
		return New(CodeStoreFailure).Wrap(err)
	default:
		return New(CodeInternal).Wrap(err)
	}
}
