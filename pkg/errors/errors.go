// Package errors provides structured error handling for the chart
// interaction packages.
//
// Nothing in the interaction core performs I/O, so errors fall into two
// groups: usage errors, which are programmer mistakes surfaced immediately
// (typically by panicking with a [*UsageError]), and reported errors, which are
// routed to the global [ErrorHandler] so a broken listener or configuration
// file degrades the chart instead of crashing the process.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUsage indicates an API misuse, such as reading a store outside its provider.
	KindUsage
	// KindConfig indicates an invalid or unreadable configuration.
	KindConfig
	// KindGeometry indicates unusable geometry such as a zero-size plot.
	KindGeometry
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindConfig:
		return "config"
	case KindGeometry:
		return "geometry"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ChartError represents a structured error reported by the chart packages.
type ChartError struct {
	// Op is the operation that failed (e.g., "config.Load").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ChartError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "interaction.flush").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// UsageError reports a programmer error. Functions documented as panicking on
// misuse panic with a *UsageError.
type UsageError struct {
	// Op is the function that was misused.
	Op string
	// Message describes the misuse and how to fix it.
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Wrap returns a ChartError of the given kind wrapping err, or nil if err is nil.
func Wrap(op string, kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	return &ChartError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// ErrorHandler receives errors reported by the chart packages.
type ErrorHandler interface {
	// HandleError is called when an error is reported.
	HandleError(err *ChartError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
