// Package dicterr defines the typed errors reported by dictionary lookups and
// layout creation.
package dicterr

import (
	"errors"
	"fmt"
)

// Code categorizes dictionary errors.
type Code string

const (
	// TypeMismatch indicates a key or result column of the wrong type.
	TypeMismatch Code = "TYPE_MISMATCH"

	// UnsupportedMethod indicates an operation or source capability the
	// layout cannot provide.
	UnsupportedMethod Code = "UNSUPPORTED_METHOD"

	// BadArguments indicates an invalid definition or call argument.
	BadArguments Code = "BAD_ARGUMENTS"
)

// Error is a categorized dictionary failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Dictionary is the full name of the affected dictionary, if known.
	Dictionary string

	// Layout is the layout name, if known.
	Layout string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Dictionary != "" && e.Layout != "":
		return fmt.Sprintf("%s: %s (dictionary=%s, layout=%s)", e.Code, e.Message, e.Dictionary, e.Layout)
	case e.Dictionary != "":
		return fmt.Sprintf("%s: %s (dictionary=%s)", e.Code, e.Message, e.Dictionary)
	case e.Layout != "":
		return fmt.Sprintf("%s: %s (layout=%s)", e.Code, e.Message, e.Layout)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// In returns a copy of e annotated with a dictionary and layout.
func (e *Error) In(dictionary, layout string) *Error {
	c := *e
	c.Dictionary = dictionary
	c.Layout = layout
	return &c
}

// Is reports whether err or anything it wraps is an Error with the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the first Error in err's chain, or "".
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
