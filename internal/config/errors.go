package config

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/token"
)

// ConfigError is a parse error with an optional source position.
type ConfigError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation error codes (E200-E299)
const (
	ErrMissingField  = "E201" // required field is empty
	ErrUnknownType   = "E202" // column type is not a known type name
	ErrSourceCount   = "E203" // zero or several sources configured
	ErrInvalidSource = "E204" // source settings incomplete
	ErrInvalidUUID   = "E205" // uuid does not parse
	ErrInvalidRow    = "E206" // memory row has the wrong width
)

// ValidationError is one problem found in a definition.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found in a definition.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
