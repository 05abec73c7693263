package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/directdict/internal/config"
)

// LoadError represents an error that occurred while loading a definition.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
// Dictionary errors keep their own codes (TYPE_MISMATCH, BAD_ARGUMENTS, ...).
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeLoadFailed   = "E004" // Definition parse failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeInvalid      = "E006" // Definition failed validation
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeInvalidInput = "E008" // Malformed flag value
	ErrCodeOpenFailed   = "E009" // Source or dictionary creation failed
)

// LoadDefinition reads a YAML or CUE dictionary definition.
func LoadDefinition(path string) (*config.File, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definition not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definition: %v", err)}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a file: %s", path)}
	}

	f, err := config.Load(path)
	if err != nil {
		return nil, convertConfigError(err)
	}
	return f, nil
}

// openDictionary loads the definition at path and creates its dictionary.
// Every failure is a *LoadError.
func openDictionary(ctx context.Context, path string) (*config.Handle, error) {
	f, err := LoadDefinition(path)
	if err != nil {
		return nil, err
	}
	handle, err := f.Open(ctx)
	if err != nil {
		return nil, convertOpenError(err)
	}
	return handle, nil
}

// convertConfigError converts a parse error to a LoadError with position info.
func convertConfigError(err error) *LoadError {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", cfgErr.Field, cfgErr.Message),
			Pos:     cfgErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

func convertOpenError(err error) *LoadError {
	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		return &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeOpenFailed, Message: err.Error()}
}
