package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

// decodeCUE unifies data with #Dictionary, requires a concrete result and
// decodes it through its JSON export.
func decodeCUE(data []byte, filename string) (*File, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile definition schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Dictionary"))

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	exported, err := unified.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var f File
	dec := json.NewDecoder(bytes.NewReader(exported))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode CUE definition: %w", err)
	}
	return &f, nil
}

// formatCUEError converts a CUE error into a ConfigError carrying the first
// position CUE reports.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &ConfigError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return &ConfigError{Field: "cue", Message: firstErr.Error()}
}
