package config

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/directdict/internal/field"
)

// Validate checks the definition file for missing or malformed settings.
// Returns all errors found (does not fail-fast). Structural rules such as
// duplicate column names are checked later by structure.Validate.
func (f *File) Validate() ValidationErrors {
	var errs ValidationErrors
	add := func(fieldPath, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: fieldPath, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if f.Name == "" {
		add("name", ErrMissingField, "name is required")
	}
	if f.Layout == "" {
		add("layout", ErrMissingField, "layout is required")
	}
	if f.UUID != "" {
		if _, err := uuid.Parse(f.UUID); err != nil {
			add("uuid", ErrInvalidUUID, "%v", err)
		}
	}

	checkType := func(fieldPath, name string, required bool) {
		if name == "" {
			if required {
				add(fieldPath, ErrMissingField, "type is required")
			}
			return
		}
		if _, err := field.ParseType(name); err != nil {
			add(fieldPath, ErrUnknownType, "%v", err)
		}
	}

	st := f.Structure
	if st.ID != nil {
		checkType("structure.id.type", st.ID.Type, false)
	}
	for i, k := range st.Key {
		checkType(fmt.Sprintf("structure.key[%d].type", i), k.Type, true)
	}
	if st.RangeMin != nil {
		checkType("structure.range_min.type", st.RangeMin.Type, false)
	}
	if st.RangeMax != nil {
		checkType("structure.range_max.type", st.RangeMax.Type, false)
	}
	for i, a := range st.Attributes {
		checkType(fmt.Sprintf("structure.attributes[%d].type", i), a.Type, true)
	}

	kinds := f.Source.Kinds()
	if len(kinds) != 1 {
		add("source", ErrSourceCount, "exactly one source is required, got %d %v", len(kinds), kinds)
		return errs
	}

	src := f.Source
	switch kinds[0] {
	case SourceSQLite:
		if src.SQLite.Path == "" {
			add("source.sqlite.path", ErrInvalidSource, "path is required")
		}
		if src.SQLite.Table == "" {
			add("source.sqlite.table", ErrInvalidSource, "table is required")
		}
	case SourcePostgres, SourceMySQL:
		spec := src.Postgres
		if spec == nil {
			spec = src.MySQL
		}
		if spec.DSN == "" {
			add("source."+kinds[0]+".dsn", ErrInvalidSource, "dsn is required")
		}
		if spec.Table == "" {
			add("source."+kinds[0]+".table", ErrInvalidSource, "table is required")
		}
	case SourceBolt:
		if src.Bolt.Path == "" {
			add("source.bolt.path", ErrInvalidSource, "path is required")
		}
		if src.Bolt.Bucket == "" {
			add("source.bolt.bucket", ErrInvalidSource, "bucket is required")
		}
	case SourceMemory:
		width := len(st.Key) + len(st.Attributes)
		if st.ID != nil {
			width++
		}
		for i, row := range src.Memory.Rows {
			if len(row) != width {
				add(fmt.Sprintf("source.memory.rows[%d]", i), ErrInvalidRow, "row has %d values, expected %d", len(row), width)
			}
		}
	}
	return errs
}
