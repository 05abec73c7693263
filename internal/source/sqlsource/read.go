package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
)

// scan reads the current row converted to structure types. ok is false when
// a key column is NULL.
func (s *Source) scan(rows *sql.Rows) ([]field.Value, bool, error) {
	raw := make([]any, len(s.qb.columns))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", s.cfg.Table, err)
	}

	types := s.structure.KeyTypes()
	out := make([]field.Value, len(raw))
	for i, v := range raw {
		if i < s.qb.keys {
			if v == nil {
				return nil, false, nil
			}
			key, err := field.FromAny(types[i], v)
			if err != nil {
				return nil, false, fmt.Errorf("column %q: %w", s.qb.columns[i], err)
			}
			out[i] = key
			continue
		}

		attr := s.structure.Attributes[i-s.qb.keys]
		if v == nil {
			out[i] = attr.NullValue
			continue
		}
		val, err := field.FromAny(attr.Type, v)
		if err != nil {
			return nil, false, fmt.Errorf("column %q: %w", attr.Name, err)
		}
		out[i] = val
	}
	return out, true, nil
}

// rowsStream turns an open result set into blocks of at most BlockSize rows.
type rowsStream struct {
	src  *Source
	rows *sql.Rows
	done bool
}

func (r *rowsStream) Read(ctx context.Context) (*column.Block, error) {
	if r.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := source.NewTable(r.src.structure)
	if err != nil {
		return nil, err
	}
	for table.Rows() < r.src.cfg.BlockSize {
		if !r.rows.Next() {
			r.done = true
			if err := r.rows.Err(); err != nil {
				return nil, fmt.Errorf("iterate %s: %w", r.src.cfg.Table, err)
			}
			break
		}
		row, ok, err := r.src.scan(r.rows)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := table.Append(row); err != nil {
			return nil, err
		}
	}

	if table.Rows() == 0 {
		return nil, io.EOF
	}
	return table.Block()
}

func (r *rowsStream) Close() error {
	r.done = true
	return r.rows.Close()
}
