package source

import (
	"fmt"

	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
)

// Table is a set of rows laid out in structure column order, with key
// columns first. Sources use it to build the blocks they emit.
type Table struct {
	names   []string
	types   []field.Type
	columns []column.Mutable
}

// NewTable creates an empty table for s.
func NewTable(s *structure.Structure) (*Table, error) {
	names := s.ColumnNames()
	types := s.KeyTypes()
	for _, attr := range s.Attributes {
		types = append(types, attr.Type)
	}

	t := &Table{names: names, types: types, columns: make([]column.Mutable, len(names))}
	for i, typ := range types {
		col, err := column.New(typ, 0)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", names[i], err)
		}
		t.columns[i] = col
	}
	return t, nil
}

// Append adds one row. Values are converted to the column types; the table
// is left unchanged when any value fails.
func (t *Table) Append(row []field.Value) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d values, expected %d (%v)", len(row), len(t.columns), t.names)
	}
	converted := make([]field.Value, len(row))
	for i, v := range row {
		c, err := t.types[i].Convert(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", t.names[i], err)
		}
		converted[i] = c
	}
	for i, v := range converted {
		if err := t.columns[i].Append(v); err != nil {
			return fmt.Errorf("column %q: %w", t.names[i], err)
		}
	}
	return nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int {
	return t.columns[0].Len()
}

// Names returns the column names.
func (t *Table) Names() []string {
	return t.names
}

// Column returns column i.
func (t *Table) Column(i int) column.Column {
	return t.columns[i]
}

// Blocks copies the given rows, in order, into blocks of at most size rows.
func (t *Table) Blocks(rows []int, size int) ([]*column.Block, error) {
	if size <= 0 {
		size = len(rows)
	}
	var blocks []*column.Block
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		cols := make([]column.Column, len(t.columns))
		for i, src := range t.columns {
			dst, err := column.New(t.types[i], end-start)
			if err != nil {
				return nil, err
			}
			for _, r := range rows[start:end] {
				if err := dst.Append(src.Value(r)); err != nil {
					return nil, err
				}
			}
			cols[i] = dst
		}
		b, err := column.NewBlock(t.names, cols)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Block returns the whole table as one block without copying.
func (t *Table) Block() (*column.Block, error) {
	cols := make([]column.Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c
	}
	return column.NewBlock(t.names, cols)
}
