package sqlsource

import (
	"context"
	"fmt"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
)

// DefaultMaxParams bounds the bind parameters of one keyed query. It stays
// under SQLite's historical limit of 999.
const DefaultMaxParams = 900

// Config describes the table a Source reads.
type Config struct {
	// Table is the table name.
	Table string

	// Where is an extra SQL condition ANDed into every query. It is trusted
	// configuration and is not parameterized.
	Where string

	// BlockSize is the maximum number of rows per emitted block.
	BlockSize int

	// MaxParams bounds the bind parameters per keyed query.
	MaxParams int
}

// Source is a source.Source over a SQL table whose column names match the
// dictionary structure.
type Source struct {
	db        *DB
	structure *structure.Structure
	cfg       Config
	qb        queryBuilder
}

var _ source.Source = (*Source)(nil)

// New creates a Source reading cfg.Table through db.
func New(db *DB, s *structure.Structure, cfg Config) (*Source, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = source.DefaultBlockSize
	}
	if cfg.MaxParams <= 0 {
		cfg.MaxParams = DefaultMaxParams
	}
	qb, err := newQueryBuilder(db.dialect, cfg.Table, s.ColumnNames(), len(s.KeyNames()), cfg.Where)
	if err != nil {
		return nil, err
	}
	return &Source{db: db, structure: s, cfg: cfg, qb: qb}, nil
}

// LoadAll streams every row ordered by key.
func (s *Source) LoadAll(ctx context.Context) (source.Stream, error) {
	rows, err := s.db.Query(ctx, s.qb.selectAll())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.cfg.Table, err)
	}
	return &rowsStream{src: s, rows: rows}, nil
}

// LoadIDs returns the rows for ids in request order.
func (s *Source) LoadIDs(ctx context.Context, ids []uint64) (source.Stream, error) {
	if s.structure.IsComposite() {
		return nil, fmt.Errorf("table %s has a composite key, cannot load by id", s.cfg.Table)
	}

	requested := make([][]field.Value, len(ids))
	for i, id := range ids {
		requested[i] = []field.Value{field.UInt64(id)}
	}
	return s.loadKeyed(ctx, requested)
}

// LoadKeys returns the rows for the composite keys at the given rows of
// keyColumns, in request order.
func (s *Source) LoadKeys(ctx context.Context, keyColumns []column.Column, rows []int) (source.Stream, error) {
	if len(keyColumns) != s.qb.keys {
		return nil, fmt.Errorf("table %s expects %d key columns, got %d", s.cfg.Table, s.qb.keys, len(keyColumns))
	}

	requested := make([][]field.Value, len(rows))
	for i, r := range rows {
		key := make([]field.Value, len(keyColumns))
		for k, col := range keyColumns {
			key[k] = col.Value(r)
		}
		requested[i] = key
	}
	return s.loadKeyed(ctx, requested)
}

// loadKeyed fetches the requested keys in chunks and emits the rows found in
// request order.
func (s *Source) loadKeyed(ctx context.Context, requested [][]field.Value) (source.Stream, error) {
	found := make(map[string][]field.Value)
	a := arena.New(0)
	defer a.Release()

	chunk := max(1, s.cfg.MaxParams/s.qb.keys)
	for start := 0; start < len(requested); start += chunk {
		end := min(start+chunk, len(requested))
		if err := s.fetch(ctx, a, requested[start:end], found); err != nil {
			return nil, err
		}
	}

	table, err := source.NewTable(s.structure)
	if err != nil {
		return nil, err
	}
	for _, key := range requested {
		k, err := s.keyOf(a, key)
		if err != nil {
			return nil, err
		}
		if row, ok := found[k]; ok {
			if err := table.Append(row); err != nil {
				return nil, err
			}
		}
	}

	all := make([]int, table.Rows())
	for i := range all {
		all[i] = i
	}
	blocks, err := table.Blocks(all, s.cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	return source.NewSliceStream(blocks...), nil
}

func (s *Source) fetch(ctx context.Context, a *arena.Arena, keys [][]field.Value, found map[string][]field.Value) error {
	var query string
	if s.qb.keys == 1 {
		query = s.qb.selectIDs(len(keys))
	} else {
		query = s.qb.selectKeys(len(keys))
	}

	args := make([]any, 0, len(keys)*s.qb.keys)
	for _, key := range keys {
		for _, v := range key {
			args = append(args, bindValue(v))
		}
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query %s: %w", s.cfg.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		row, ok, err := s.scan(rows)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		k, err := s.keyOf(a, row[:s.qb.keys])
		if err != nil {
			return err
		}
		if _, dup := found[k]; !dup {
			found[k] = row
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate %s: %w", s.cfg.Table, err)
	}
	return nil
}

// SupportsSelectiveLoad is always true.
func (s *Source) SupportsSelectiveLoad() bool {
	return true
}

// Clone returns a Source sharing the database handle.
func (s *Source) Clone() source.Source {
	c := *s
	return &c
}

func (s *Source) String() string {
	return fmt.Sprintf("%s(table=%s)", s.db.dialect, s.cfg.Table)
}

// keyOf serializes key into a the way the dictionary compares keys: raw
// bytes per key type, strings unnormalized.
func (s *Source) keyOf(a *arena.Arena, key []field.Value) (string, error) {
	types := s.structure.KeyTypes()
	for i, v := range key {
		col, err := column.FromValues(types[i], []field.Value{v})
		if err != nil {
			a.Rollback()
			return "", fmt.Errorf("encode key: %w", err)
		}
		col.SerializeValueIntoArena(0, a)
	}
	return string(a.Bytes(a.Seal())), nil
}

// bindValue converts a value to a driver argument.
func bindValue(v field.Value) any {
	if u, ok := v.(field.UInt64); ok && uint64(u) <= 1<<63-1 {
		return int64(u)
	}
	return field.ToAny(v)
}
