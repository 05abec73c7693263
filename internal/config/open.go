package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/directdict/internal/direct"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/source/boltsource"
	"github.com/roach88/directdict/internal/source/sqlsource"
	"github.com/roach88/directdict/internal/structure"
)

// Handle is an opened dictionary together with the resources behind its source.
type Handle struct {
	Dictionary direct.Dictionary
	Definition direct.Definition

	closer io.Closer
}

// Close releases the source's database handle, if any.
func (h *Handle) Close() error {
	if h.closer == nil {
		return nil
	}
	err := h.closer.Close()
	h.closer = nil
	return err
}

type openOptions struct {
	factory  *direct.Factory
	gen      structure.IDGenerator
	dictOpts []direct.Option
	wrap     func(source.Source) source.Source
}

// OpenOption configures Open.
type OpenOption func(*openOptions)

// WithFactory creates the dictionary through f instead of the default factory.
func WithFactory(f *direct.Factory) OpenOption {
	return func(o *openOptions) {
		o.factory = f
	}
}

// WithIDGenerator sets the generator used when the file has no uuid.
func WithIDGenerator(gen structure.IDGenerator) OpenOption {
	return func(o *openOptions) {
		o.gen = gen
	}
}

// WithDictionaryOptions passes options through to the dictionary.
func WithDictionaryOptions(opts ...direct.Option) OpenOption {
	return func(o *openOptions) {
		o.dictOpts = append(o.dictOpts, opts...)
	}
}

// WithSourceWrapper wraps the source before the dictionary is created.
func WithSourceWrapper(wrap func(source.Source) source.Source) OpenOption {
	return func(o *openOptions) {
		o.wrap = wrap
	}
}

// Open loads the definition at path and creates its dictionary.
func Open(ctx context.Context, path string, opts ...OpenOption) (*Handle, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return f.Open(ctx, opts...)
}

// Open compiles the definition, opens its source and creates the dictionary.
func (f *File) Open(ctx context.Context, opts ...OpenOption) (*Handle, error) {
	o := openOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = direct.NewDefaultFactory()
	}

	def, err := f.Compile(o.gen)
	if err != nil {
		return nil, err
	}

	src, closer, err := f.OpenSource(def.Structure)
	if err != nil {
		return nil, err
	}
	if o.wrap != nil {
		src = o.wrap(src)
	}

	dict, err := o.factory.Create(def, src, o.dictOpts...)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	slog.DebugContext(ctx, "opened dictionary",
		"dictionary", def.ID.FullName(),
		"layout", def.Layout,
		"source", src.String())

	return &Handle{Dictionary: dict, Definition: def, closer: closer}, nil
}

// OpenSource builds the configured source for s. The returned closer is nil
// for sources that hold no external resources.
func (f *File) OpenSource(s *structure.Structure) (source.Source, io.Closer, error) {
	kinds := f.Source.Kinds()
	if len(kinds) != 1 {
		return nil, nil, fmt.Errorf("exactly one source is required, got %v", kinds)
	}

	switch kinds[0] {
	case SourceSQLite:
		spec := f.Source.SQLite
		path := f.resolve(spec.Path)
		if _, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("sqlite source: %w", err)
		}
		db, err := sqlsource.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return sqlSource(db, s, spec)
	case SourcePostgres:
		db, err := sqlsource.Open(sqlsource.Postgres, f.Source.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlSource(db, s, f.Source.Postgres)
	case SourceMySQL:
		db, err := sqlsource.Open(sqlsource.MySQL, f.Source.MySQL.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlSource(db, s, f.Source.MySQL)
	case SourceBolt:
		spec := f.Source.Bolt
		path := f.resolve(spec.Path)
		if _, err := os.Stat(path); err != nil {
			return nil, nil, fmt.Errorf("bolt source: %w", err)
		}
		db, err := boltsource.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return boltsource.New(db, spec.Bucket, s, spec.BlockSize), db, nil
	default:
		spec := f.Source.Memory
		rows, err := memoryRows(s, spec.Rows)
		if err != nil {
			return nil, nil, err
		}
		var opts []source.MemoryOption
		if spec.BlockSize > 0 {
			opts = append(opts, source.WithBlockSize(spec.BlockSize))
		}
		m, err := source.NewMemory(s, rows, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("memory source: %w", err)
		}
		return m, nil, nil
	}
}

func sqlSource(db *sqlsource.DB, s *structure.Structure, spec *SQLSpec) (source.Source, io.Closer, error) {
	src, err := sqlsource.New(db, s, sqlsource.Config{
		Table:     spec.Table,
		Where:     spec.Where,
		BlockSize: spec.BlockSize,
		MaxParams: spec.MaxParams,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return src, db, nil
}

// memoryRows converts decoded rows. A null key is an error; a null attribute
// becomes the attribute's null value.
func memoryRows(s *structure.Structure, raw [][]any) ([][]field.Value, error) {
	keys := len(s.KeyNames())
	rows := make([][]field.Value, len(raw))
	for i, r := range raw {
		row := make([]field.Value, len(r))
		for j, cell := range r {
			v, err := field.ValueOf(cell)
			if err != nil {
				return nil, fmt.Errorf("memory source row %d column %d: %w", i, j, err)
			}
			if _, null := v.(field.Null); null {
				if j < keys {
					return nil, fmt.Errorf("memory source row %d: key column %d is null", i, j)
				}
				if j-keys < len(s.Attributes) {
					v = s.Attributes[j-keys].NullValue
				}
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}
