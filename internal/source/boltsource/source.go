// Package boltsource reads dictionary rows from a bbolt bucket.
//
// Each row is stored under its key: simple keys as 8-byte big-endian ids,
// composite keys in the composite-key serialization. Values are JSON records
//
//	{"key":[<key values>],"attrs":{"<attribute>":<value>,...}}
//
// A missing or null attribute reads as the attribute's null value.
package boltsource

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/source"
	"github.com/roach88/directdict/internal/structure"
	bolt "go.etcd.io/bbolt"
)

// Open opens or creates a bbolt file.
func Open(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}
	return db, nil
}

type record struct {
	Key   []json.RawMessage          `json:"key"`
	Attrs map[string]json.RawMessage `json:"attrs"`
}

// Source is a source.Source over one bucket.
type Source struct {
	db        *bolt.DB
	bucket    string
	structure *structure.Structure
	blockSize int
}

var _ source.Source = (*Source)(nil)

// New creates a Source reading bucket. A missing bucket reads as empty.
func New(db *bolt.DB, bucket string, s *structure.Structure, blockSize int) *Source {
	if blockSize <= 0 {
		blockSize = source.DefaultBlockSize
	}
	return &Source{db: db, bucket: bucket, structure: s, blockSize: blockSize}
}

// LoadAll streams every row in key byte order.
func (s *Source) LoadAll(context.Context) (source.Stream, error) {
	table, err := source.NewTable(s.structure)
	if err != nil {
		return nil, err
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.bucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			return s.appendRecord(table, v)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read bucket %s: %w", s.bucket, err)
	}
	return s.stream(table)
}

// LoadIDs returns the rows for ids in request order.
func (s *Source) LoadIDs(_ context.Context, ids []uint64) (source.Stream, error) {
	if s.structure.IsComposite() {
		return nil, fmt.Errorf("bucket %s has a composite key, cannot load by id", s.bucket)
	}
	keys := make([][]byte, len(ids))
	for i, id := range ids {
		keys[i] = idKey(id)
	}
	return s.load(keys)
}

// LoadKeys returns the rows for the composite keys at the given rows of
// keyColumns, in request order.
func (s *Source) LoadKeys(_ context.Context, keyColumns []column.Column, rows []int) (source.Stream, error) {
	if !s.structure.IsComposite() {
		return nil, fmt.Errorf("bucket %s has a simple key, cannot load by composite key", s.bucket)
	}
	a := arena.New(0)
	defer a.Release()

	keys := make([][]byte, len(rows))
	for i, r := range rows {
		for _, col := range keyColumns {
			col.SerializeValueIntoArena(r, a)
		}
		keys[i] = append([]byte(nil), a.Bytes(a.Seal())...)
	}
	return s.load(keys)
}

func (s *Source) load(keys [][]byte) (source.Stream, error) {
	table, err := source.NewTable(s.structure)
	if err != nil {
		return nil, err
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(s.bucket))
		if b == nil {
			return nil
		}
		for _, k := range keys {
			if v := b.Get(k); v != nil {
				if err := s.appendRecord(table, v); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read bucket %s: %w", s.bucket, err)
	}
	return s.stream(table)
}

func (s *Source) stream(table *source.Table) (source.Stream, error) {
	all := make([]int, table.Rows())
	for i := range all {
		all[i] = i
	}
	blocks, err := table.Blocks(all, s.blockSize)
	if err != nil {
		return nil, err
	}
	return source.NewSliceStream(blocks...), nil
}

// appendRecord decodes v into a row of table.
func (s *Source) appendRecord(table *source.Table, v []byte) error {
	var rec record
	if err := json.Unmarshal(v, &rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}

	keyTypes := s.structure.KeyTypes()
	if len(rec.Key) != len(keyTypes) {
		return fmt.Errorf("record has %d key values, expected %d", len(rec.Key), len(keyTypes))
	}

	row := make([]field.Value, 0, len(keyTypes)+len(s.structure.Attributes))
	for _, raw := range rec.Key {
		v, err := field.UnmarshalJSON(raw)
		if err != nil {
			return fmt.Errorf("decode key: %w", err)
		}
		row = append(row, v)
	}
	for _, attr := range s.structure.Attributes {
		raw, ok := rec.Attrs[attr.Name]
		if !ok {
			row = append(row, attr.NullValue)
			continue
		}
		v, err := field.UnmarshalJSON(raw)
		if err != nil {
			return fmt.Errorf("decode attribute %q: %w", attr.Name, err)
		}
		if _, null := v.(field.Null); null {
			v = attr.NullValue
		}
		row = append(row, v)
	}
	return table.Append(row)
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
	return fmt.Sprintf("bolt(bucket=%s)", s.bucket)
}

func idKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}
