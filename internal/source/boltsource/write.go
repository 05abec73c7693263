package boltsource

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/directdict/internal/arena"
	"github.com/roach88/directdict/internal/column"
	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
	bolt "go.etcd.io/bbolt"
)

// Put stores rows, laid out key columns first, into bucket. Existing rows with
// the same key are replaced. A nil attribute value is stored as null.
func Put(db *bolt.DB, bucket string, s *structure.Structure, rows [][]field.Value) error {
	keyTypes := s.KeyTypes()
	width := len(keyTypes) + len(s.Attributes)

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}

		for i, row := range rows {
			if len(row) != width {
				return fmt.Errorf("row %d has %d values, expected %d", i, len(row), width)
			}
			key, err := encodeKey(s, row[:len(keyTypes)])
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			val, err := encodeRecord(s, row)
			if err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
			if err := b.Put(key, val); err != nil {
				return fmt.Errorf("row %d: %w", i, err)
			}
		}
		return nil
	})
}

func encodeKey(s *structure.Structure, key []field.Value) ([]byte, error) {
	if !s.IsComposite() {
		id, err := field.TypeUInt64.Convert(key[0])
		if err != nil {
			return nil, err
		}
		return idKey(uint64(id.(field.UInt64))), nil
	}

	a := arena.New(0)
	defer a.Release()
	for i, k := range s.Key {
		col, err := column.FromValues(k.Type, []field.Value{key[i]})
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k.Name, err)
		}
		col.SerializeValueIntoArena(0, a)
	}
	return append([]byte(nil), a.Bytes(a.Seal())...), nil
}

func encodeRecord(s *structure.Structure, row []field.Value) ([]byte, error) {
	keys := len(s.KeyNames())
	rec := record{
		Key:   make([]json.RawMessage, keys),
		Attrs: make(map[string]json.RawMessage, len(s.Attributes)),
	}
	for i := 0; i < keys; i++ {
		b, err := field.MarshalJSON(row[i])
		if err != nil {
			return nil, err
		}
		rec.Key[i] = b
	}
	for i, attr := range s.Attributes {
		b, err := field.MarshalJSON(row[keys+i])
		if err != nil {
			return nil, err
		}
		rec.Attrs[attr.Name] = b
	}
	return json.Marshal(rec)
}
