package sqlsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/directdict/internal/field"
	"github.com/roach88/directdict/internal/structure"
)

// columnType maps a field type to a column definition for the dialect.
func (d Dialect) columnType(t field.Type, key bool) string {
	switch {
	case t.IsUnsigned() || t.IsSigned():
		if d == SQLite {
			return "INTEGER"
		}
		if d == MySQL && t == field.TypeUInt64 {
			return "BIGINT UNSIGNED"
		}
		return "BIGINT"
	case t.IsFloat():
		if d == Postgres {
			return "DOUBLE PRECISION"
		}
		if d == MySQL {
			return "DOUBLE"
		}
		return "REAL"
	default:
		if d == MySQL && key {
			return "VARCHAR(255)"
		}
		return "TEXT"
	}
}

// CreateTable creates a table laid out for s, keyed by its key columns.
// This function is idempotent.
func CreateTable(ctx context.Context, db *DB, table string, s *structure.Structure) error {
	qb, err := newQueryBuilder(db.dialect, table, s.ColumnNames(), len(s.KeyNames()), "")
	if err != nil {
		return err
	}

	keyTypes := s.KeyTypes()
	var defs, keys []string
	for i, name := range qb.columns {
		var typ string
		if i < qb.keys {
			typ = db.dialect.columnType(keyTypes[i], true)
			keys = append(keys, db.dialect.quote(name))
		} else {
			typ = db.dialect.columnType(s.Attributes[i-qb.keys].Type, false)
		}
		defs = append(defs, db.dialect.quote(name)+" "+typ)
	}
	defs = append(defs, "PRIMARY KEY ("+strings.Join(keys, ", ")+")")

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", db.dialect.quote(table), strings.Join(defs, ", "))
	if _, err := db.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// InsertRows writes rows, laid out key columns first, in one transaction.
// A nil attribute value is stored as NULL.
func InsertRows(ctx context.Context, db *DB, table string, s *structure.Structure, rows [][]field.Value) error {
	qb, err := newQueryBuilder(db.dialect, table, s.ColumnNames(), len(s.KeyNames()), "")
	if err != nil {
		return err
	}

	names := make([]string, len(qb.columns))
	params := make([]string, len(qb.columns))
	for i, c := range qb.columns {
		names[i] = db.dialect.quote(c)
		params[i] = db.dialect.placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		db.dialect.quote(table), strings.Join(names, ", "), strings.Join(params, ", "))

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, row := range rows {
		if len(row) != len(qb.columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(qb.columns))
		}
		args := make([]any, len(row))
		for j, v := range row {
			if v == nil {
				args[j] = nil
				continue
			}
			args[j] = bindValue(v)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
