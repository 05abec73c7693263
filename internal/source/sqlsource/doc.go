// Package sqlsource reads dictionary rows from a SQL table.
//
// SQLite (github.com/mattn/go-sqlite3), PostgreSQL (github.com/lib/pq) and
// MySQL (github.com/go-sql-driver/mysql) are supported through database/sql.
//
// # Queries
//
// Keyed loads run parameterized queries in chunks:
//
//	SELECT "id", "parent" FROM "regions" WHERE ("id" IN (?, ?, ?))
//	SELECT ... WHERE (("region" = ? AND "code" = ?) OR ("region" = ? AND "code" = ?))
//
// Results are matched back to the request and emitted in request order, so a
// requested key appears once per occurrence in the request. Full loads are
// ordered by the key columns for deterministic output.
//
// Values are never interpolated. Table and column names must match
// ^[A-Za-z_][A-Za-z0-9_]*$ and are quoted for the dialect.
//
// # NULL handling
//
// Rows with a NULL key column are skipped. NULL attribute values are replaced
// with the attribute's null value.
package sqlsource
