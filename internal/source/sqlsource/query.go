package sqlsource

import (
	"fmt"
	"regexp"
	"strings"
)

// validIdentifier matches valid SQL identifiers (table/column names).
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdentifier(kind, name string) error {
	if !validIdentifier.MatchString(name) {
		return fmt.Errorf("invalid %s name %q: must match pattern %s", kind, name, validIdentifier.String())
	}
	return nil
}

// queryBuilder renders the SELECT statements a Source runs.
// Every value is a bind parameter; identifiers are validated at construction.
type queryBuilder struct {
	dialect Dialect
	table   string
	columns []string // key columns first
	keys    int
	where   string
}

func newQueryBuilder(dialect Dialect, table string, columns []string, keys int, where string) (queryBuilder, error) {
	if err := checkIdentifier("table", table); err != nil {
		return queryBuilder{}, err
	}
	for _, c := range columns {
		if err := checkIdentifier("column", c); err != nil {
			return queryBuilder{}, err
		}
	}
	return queryBuilder{dialect: dialect, table: table, columns: columns, keys: keys, where: where}, nil
}

func (q queryBuilder) selectFrom() string {
	quoted := make([]string, len(q.columns))
	for i, c := range q.columns {
		quoted[i] = q.dialect.quote(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), q.dialect.quote(q.table))
}

// filter joins the key predicate with the configured extra condition.
func (q queryBuilder) filter(pred string) string {
	if q.where == "" {
		return " WHERE " + pred
	}
	return fmt.Sprintf(" WHERE %s AND (%s)", pred, q.where)
}

// selectAll returns every row ordered by the key columns.
func (q queryBuilder) selectAll() string {
	sql := q.selectFrom()
	if q.where != "" {
		sql += " WHERE " + q.where
	}
	order := make([]string, q.keys)
	for i := range order {
		order[i] = q.dialect.quote(q.columns[i]) + " ASC"
	}
	return sql + " ORDER BY " + strings.Join(order, ", ")
}

// selectIDs filters the single key column against n parameters.
func (q queryBuilder) selectIDs(n int) string {
	params := make([]string, n)
	for i := range params {
		params[i] = q.dialect.placeholder(i + 1)
	}
	pred := fmt.Sprintf("(%s IN (%s))", q.dialect.quote(q.columns[0]), strings.Join(params, ", "))
	return q.selectFrom() + q.filter(pred)
}

// selectKeys filters the composite key against n tuples of parameters,
// laid out tuple by tuple.
func (q queryBuilder) selectKeys(n int) string {
	tuples := make([]string, n)
	p := 1
	for i := range tuples {
		eqs := make([]string, q.keys)
		for k := range eqs {
			eqs[k] = fmt.Sprintf("%s = %s", q.dialect.quote(q.columns[k]), q.dialect.placeholder(p))
			p++
		}
		tuples[i] = "(" + strings.Join(eqs, " AND ") + ")"
	}
	return q.selectFrom() + q.filter("("+strings.Join(tuples, " OR ")+")")
}
