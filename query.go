package pgmodel

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgmodel/internal/sanitize"
	"github.com/jackc/pgmodel/pgtype"
	"github.com/lib/pq"
)

// RewritePlaceholders replaces each "$*" marker of sql with the next positional parameter, from left to right.
// Markers inside quoted strings, quoted identifiers and comments are left alone.
//
//	RewritePlaceholders("name = $* and visitor_id = $*") // "name = $1 and visitor_id = $2"
func RewritePlaceholders(sql string) string {
	return sanitize.RewritePlaceholders(sql)
}

// withSuffix appends a non-empty suffix and the statement terminator.
func withSuffix(sql, suffix string) string {
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		sql += " " + suffix
	}
	return sql + ";"
}

func whereClause(clause string) string {
	if strings.TrimSpace(clause) == "" {
		return "true"
	}
	return clause
}

func quoteIdentifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pq.QuoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(start, n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('$')
		sb.WriteString(strconv.Itoa(start + i))
	}
	return sb.String()
}

func (m *Model[E]) selectAllSQL(suffix string) string {
	return withSuffix("SELECT "+m.projection.String()+" FROM "+m.relation, suffix)
}

func (m *Model[E]) selectWhereSQL(clause, suffix string) string {
	return withSuffix("SELECT "+m.projection.String()+" FROM "+m.relation+" WHERE "+whereClause(clause), suffix)
}

func (m *Model[E]) countSQL(clause string) string {
	return "SELECT COUNT(*) FROM " + m.relation + " WHERE " + whereClause(clause) + ";"
}

func (m *Model[E]) existSQL(clause string) string {
	return "SELECT EXISTS (SELECT true FROM " + m.relation + " WHERE " + whereClause(clause) + ") AS result;"
}

// insertSQL falls back to DEFAULT VALUES when the entity provides no field.
func (m *Model[E]) insertSQL(fields []string, suffix string) string {
	sql := "INSERT INTO " + m.relation
	if len(fields) == 0 {
		sql += " DEFAULT VALUES"
	} else {
		sql += " (" + quoteIdentifiers(fields) + ") VALUES(" + placeholders(1, len(fields)) + ")"
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		sql += " " + suffix
	}
	return sql + " RETURNING " + m.projection.String() + ";"
}

// updateSQL numbers the SET parameters after the primary key parameters.
func (m *Model[E]) updateSQL(fields []string, pkClause string, pkParams int) string {
	set := make([]string, len(fields))
	for i, f := range fields {
		set[i] = pq.QuoteIdentifier(f) + " = $" + strconv.Itoa(pkParams+i+1)
	}
	return "UPDATE " + m.relation + " SET " + strings.Join(set, ", ") + " WHERE " + pkClause + " RETURNING " + m.projection.String() + ";"
}

func (m *Model[E]) deleteSQL(clause string) string {
	return "DELETE FROM " + m.relation + " WHERE " + whereClause(clause) + " RETURNING " + m.projection.String() + ";"
}

func (m *Model[E]) copySQL() string {
	return "COPY " + m.relation + " (" + quoteIdentifiers(m.columns) + ") FROM STDIN"
}

// pkClause validates pk against the declared primary key and builds `"f1" = $start AND "f2" = $start+1 ...` in
// declared order with the matching parameters.
func (m *Model[E]) pkClause(pk PrimaryKey, start int) (string, []pgtype.Value, error) {
	if !m.isPrimaryKey(pk) {
		supplied := make([]string, 0, len(pk))
		for k := range pk {
			supplied = append(supplied, k)
		}
		sort.Strings(supplied)
		return "", nil, &PrimaryKeyMismatchError{Relation: m.relation, Declared: m.PrimaryKey(), Supplied: supplied}
	}

	terms := make([]string, len(m.primaryKey))
	params := make([]pgtype.Value, len(m.primaryKey))
	for i, name := range m.primaryKey {
		terms[i] = pq.QuoteIdentifier(name) + " = $" + strconv.Itoa(start+i)
		params[i] = pk[name]
	}
	return strings.Join(terms, " AND "), params, nil
}

func (m *Model[E]) isPrimaryKey(pk PrimaryKey) bool {
	if len(m.primaryKey) == 0 || len(pk) != len(m.primaryKey) {
		return false
	}
	for _, name := range m.primaryKey {
		if _, ok := pk[name]; !ok {
			return false
		}
	}
	return true
}
