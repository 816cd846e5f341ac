package repositories

import (
	"fmt"
	"strings"
)

// whereBuilder accumulates numbered conditions. Every query starts tenant scoped.
type whereBuilder struct {
	clauses []string
	args    []any
}

func newWhere(tenantColumn string, tenantID any) *whereBuilder {
	return &whereBuilder{
		clauses: []string{tenantColumn + " = $1"},
		args:    []any{tenantID},
	}
}

// add appends a condition; format refers to the new placeholder as %[1]d.
func (w *whereBuilder) add(format string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(format, len(w.args)))
}

// raw appends a condition without an argument.
func (w *whereBuilder) raw(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) sql() string {
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// page returns the LIMIT/OFFSET suffix and the args including them.
func (w *whereBuilder) page(limit, offset int) (string, []any) {
	n := len(w.args)
	args := append(append([]any{}, w.args...), limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), args
}

func likePattern(q string) string {
	return "%" + strings.TrimSpace(q) + "%"
}

// prefixed qualifies a comma separated column list with alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
