package sqlite

import (
	"fmt"
	"strings"

	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
)

// selectBuilder accumulates equality filters for a single-table select.
type selectBuilder struct {
	where []string
	args  []any
}

// eq adds "column = value" unless value is the empty string.
func (b *selectBuilder) eq(column string, value any) {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return
	}
	b.where = append(b.where, column+" = ?")
	b.args = append(b.args, value)
}

// build renders base with the filters, an ORDER BY restricted to columns,
// and an optional LIMIT.
func (b *selectBuilder) build(base string, opts storage.ListOptions, columns map[string]string, fallbackOrder string) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(base)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}

	order := fallbackOrder
	if len(opts.OrderBy) > 0 {
		parts := make([]string, 0, len(opts.OrderBy)+1)
		for _, field := range opts.OrderBy {
			column, ok := columns[field.Field]
			if !ok {
				return "", nil, fmt.Errorf("cannot order by %q", field.Field)
			}
			dir := "ASC"
			if field.Desc {
				dir = "DESC"
			}
			parts = append(parts, column+" "+dir)
		}
		// Stable results for equal keys.
		parts = append(parts, "id ASC")
		order = strings.Join(parts, ", ")
	}
	if order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}

	args := append([]any(nil), b.args...)
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}
	return sb.String(), args, nil
}
