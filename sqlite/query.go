package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
)

// Timestamps are stored as RFC3339 text in UTC with second precision.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", column, value, err)
	}
	return t, nil
}

// siteQuery builds the SELECT for filter, ordered by alias.
func siteQuery(filter docchat.SiteFilter) (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT " + siteColumns + " FROM sites")

	var where []string
	if filter.ID != nil {
		where = append(where, "id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Builtin != nil {
		where = append(where, "builtin = ?")
		args = append(args, *filter.Builtin)
	}
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY id")

	// SQLite requires LIMIT before OFFSET; -1 means no limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		b.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	if filter.Offset > 0 {
		b.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}
	return b.String(), args
}
