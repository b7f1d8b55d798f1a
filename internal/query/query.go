// Package query assembles the remote search query string from resolved
// filter criteria. Building never fails; an all-empty result is valid and
// it is the caller's job to decide whether that is usable.
package query

import (
	"strconv"
	"strings"
)

// Build joins the query fragments in fixed order: base query, tags, group,
// status ids. Absent criteria contribute nothing.
func Build(baseQuery string, tags []string, groupID *int64, statusIDs []int64) string {
	var parts []string

	if s := strings.TrimSpace(baseQuery); s != "" {
		parts = append(parts, s)
	}

	if len(tags) > 0 {
		quoted := make([]string, 0, len(tags))
		for _, t := range tags {
			if t = strings.TrimSpace(t); t != "" {
				quoted = append(quoted, quoteValue(t))
			}
		}
		if len(quoted) > 0 {
			parts = append(parts, "tags:"+strings.Join(quoted, ","))
		}
	}

	if groupID != nil {
		parts = append(parts, "group:"+strconv.FormatInt(*groupID, 10))
	}

	for _, id := range statusIDs {
		parts = append(parts, "custom_status_id:"+strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, " ")
}

// quoteValue wraps a value in double quotes when it contains characters that
// would break the query grammar (whitespace, colon, quote, backslash),
// escaping embedded quotes and backslashes. Plain values pass through.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, " \t\n:\"\\") {
		return v
	}
	var b strings.Builder
	b.Grow(len(v) + 2)
	b.WriteByte('"')
	for _, r := range v {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
