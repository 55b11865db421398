package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Query struct {
	Category string
	ToPrice  *decimal.Decimal
	Search   string
	Ordering []string
	Limit    int
	Offset   int
}

var orderColumns = map[string]string{
	"id":    "m.id",
	"title": "m.title",
	"price": "m.price",
}

// ParseOrdering validates a comma separated ordering parameter such as "-price,title".
func ParseOrdering(raw string) ([]string, error) {
	return parseOrdering(raw, orderColumns)
}

func parseOrdering(raw string, allowed map[string]string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, ok := allowed[strings.TrimPrefix(f, "-")]; !ok {
			return nil, fmt.Errorf("invalid ordering field %q", f)
		}
		out = append(out, f)
	}
	return out, nil
}

// OrderBy renders the ORDER BY clause. Unknown fields are skipped and id is
// always the final tie breaker so pagination is stable.
func (q Query) OrderBy() string {
	parts := make([]string, 0, len(q.Ordering)+1)
	for _, f := range q.Ordering {
		dir := "ASC"
		if strings.HasPrefix(f, "-") {
			dir = "DESC"
			f = f[1:]
		}
		col, ok := orderColumns[f]
		if !ok {
			continue
		}
		parts = append(parts, col+" "+dir)
	}
	parts = append(parts, "m.id ASC")
	return strings.Join(parts, ", ")
}

// CacheKey is a stable textual form of the query.
func (q Query) CacheKey() string {
	to := ""
	if q.ToPrice != nil {
		to = q.ToPrice.String()
	}
	return fmt.Sprintf("c=%s|to=%s|s=%s|o=%s|l=%d|off=%d",
		strings.ToLower(q.Category), to, strings.ToLower(q.Search),
		strings.Join(q.Ordering, ","), q.Limit, q.Offset)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike quotes LIKE metacharacters so s matches literally.
func EscapeLike(s string) string { return likeEscaper.Replace(s) }
