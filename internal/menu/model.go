package menu

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type Item struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Price      decimal.Decimal `json:"price"`
	Featured   bool            `json:"featured"`
	CategoryID int64           `json:"-"`
	Category   Category        `json:"category"`
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	s = nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(s, "-")
}
