package catalog

import (
	"strings"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
)

// Suggest returns up to limit books in catalog order whose title, author,
// genre or subgenre contains query. No relevance ranking is applied.
func (c *Catalog) Suggest(query string, limit int) []models.Book {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Book, 0)
	if q == "" {
		return out
	}
	if limit <= 0 {
		limit = consts.SuggestionLimit
	}
	for _, b := range c.books {
		if containsAny(q, b.Title, b.Author, b.Genre, b.Subgenre) {
			out = append(out, b)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Search is the full search submit: it also looks into the description.
func (c *Catalog) Search(query string) []models.Book {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Book, 0)
	if q == "" {
		return out
	}
	for _, b := range c.books {
		if containsAny(q, b.Title, b.Author, b.Genre, b.Subgenre, b.Description) {
			out = append(out, b)
		}
	}
	return out
}
