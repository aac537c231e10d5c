package catalog

import (
	"sort"
	"time"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
)

// NewArrivals lists books published in the current or previous two calendar
// years, newest first.
func (c *Catalog) NewArrivals(now time.Time) []models.Book {
	from := now.Year() - 2
	type dated struct {
		book models.Book
		at   time.Time
	}
	var list []dated
	for _, b := range c.books {
		at, err := time.Parse(time.DateOnly, b.PublishedDate)
		if err != nil || at.Year() < from {
			continue
		}
		list = append(list, dated{b, at})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].at.After(list[j].at) })

	out := make([]models.Book, 0, consts.CollectionLimit)
	for i := 0; i < len(list) && i < consts.CollectionLimit; i++ {
		out = append(out, list[i].book)
	}
	return out
}

// Bestsellers lists well rated books with a meaningful number of ratings.
func (c *Catalog) Bestsellers() []models.Book {
	out := make([]models.Book, 0)
	for _, b := range c.books {
		if b.Rating >= 4.0 && b.RatingCount >= 1000 {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].RatingCount > out[j].RatingCount
	})
	if len(out) > consts.CollectionLimit {
		out = out[:consts.CollectionLimit]
	}
	return out
}

type Page struct {
	Items   []models.Book `json:"items"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Total   int           `json:"total"`
	Pages   int           `json:"pages"`
}

// Paginate cuts books into pages numbered from 1. Out of range pages are
// clamped to the nearest valid page.
func Paginate(books []models.Book, page, perPage int) Page {
	if perPage <= 0 {
		perPage = consts.BooksPerPage
	}
	total := len(books)
	pages := (total + perPage - 1) / perPage
	if pages == 0 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)
	items := make([]models.Book, 0, end-start)
	items = append(items, books[start:end]...)
	return Page{Items: items, Page: page, PerPage: perPage, Total: total, Pages: pages}
}
