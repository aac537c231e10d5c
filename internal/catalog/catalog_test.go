package catalog

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

func book(id, genre, price string, rating float64) models.Book {
	return models.Book{
		ID:            id,
		Title:         "Title " + id,
		Author:        "Author " + id,
		Genre:         genre,
		Subgenre:      "Sub " + genre,
		Price:         decimal.RequireFromString(price),
		Rating:        rating,
		RatingCount:   10,
		PublishedDate: "2010-01-01",
		Pages:         100,
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 136, c.Len())
	b, ok := c.Book("fiction-1")
	require.True(t, ok)
	assert.Equal(t, "The Silent Patient", b.Title)
	assert.True(t, decimal.RequireFromString("14.99").Equal(b.Price))

	assert.Equal(t, []string{"Fiction", "Non-fiction", "Romance", "Thriller", "Horror", "Sad", "History", "Realistic"}, c.Genres())
}

func TestNew_Rejects(t *testing.T) {
	_, err := New([]models.Book{book("a", "Fiction", "1", 3), book("a", "Fiction", "2", 3)})
	assert.ErrorIs(t, err, ErrDuplicateBook)

	bad := book("b", "Fiction", "-1", 3)
	_, err = New([]models.Book{bad})
	assert.ErrorIs(t, err, ErrInvalidBook)

	bad = book("c", "Fiction", "1", 5.5)
	_, err = New([]models.Book{bad})
	assert.ErrorIs(t, err, ErrInvalidBook)

	bad = book("d", "Fiction", "1", 4)
	bad.Pages = 0
	_, err = New([]models.Book{bad})
	assert.ErrorIs(t, err, ErrInvalidBook)
}

func TestLoad_BadJSON(t *testing.T) {
	_, err := Load(strings.NewReader(`{"id":`))
	assert.Error(t, err)
}

func TestBook_Unknown(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	_, ok := c.Book("nope")
	assert.False(t, ok)
	assert.Empty(t, c.Genres())
}

func TestNewArrivals(t *testing.T) {
	recent := book("new", "Fiction", "10", 4)
	recent.PublishedDate = "2024-06-01"
	newest := book("newest", "Fiction", "10", 4)
	newest.PublishedDate = "2025-03-10"
	old := book("old", "Fiction", "10", 4)
	old.PublishedDate = "2019-01-01"
	c, err := New([]models.Book{recent, old, newest})
	require.NoError(t, err)

	got := c.NewArrivals(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)
	assert.Equal(t, "newest", got[0].ID)
	assert.Equal(t, "new", got[1].ID)
}

func TestBestsellers(t *testing.T) {
	a := book("a", "Fiction", "10", 4.5)
	a.RatingCount = 2000
	b := book("b", "Fiction", "10", 4.5)
	b.RatingCount = 5000
	c1 := book("c", "Fiction", "10", 4.8)
	c1.RatingCount = 1000
	few := book("few", "Fiction", "10", 4.9)
	few.RatingCount = 999
	low := book("low", "Fiction", "10", 3.9)
	low.RatingCount = 9000
	c, err := New([]models.Book{a, b, c1, few, low})
	require.NoError(t, err)

	got := c.Bestsellers()
	ids := make([]string, 0, len(got))
	for _, x := range got {
		ids = append(ids, x.ID)
	}
	assert.Equal(t, []string{"c", "b", "a"}, ids)

	def, err := Default()
	require.NoError(t, err)
	assert.Len(t, def.Bestsellers(), 12)
}

func TestPaginate(t *testing.T) {
	books := make([]models.Book, 0, 20)
	for i := 0; i < 20; i++ {
		books = append(books, book(string(rune('a'+i)), "Fiction", "10", 3))
	}

	p := Paginate(books, 1, 0)
	assert.Len(t, p.Items, 8)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 20, p.Total)

	p = Paginate(books, 3, 8)
	assert.Len(t, p.Items, 4)
	assert.Equal(t, "q", p.Items[0].ID)

	p = Paginate(books, 99, 8)
	assert.Equal(t, 3, p.Page)

	p = Paginate(nil, 0, 8)
	assert.Equal(t, 1, p.Page)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
}
