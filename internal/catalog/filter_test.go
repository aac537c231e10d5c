package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

func ids(books []models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestFilter_GenreMembership(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, g := range c.Genres() {
		got := c.ByGenre(g)
		require.NotEmpty(t, got, g)
		for _, b := range got {
			assert.Equal(t, g, b.Genre)
		}
	}
	assert.Len(t, c.ByGenre("fiction"), 21)
	assert.Len(t, c.ByGenre("all"), c.Len())
	assert.Empty(t, c.ByGenre("Poetry"))
	assert.NotNil(t, c.ByGenre("Poetry"))
}

func TestPriceBracket_Bounds(t *testing.T) {
	tests := []struct {
		bracket PriceBracket
		price   string
		want    bool
	}{
		{PriceUnder10, "9.99", true},
		{PriceUnder10, "10.00", false},
		{Price10to20, "10.00", true},
		{Price10to20, "20.00", true},
		{Price10to20, "9.99", false},
		{Price10to20, "20.01", false},
		{Price20to30, "20.00", true},
		{Price20to30, "30.00", true},
		{Price20to30, "30.01", false},
		{PriceOver30, "30.00", false},
		{PriceOver30, "30.01", true},
		{PriceAny, "1000", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.bracket)+"/"+tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.bracket.Contains(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestParseCriteria(t *testing.T) {
	cr, err := ParseCriteria("Fiction", "10to20", "4plus", "")
	require.NoError(t, err)
	assert.Equal(t, Price10to20, cr.Price)
	assert.Equal(t, RatingFloor(4), cr.Rating)

	cr, err = ParseCriteria("all", "all", "all", "  ")
	require.NoError(t, err)
	assert.True(t, cr.IsZero())

	_, err = ParseCriteria("", "cheap", "", "")
	assert.ErrorIs(t, err, ErrUnknownFilter)
	_, err = ParseCriteria("", "", "5plus", "")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestFilter_Combined(t *testing.T) {
	c, err := New([]models.Book{
		book("f1", "Fiction", "9.99", 4.1),
		book("f2", "Fiction", "15.00", 3.5),
		book("f3", "Fiction", "15.00", 4.5),
		book("r1", "Romance", "15.00", 4.5),
	})
	require.NoError(t, err)

	got := c.Filter(Criteria{Genre: "Fiction", Price: Price10to20, Rating: 4})
	assert.Equal(t, []string{"f3"}, ids(got))

	// the query narrows hard filters, it never widens them
	got = c.Filter(Criteria{Genre: "Fiction", Query: "r1"})
	assert.Empty(t, got)
	got = c.Filter(Criteria{Rating: 4, Query: "AUTHOR F"})
	assert.Equal(t, []string{"f1", "f3"}, ids(got))

	assert.Len(t, c.Filter(Criteria{}), 4)
}

func TestFilter_RatingFloorOnCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	for _, b := range c.Filter(Criteria{Rating: 4}) {
		assert.GreaterOrEqual(t, b.Rating, 4.0)
	}
}

func TestSuggest(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	want := make([]string, 0, 5)
	for _, b := range c.All() {
		for _, f := range []string{b.Title, b.Author, b.Genre, b.Subgenre} {
			if strings.Contains(strings.ToLower(f), "the") {
				want = append(want, b.ID)
				break
			}
		}
		if len(want) == 5 {
			break
		}
	}
	require.Len(t, want, 5)
	assert.Equal(t, want, ids(c.Suggest("the", 5)))

	assert.Empty(t, c.Suggest("   ", 5))
	assert.Equal(t, "fiction-1", c.Suggest("silent patient", 0)[0].ID)
}

func TestSuggest_CatalogOrderPerField(t *testing.T) {
	x := book("x", "Fiction", "10", 3)
	x.Title, x.Author = "Ab", "Cd"
	y := book("y", "Fiction", "10", 3)
	y.Title = "Abc"
	z := book("z", "Fiction", "10", 3)
	z.Author = "Bcd"
	c, err := New([]models.Book{x, y, z})
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "z"}, ids(c.Suggest("bc", 5)))
	assert.Equal(t, []string{"y"}, ids(c.Suggest("bc", 1)))
}

func TestSearch_MatchesDescription(t *testing.T) {
	b := book("x", "Fiction", "10", 3)
	b.Description = "A story about lighthouses"
	c, err := New([]models.Book{b, book("y", "Fiction", "10", 3)})
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, ids(c.Search("LIGHTHOUSE")))
	assert.Empty(t, c.Suggest("lighthouse", 5))
	assert.Empty(t, c.Search(""))
}
