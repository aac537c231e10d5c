package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

type bookPage struct {
	Items    []models.Book `json:"items"`
	Page     int           `json:"page"`
	PerPage  int           `json:"per_page"`
	Total    int           `json:"total"`
	Pages    int           `json:"pages"`
	Filtered bool          `json:"filtered"`
}

func TestListBooks(t *testing.T) {
	r := newServer(t, nil).Router()

	w := do(t, r, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[bookPage](t, w)
	assert.Equal(t, 136, page.Total)
	assert.Len(t, page.Items, 8)
	assert.Equal(t, 17, page.Pages)
	assert.False(t, page.Filtered)

	w = do(t, r, http.MethodGet, "/books?genre=Fiction&page=3", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[bookPage](t, w)
	assert.Equal(t, 21, page.Total)
	assert.Len(t, page.Items, 5)
	assert.True(t, page.Filtered)
	for _, b := range page.Items {
		assert.Equal(t, "Fiction", b.Genre)
	}

	w = do(t, r, http.MethodGet, "/books?genre=Poetry", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[bookPage](t, w)
	assert.Zero(t, page.Total)
	assert.True(t, page.Filtered)
	assert.NotNil(t, page.Items)
}

func TestListBooks_BadFilters(t *testing.T) {
	r := newServer(t, nil).Router()

	for _, q := range []string{"price=cheap", "rating=9plus", "page=x", "per_page=0"} {
		w := do(t, r, http.MethodGet, "/books?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestBookEndpoints(t *testing.T) {
	r := newServer(t, nil).Router()

	w := do(t, r, http.MethodGet, "/books/fiction-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[struct {
		Book    models.Book          `json:"book"`
		Reviews models.ReviewSummary `json:"reviews"`
	}](t, w)
	assert.Equal(t, "The Silent Patient", info.Book.Title)
	assert.Zero(t, info.Reviews.Count)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/books/nope", "", nil).Code)

	w = do(t, r, http.MethodGet, "/books/genres", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	genres := decode[struct {
		Genres []string `json:"genres"`
	}](t, w)
	assert.Len(t, genres.Genres, 8)

	w = do(t, r, http.MethodGet, "/books/suggest?q=the", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sug := decode[struct {
		Suggestions []models.Book `json:"suggestions"`
	}](t, w)
	assert.Len(t, sug.Suggestions, 5)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/books/search?q=", "", nil).Code)

	w = do(t, r, http.MethodGet, "/books/bestsellers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	best := decode[struct {
		Items []models.Book `json:"items"`
	}](t, w)
	assert.Len(t, best.Items, 12)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/books/new-arrivals", "", nil).Code)

	w = do(t, r, http.MethodGet, "/books/fiction-1/cover", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cover := decode[struct {
		URL string `json:"url"`
	}](t, w)
	assert.Contains(t, cover.URL, "covers.openlibrary.org")
}

func TestSearchHistoryAndRecentlyViewed(t *testing.T) {
	r := newServer(t, nil).Router()
	sess := register(t, r, "Jane", "jane@example.com")

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/books/search?q=midnight", sess.Token, nil).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/books?q=circe", sess.Token, nil).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/books/search?q=midnight", sess.Token, nil).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/books/search?q=guest", "", nil).Code)

	w := do(t, r, http.MethodGet, "/users/search-history", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[struct {
		Items []string `json:"items"`
	}](t, w)
	assert.Equal(t, []string{"midnight", "circe"}, hist.Items)

	do(t, r, http.MethodGet, "/books/fiction-1", sess.Token, nil)
	do(t, r, http.MethodGet, "/books/fiction-2", sess.Token, nil)
	w = do(t, r, http.MethodGet, "/users/recently-viewed", sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	recent := decode[struct {
		Items []models.Book `json:"items"`
	}](t, w)
	require.Len(t, recent.Items, 2)
	assert.Equal(t, "fiction-2", recent.Items[0].ID)
}

func TestReviews(t *testing.T) {
	r := newServer(t, nil).Router()
	sess := register(t, r, "Jane", "jane@example.com")

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodPost, "/books/fiction-1/reviews", "", map[string]any{"rating": 5}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/books/fiction-1/reviews", sess.Token, map[string]any{"rating": 6}).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPost, "/books/nope/reviews", sess.Token, map[string]any{"rating": 4}).Code)

	w := do(t, r, http.MethodPost, "/books/fiction-1/reviews", sess.Token, map[string]any{"rating": 5, "text": "Loved it"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rev := decode[models.Review](t, w)
	assert.Equal(t, "Jane", rev.UserName)

	do(t, r, http.MethodPost, "/books/fiction-1/reviews", sess.Token, map[string]any{"rating": 4})

	w = do(t, r, http.MethodGet, "/books/fiction-1/reviews", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[struct {
		Reviews []models.Review      `json:"reviews"`
		Summary models.ReviewSummary `json:"summary"`
	}](t, w)
	assert.Len(t, got.Reviews, 2)
	assert.Equal(t, models.ReviewSummary{Average: 4.5, Count: 2}, got.Summary)
}
