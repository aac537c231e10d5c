package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookhaven/internal/catalog"
	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
)

type bookPage struct {
	catalog.Page
	Filtered bool `json:"filtered"`
}

func intQuery(ctx *gin.Context, name string, def int) (int, error) {
	v := ctx.Query(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return n, nil
}

func (s *Server) ListBooks(ctx *gin.Context) {
	cr, err := catalog.ParseCriteria(ctx.Query("genre"), ctx.Query("price"), ctx.Query("rating"), ctx.Query("q"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	page, err := intQuery(ctx, "page", 1)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	perPage, err := intQuery(ctx, "per_page", consts.BooksPerPage)
	if err != nil || perPage <= 0 || perPage > 100 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid per_page"})
		return
	}
	s.rememberSearch(ctx, cr.Query)
	ctx.JSON(http.StatusOK, bookPage{
		Page:     catalog.Paginate(s.catalog.Filter(cr), page, perPage),
		Filtered: !cr.IsZero(),
	})
}

func (s *Server) Genres(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"genres": s.catalog.Genres()})
}

func (s *Server) SearchBooks(ctx *gin.Context) {
	q := strings.TrimSpace(ctx.Query("q"))
	if q == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "search query is required"})
		return
	}
	s.rememberSearch(ctx, q)
	items := s.catalog.Search(q)
	ctx.JSON(http.StatusOK, gin.H{"query": q, "items": items, "total": len(items)})
}

func (s *Server) Suggest(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"suggestions": s.catalog.Suggest(ctx.Query("q"), consts.SuggestionLimit)})
}

func (s *Server) NewArrivals(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"items": s.catalog.NewArrivals(s.now())})
}

func (s *Server) Bestsellers(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"items": s.catalog.Bestsellers()})
}

func (s *Server) book(ctx *gin.Context, param string) (models.Book, bool) {
	b, ok := s.catalog.Book(ctx.Param(param))
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
	}
	return b, ok
}

func (s *Server) BookInfo(ctx *gin.Context) {
	log := logger.Get()
	b, ok := s.book(ctx, "id")
	if !ok {
		return
	}
	reviews, err := s.storage.GetReviews(ctx.Request.Context(), b.ID)
	if err != nil {
		log.Error().Err(err).Str("book_id", b.ID).Msg("get reviews failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load reviews"})
		return
	}
	if uid := ctx.GetString(ctxUID); uid != "" {
		if err := s.storage.PushRecentlyViewed(ctx.Request.Context(), uid, b.ID); err != nil {
			log.Error().Err(err).Str("uid", uid).Msg("record recently viewed failed")
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"book": b, "reviews": summarize(reviews)})
}

func (s *Server) BookCover(ctx *gin.Context) {
	b, ok := s.book(ctx, "id")
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"book_id": b.ID, "url": s.covers.Resolve(ctx.Request.Context(), b)})
}

// rememberSearch keeps the query in a signed-in user's history. Failures
// never break the search itself.
func (s *Server) rememberSearch(ctx *gin.Context, q string) {
	q = strings.TrimSpace(q)
	uid := ctx.GetString(ctxUID)
	if q == "" || uid == "" {
		return
	}
	if err := s.storage.PushSearchHistory(ctx.Request.Context(), uid, q); err != nil {
		logger.Get().Error().Err(err).Str("uid", uid).Msg("record search history failed")
	}
}

// booksByID maps stored ids back to catalog books, skipping ids that are no
// longer in the catalog.
func (s *Server) booksByID(ids []string) []models.Book {
	out := make([]models.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.catalog.Book(id); ok {
			out = append(out, b)
		}
	}
	return out
}
