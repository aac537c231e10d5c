package server

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

type reviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text" validate:"max=2000"`
}

func summarize(reviews []models.Review) models.ReviewSummary {
	if len(reviews) == 0 {
		return models.ReviewSummary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(reviews))
	return models.ReviewSummary{Average: math.Round(avg*10) / 10, Count: len(reviews)}
}

func (s *Server) BookReviews(ctx *gin.Context) {
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
	ctx.JSON(http.StatusOK, gin.H{"reviews": reviews, "summary": summarize(reviews)})
}

func (s *Server) AddReview(ctx *gin.Context) {
	log := logger.Get()
	b, ok := s.book(ctx, "id")
	if !ok {
		return
	}
	var req reviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Rating must be between 1 and 5"})
		return
	}
	uid := ctx.GetString(ctxUID)
	user, err := s.storage.GetUser(ctx.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, storerrros.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("failed get user")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch user details"})
		return
	}
	review := models.Review{
		ReviewID:  uuid.New().String(),
		BookID:    b.ID,
		UID:       uid,
		UserName:  user.Name,
		Rating:    req.Rating,
		Text:      strings.TrimSpace(req.Text),
		CreatedAt: s.now().UTC(),
	}
	if err := s.storage.AddReview(ctx.Request.Context(), review); err != nil {
		log.Error().Err(err).Str("book_id", b.ID).Msg("save review failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save review"})
		return
	}
	ctx.JSON(http.StatusCreated, review)
}
