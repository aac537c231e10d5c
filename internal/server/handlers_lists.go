package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookhaven/internal/auth"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

type preferencesRequest struct {
	Language string `json:"language" validate:"required,oneof=en hi"`
	DarkMode bool   `json:"dark_mode"`
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,storeemail"`
}

func (s *Server) Wishlist(ctx *gin.Context) {
	log := logger.Get()
	ids, err := s.storage.GetWishlist(ctx.Request.Context(), ctx.GetString(ctxUID))
	if err != nil {
		log.Error().Err(err).Msg("get wishlist failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load wishlist"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": s.booksByID(ids)})
}

func (s *Server) AddToWishlist(ctx *gin.Context) {
	log := logger.Get()
	b, ok := s.book(ctx, "book_id")
	if !ok {
		return
	}
	if err := s.storage.AddToWishlist(ctx.Request.Context(), ctx.GetString(ctxUID), b.ID); err != nil {
		if errors.Is(err, storerrros.ErrAlreadyInWishlist) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Book is already in your wishlist"})
			return
		}
		log.Error().Err(err).Msg("add to wishlist failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update wishlist"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Book added to wishlist", "book_id": b.ID})
}

func (s *Server) RemoveFromWishlist(ctx *gin.Context) {
	log := logger.Get()
	err := s.storage.RemoveFromWishlist(ctx.Request.Context(), ctx.GetString(ctxUID), ctx.Param("book_id"))
	if err != nil {
		if errors.Is(err, storerrros.ErrNotInWishlist) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("remove from wishlist failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update wishlist"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (s *Server) SearchHistory(ctx *gin.Context) {
	log := logger.Get()
	items, err := s.storage.GetSearchHistory(ctx.Request.Context(), ctx.GetString(ctxUID))
	if err != nil {
		log.Error().Err(err).Msg("get search history failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load search history"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) RecentlyViewed(ctx *gin.Context) {
	log := logger.Get()
	ids, err := s.storage.GetRecentlyViewed(ctx.Request.Context(), ctx.GetString(ctxUID))
	if err != nil {
		log.Error().Err(err).Msg("get recently viewed failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load recently viewed books"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"items": s.booksByID(ids)})
}

func (s *Server) Preferences(ctx *gin.Context) {
	log := logger.Get()
	prefs, err := s.storage.GetPreferences(ctx.Request.Context(), ctx.GetString(ctxUID))
	if err != nil {
		log.Error().Err(err).Msg("get preferences failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load preferences"})
		return
	}
	ctx.JSON(http.StatusOK, prefs)
}

func (s *Server) SavePreferences(ctx *gin.Context) {
	log := logger.Get()
	var req preferencesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
		return
	}
	prefs := models.Preferences{Language: req.Language, DarkMode: req.DarkMode}
	if err := s.storage.SavePreferences(ctx.Request.Context(), ctx.GetString(ctxUID), prefs); err != nil {
		log.Error().Err(err).Msg("save preferences failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save preferences"})
		return
	}
	ctx.JSON(http.StatusOK, prefs)
}

func (s *Server) Subscribe(ctx *gin.Context) {
	log := logger.Get()
	var req subscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	req.Email = auth.NormalizeEmail(req.Email)
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please enter a valid email address"})
		return
	}
	if err := s.storage.Subscribe(ctx.Request.Context(), req.Email); err != nil {
		if errors.Is(err, storerrros.ErrAlreadySubscribed) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "You are already subscribed!"})
			return
		}
		log.Error().Err(err).Msg("subscribe failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to subscribe"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Successfully subscribed!"})
}
