package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookhaven/internal/auth"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

type registerRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

func (s *Server) Register(ctx *gin.Context) {
	log := logger.Get()
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all fields"})
		return
	}
	if err := auth.CheckPassword(req.Password); err != nil {
		var perr *auth.PasswordError
		errors.As(err, &perr)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Password must meet the following requirements", "problems": perr.Problems})
		return
	}
	if err := auth.CheckConfirm(req.Password, req.ConfirmPassword); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	user, err := s.auth.RegisterUser(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		case errors.Is(err, auth.ErrMissingFields):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please fill in all fields"})
		default:
			log.Error().Err(err).Msg("register user failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create account"})
		}
		return
	}

	token, exp, err := s.auth.Tokens.Sign(user)
	if err != nil {
		log.Error().Err(err).Msg("create jwt failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.Header("Authorization", "Bearer "+token)
	ctx.JSON(http.StatusCreated, sessionResponse{Token: token, ExpiresAt: exp, User: user})
}

func (s *Server) Login(ctx *gin.Context) {
	log := logger.Get()
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Please enter both email and password"})
		return
	}
	token, exp, user, err := s.auth.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		log.Error().Err(err).Msg("login failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to log in"})
		return
	}
	ctx.Header("Authorization", "Bearer "+token)
	ctx.JSON(http.StatusOK, sessionResponse{Token: token, ExpiresAt: exp, User: user})
}

func (s *Server) Logout(ctx *gin.Context) {
	log := logger.Get()
	if err := s.auth.Logout(ctx.Request.Context(), ctx.GetString(ctxUID)); err != nil {
		log.Error().Err(err).Msg("logout failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to log out"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) UserInfo(ctx *gin.Context) {
	log := logger.Get()
	uid := ctx.GetString(ctxUID)
	user, err := s.storage.GetUser(ctx.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, storerrros.ErrUserNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("failed get user from db")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch user details"})
		return
	}
	ctx.JSON(http.StatusOK, user.Public())
}

func (s *Server) UpdateProfile(ctx *gin.Context) {
	log := logger.Get()
	var req auth.Profile
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	user, err := s.auth.UpdateProfile(ctx.Request.Context(), ctx.GetString(ctxUID), req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required"})
		case errors.Is(err, auth.ErrUserExists):
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		case errors.Is(err, storerrros.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			log.Error().Err(err).Msg("update profile failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		}
		return
	}
	ctx.JSON(http.StatusOK, user)
}
