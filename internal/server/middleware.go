package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookhaven/internal/auth"
	"github.com/azaliaz/bookhaven/internal/logger"
)

const ctxUID = "uid"

func bearer(ctx *gin.Context) (string, bool) {
	h := ctx.GetHeader("Authorization")
	parts := strings.Fields(h)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func (s *Server) JWTAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log := logger.Get()
		if ctx.GetHeader("Authorization") == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "redirect": "login"})
			return
		}
		token, ok := bearer(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}
		claims, err := s.auth.Verify(ctx.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				log.Error().Err(err).Msg("verify token failed")
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Unable to verify session"})
				return
			}
			log.Debug().Err(err).Msg("validate jwt failed")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "redirect": "login"})
			return
		}
		ctx.Set(ctxUID, claims.UserID)
		ctx.Next()
	}
}

// OptionalAuth sets the uid when a valid token comes with the request and
// lets guests through otherwise.
func (s *Server) OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token, ok := bearer(ctx); ok {
			if claims, err := s.auth.Verify(ctx.Request.Context(), token); err == nil {
				ctx.Set(ctxUID, claims.UserID)
			}
		}
		ctx.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()
		logger.Get().Debug().
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.URL.Path).
			Int("status", ctx.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
