package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookhaven/internal/checkout"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

type checkoutRequest struct {
	CartID string `json:"cart_id"`
	checkout.Form
}

// checkoutError maps a checkout failure to a response. It reports false for
// errors it does not know.
func checkoutError(ctx *gin.Context, err error) bool {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, checkout.ErrLoginRequired):
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Please log in to complete your order", "redirect": checkout.Redirect(err)})
	case errors.Is(err, checkout.ErrEmptyCart):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty", "redirect": checkout.Redirect(err)})
	case errors.Is(err, checkout.ErrForeignCart):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, storerrros.ErrCartNotExist):
		ctx.JSON(http.StatusNotFound, gin.H{"error": storerrros.ErrCartNotExist.Error()})
	case errors.Is(err, storerrros.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": storerrros.ErrUserNotFound.Error()})
	default:
		return false
	}
	return true
}

func (s *Server) CheckoutSummary(ctx *gin.Context) {
	log := logger.Get()
	sum, err := s.checkout.Summary(ctx.Request.Context(), ctx.GetString(ctxUID), ctx.Query("cart_id"))
	if err != nil {
		if checkoutError(ctx, err) {
			return
		}
		log.Error().Err(err).Msg("checkout summary failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to prepare checkout"})
		return
	}
	ctx.JSON(http.StatusOK, sum)
}

func (s *Server) PlaceOrder(ctx *gin.Context) {
	log := logger.Get()
	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	order, err := s.checkout.PlaceOrder(ctx.Request.Context(), ctx.GetString(ctxUID), req.CartID, req.Form)
	if err != nil {
		if checkoutError(ctx, err) {
			return
		}
		log.Error().Err(err).Msg("place order failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to place order"})
		return
	}
	ctx.JSON(http.StatusCreated, order)
}

func (s *Server) Orders(ctx *gin.Context) {
	log := logger.Get()
	orders, err := s.storage.GetOrders(ctx.Request.Context(), ctx.GetString(ctxUID))
	if err != nil {
		log.Error().Err(err).Msg("get orders failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load orders"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) OrderInfo(ctx *gin.Context) {
	log := logger.Get()
	order, err := s.storage.GetOrder(ctx.Request.Context(), ctx.GetString(ctxUID), ctx.Param("order_id"))
	if err != nil {
		if errors.Is(err, storerrros.ErrOrderNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("get order failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load order"})
		return
	}
	ctx.JSON(http.StatusOK, order)
}
