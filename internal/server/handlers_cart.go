package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azaliaz/bookhaven/internal/cart"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

type cartView struct {
	Cart      models.Cart   `json:"cart"`
	Totals    models.Totals `json:"totals"`
	ItemCount int           `json:"item_count"`
}

func view(c models.Cart) cartView {
	return cartView{Cart: c, Totals: cart.CalculateTotals(c.Lines), ItemCount: cart.ItemCount(c)}
}

type addItemRequest struct {
	BookID   string `json:"book_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0,lte=99"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,lte=99"`
}

// loadCart fetches the cart and enforces ownership: guest carts are open to
// anyone holding the id, user carts only to their owner.
func (s *Server) loadCart(ctx *gin.Context) (models.Cart, bool) {
	log := logger.Get()
	c, err := s.storage.GetCart(ctx.Request.Context(), ctx.Param("cart_id"))
	if err != nil {
		if errors.Is(err, storerrros.ErrCartNotExist) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return models.Cart{}, false
		}
		log.Error().Err(err).Msg("get cart failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load cart"})
		return models.Cart{}, false
	}
	if c.UID != "" && c.UID != ctx.GetString(ctxUID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "cart belongs to another user"})
		return models.Cart{}, false
	}
	return c, true
}

func (s *Server) saveCart(ctx *gin.Context, c models.Cart, status int) {
	if err := s.storage.SaveCart(ctx.Request.Context(), c); err != nil {
		logger.Get().Error().Err(err).Str("cart_id", c.CartID).Msg("save cart failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to save cart"})
		return
	}
	ctx.JSON(status, view(c))
}

// CreateCart opens a new cart. Signed-in users get their own cart back
// instead of a second one.
func (s *Server) CreateCart(ctx *gin.Context) {
	uid := ctx.GetString(ctxUID)
	if uid != "" {
		user, err := s.storage.GetUser(ctx.Request.Context(), uid)
		if err == nil && user.CartID != "" {
			if c, err := s.storage.GetCart(ctx.Request.Context(), user.CartID); err == nil {
				ctx.JSON(http.StatusOK, view(c))
				return
			}
		}
	}
	s.saveCart(ctx, cart.New(uid), http.StatusCreated)
}

func (s *Server) GetCart(ctx *gin.Context) {
	c, ok := s.loadCart(ctx)
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, view(c))
}

func (s *Server) AddCartItem(ctx *gin.Context) {
	c, ok := s.loadCart(ctx)
	if !ok {
		return
	}
	var req addItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "incorrectly entered data"})
		return
	}
	if err := s.valid.Struct(req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "book_id is required and quantity must be between 0 and 99"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if err := cart.Add(&c, s.catalog, req.BookID, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrBookNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.saveCart(ctx, c, http.StatusOK)
}

func (s *Server) UpdateCartItem(ctx *gin.Context) {
	c, ok := s.loadCart(ctx)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || s.valid.Struct(req) != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required and must be at most 99"})
		return
	}
	if err := cart.UpdateQuantity(&c, ctx.Param("book_id"), *req.Quantity); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.saveCart(ctx, c, http.StatusOK)
}

func (s *Server) RemoveCartItem(ctx *gin.Context) {
	c, ok := s.loadCart(ctx)
	if !ok {
		return
	}
	cart.Remove(&c, ctx.Param("book_id"))
	s.saveCart(ctx, c, http.StatusOK)
}

// ClearCart empties a user's cart and drops a guest cart altogether.
func (s *Server) ClearCart(ctx *gin.Context) {
	c, ok := s.loadCart(ctx)
	if !ok {
		return
	}
	if c.UID == "" {
		if err := s.storage.DeleteCart(ctx.Request.Context(), c.CartID); err != nil {
			logger.Get().Error().Err(err).Str("cart_id", c.CartID).Msg("delete cart failed")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete cart"})
			return
		}
		ctx.Status(http.StatusNoContent)
		return
	}
	cart.Clear(&c)
	s.saveCart(ctx, c, http.StatusOK)
}
