// Package checkout turns a cart into an order: form validation, the
// checkout state machine, pricing and order persistence.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/azaliaz/bookhaven/internal/cart"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
)

var (
	ErrLoginRequired = errors.New("please log in to complete your order")
	ErrEmptyCart     = errors.New("your cart is empty")
	ErrForeignCart   = errors.New("cart belongs to another user")
)

const (
	RedirectLogin   = "login"
	RedirectCatalog = "catalog"
)

// Redirect names the page a client should move to after err, if any.
func Redirect(err error) string {
	switch {
	case errors.Is(err, ErrLoginRequired):
		return RedirectLogin
	case errors.Is(err, ErrEmptyCart):
		return RedirectCatalog
	}
	return ""
}

type Summary struct {
	Form   Form          `json:"form"`
	Cart   models.Cart   `json:"cart"`
	Totals models.Totals `json:"totals"`
}

type Service struct {
	Users  UserRepo
	Carts  CartRepo
	Orders OrderRepo

	valid *validator.Validate
	now   func() time.Time
}

func NewService(users UserRepo, carts CartRepo, orders OrderRepo, valid *validator.Validate) *Service {
	if valid == nil {
		valid = NewValidator()
	}
	return &Service{
		Users:  users,
		Carts:  carts,
		Orders: orders,
		valid:  valid,
		now:    time.Now,
	}
}

// Summary is the checkout page before submission: the cart, its totals and
// a form prefilled from the profile.
func (s *Service) Summary(ctx context.Context, uid, cartID string) (Summary, error) {
	user, c, err := s.load(ctx, uid, cartID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Form:   PrefillForm(user),
		Cart:   c,
		Totals: cart.CalculateTotals(c.Lines),
	}, nil
}

// PlaceOrder runs the whole flow for one submission. cartID may be empty to
// use the user's own cart.
func (s *Service) PlaceOrder(ctx context.Context, uid, cartID string, form Form) (models.Order, error) {
	log := logger.Get()
	user, c, err := s.load(ctx, uid, cartID)
	if err != nil {
		return models.Order{}, err
	}

	flow := NewFlow()
	if err := flow.Fill(form); err != nil {
		return models.Order{}, err
	}
	if err := flow.Validate(s.valid); err != nil {
		return models.Order{}, err
	}
	form = flow.Form()

	order := NewOrder(user.UID, c, form, s.now())
	if err := s.Orders.SaveOrder(ctx, order); err != nil {
		return models.Order{}, fmt.Errorf("save order: %w", err)
	}
	if err := flow.Place(); err != nil {
		return models.Order{}, err
	}

	if addressWriteBack(user) {
		user.Address = form.Address
		if err := s.Users.UpdateUser(ctx, user); err != nil {
			log.Error().Err(err).Str("uid", user.UID).Msg("save shipping address to profile")
		}
	}

	cart.Clear(&c)
	if err := s.Carts.SaveCart(ctx, c); err != nil {
		log.Error().Err(err).Str("cart_id", c.CartID).Msg("clear cart after order")
	}
	log.Info().Str("order_id", order.OrderID).Str("uid", user.UID).Str("total", order.Total.StringFixed(2)).Msg("order placed")
	return order, nil
}

func (s *Service) load(ctx context.Context, uid, cartID string) (models.User, models.Cart, error) {
	if uid == "" {
		return models.User{}, models.Cart{}, ErrLoginRequired
	}
	user, err := s.Users.GetUser(ctx, uid)
	if err != nil {
		return models.User{}, models.Cart{}, fmt.Errorf("get user: %w", err)
	}
	if cartID == "" {
		cartID = user.CartID
	}
	c, err := s.Carts.GetCart(ctx, cartID)
	if err != nil {
		return models.User{}, models.Cart{}, fmt.Errorf("get cart: %w", err)
	}
	if c.UID != "" && c.UID != user.UID {
		return models.User{}, models.Cart{}, ErrForeignCart
	}
	if cart.IsEmpty(c) {
		return models.User{}, models.Cart{}, ErrEmptyCart
	}
	return user, c, nil
}
