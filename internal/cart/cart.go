// Package cart implements the cart mutations and the order pricing rules.
// Functions here mutate the cart value they are given; persisting it is the
// caller's job.
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 99")
)

// BookLookup is satisfied by *catalog.Catalog.
type BookLookup interface {
	Book(id string) (models.Book, bool)
}

// New returns an empty cart with a fresh id, owned by uid (empty for guests).
func New(uid string) models.Cart {
	return models.Cart{
		CartID:    uuid.New().String(),
		UID:       uid,
		Lines:     make([]models.CartLine, 0),
		UpdatedAt: time.Now().UTC(),
	}
}

// Add puts qty copies of the book into the cart, merging with an existing
// line. An unknown book or a line above consts.MaxLineQuantity leaves the
// cart as it was.
func Add(c *models.Cart, books BookLookup, bookID string, qty int) error {
	log := logger.Get()
	if qty < 1 || qty > consts.MaxLineQuantity {
		return ErrInvalidQuantity
	}
	b, ok := books.Book(bookID)
	if !ok {
		log.Warn().Str("book_id", bookID).Str("cart_id", c.CartID).Msg("add to cart: unknown book")
		return ErrBookNotFound
	}
	if i := index(c, bookID); i >= 0 {
		if c.Lines[i].Quantity > consts.MaxLineQuantity-qty {
			return ErrInvalidQuantity
		}
		c.Lines[i].Quantity += qty
	} else {
		c.Lines = append(c.Lines, models.CartLine{
			BookID:     b.ID,
			Title:      b.Title,
			Author:     b.Author,
			Price:      b.Price,
			CoverColor: b.CoverColor,
			Quantity:   qty,
		})
	}
	touch(c)
	return nil
}

// UpdateQuantity sets the line quantity; qty <= 0 removes the line. A book
// that is not in the cart is ignored.
func UpdateQuantity(c *models.Cart, bookID string, qty int) error {
	if qty > consts.MaxLineQuantity {
		return ErrInvalidQuantity
	}
	i := index(c, bookID)
	if i < 0 {
		return nil
	}
	if qty <= 0 {
		Remove(c, bookID)
		return nil
	}
	c.Lines[i].Quantity = qty
	touch(c)
	return nil
}

func Remove(c *models.Cart, bookID string) {
	i := index(c, bookID)
	if i < 0 {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	touch(c)
}

func Clear(c *models.Cart) {
	c.Lines = make([]models.CartLine, 0)
	touch(c)
}

// ItemCount is the badge number: the sum of all quantities.
func ItemCount(c models.Cart) int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func IsEmpty(c models.Cart) bool {
	return len(c.Lines) == 0
}

func index(c *models.Cart, bookID string) int {
	for i, l := range c.Lines {
		if l.BookID == bookID {
			return i
		}
	}
	return -1
}

func touch(c *models.Cart) {
	c.UpdatedAt = time.Now().UTC()
}
