package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/azaliaz/bookhaven/internal/cart"
	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
)

const orderPrefix = "BH-"

func NewOrderID() string {
	return orderPrefix + uuid.New().String()
}

// NewOrder snapshots the cart lines and prices them. The form must already
// be validated.
func NewOrder(uid string, c models.Cart, form Form, now time.Time) models.Order {
	items := make([]models.CartLine, len(c.Lines))
	copy(items, c.Lines)
	return models.Order{
		OrderID:         NewOrderID(),
		UID:             uid,
		CreatedAt:       now.UTC(),
		Items:           items,
		Totals:          cart.CalculateTotals(items),
		ShippingAddress: form.Address,
		PaymentMethod:   MaskCard(form.Payment.CardNumber),
		Status:          consts.OrderStatusProcessing,
	}
}

// RecomputeTotals prices the order items again, e.g. to check a stored order.
func RecomputeTotals(o models.Order) models.Totals {
	return cart.CalculateTotals(o.Items)
}

// PrefillForm fills the checkout form from the profile on file.
func PrefillForm(u models.User) Form {
	return Form{
		Name:    u.Name,
		Email:   u.Email,
		Address: u.Address,
	}
}

// addressWriteBack reports whether the shipping address should be saved to
// the profile: only when none is on file yet.
func addressWriteBack(u models.User) bool {
	return u.Address.IsEmpty()
}
