package checkout

import (
	"context"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

type UserRepo interface {
	GetUser(ctx context.Context, uid string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
}

type CartRepo interface {
	GetCart(ctx context.Context, cartID string) (models.Cart, error)
	SaveCart(ctx context.Context, cart models.Cart) error
}

type OrderRepo interface {
	SaveOrder(ctx context.Context, order models.Order) error
}
