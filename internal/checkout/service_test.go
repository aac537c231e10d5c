package checkout

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

var errNotFound = errors.New("not found")

type fakeRepo struct {
	users  map[string]models.User
	carts  map[string]models.Cart
	orders []models.Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]models.User{}, carts: map[string]models.Cart{}}
}

func (r *fakeRepo) GetUser(_ context.Context, uid string) (models.User, error) {
	u, ok := r.users[uid]
	if !ok {
		return models.User{}, errNotFound
	}
	return u, nil
}

func (r *fakeRepo) UpdateUser(_ context.Context, u models.User) error {
	r.users[u.UID] = u
	return nil
}

func (r *fakeRepo) GetCart(_ context.Context, id string) (models.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return models.Cart{}, errNotFound
	}
	return c, nil
}

func (r *fakeRepo) SaveCart(_ context.Context, c models.Cart) error {
	r.carts[c.CartID] = c
	return nil
}

func (r *fakeRepo) SaveOrder(_ context.Context, o models.Order) error {
	r.orders = append(r.orders, o)
	return nil
}

func seeded() (*fakeRepo, *Service) {
	repo := newFakeRepo()
	repo.users["u1"] = models.User{UID: "u1", CartID: "c1", Name: "Jane", Email: "jane@example.com"}
	repo.carts["c1"] = models.Cart{CartID: "c1", UID: "u1", Lines: []models.CartLine{
		{BookID: "b1", Title: "One", Price: decimal.RequireFromString("20.00"), Quantity: 2},
	}}
	svc := NewService(repo, repo, repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	return repo, svc
}

func TestPlaceOrder(t *testing.T) {
	repo, svc := seeded()

	order, err := svc.PlaceOrder(context.Background(), "u1", "", validForm())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.OrderID, "BH-"))
	assert.Equal(t, "u1", order.UID)
	assert.Equal(t, "processing", order.Status)
	assert.Equal(t, models.PaymentInfo{CardType: "VISA", LastFour: "1111"}, order.PaymentMethod)

	want := models.Totals{
		Subtotal: decimal.RequireFromString("40.00"),
		Tax:      decimal.RequireFromString("2.00"),
		Shipping: decimal.RequireFromString("5.99"),
		Total:    decimal.RequireFromString("47.99"),
	}
	for _, got := range []models.Totals{order.Totals, RecomputeTotals(order)} {
		assert.True(t, want.Subtotal.Equal(got.Subtotal), got.Subtotal.String())
		assert.True(t, want.Tax.Equal(got.Tax), got.Tax.String())
		assert.True(t, want.Shipping.Equal(got.Shipping), got.Shipping.String())
		assert.True(t, want.Total.Equal(got.Total), got.Total.String())
	}

	require.Len(t, repo.orders, 1)
	assert.Empty(t, repo.carts["c1"].Lines)
	assert.Equal(t, "1 Main St", repo.users["u1"].Address.Street)
}

func TestPlaceOrder_KeepsExistingAddress(t *testing.T) {
	repo, svc := seeded()
	u := repo.users["u1"]
	u.Address = models.Address{Street: "9 Old Rd", City: "Old", State: "OS", Zip: "1", Country: "UK"}
	repo.users["u1"] = u

	_, err := svc.PlaceOrder(context.Background(), "u1", "c1", validForm())
	require.NoError(t, err)
	assert.Equal(t, "9 Old Rd", repo.users["u1"].Address.Street)
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	repo, svc := seeded()

	_, err := svc.PlaceOrder(context.Background(), "", "c1", validForm())
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, RedirectLogin, Redirect(err))

	repo.carts["c1"] = models.Cart{CartID: "c1", UID: "u1"}
	_, err = svc.PlaceOrder(context.Background(), "u1", "", validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, RedirectCatalog, Redirect(err))

	repo.carts["c2"] = models.Cart{CartID: "c2", UID: "u2", Lines: []models.CartLine{{BookID: "b1", Quantity: 1}}}
	_, err = svc.PlaceOrder(context.Background(), "u1", "c2", validForm())
	assert.ErrorIs(t, err, ErrForeignCart)
	assert.Empty(t, Redirect(err))
}

func TestPlaceOrder_InvalidFormKeepsCart(t *testing.T) {
	repo, svc := seeded()
	f := validForm()
	f.Payment.CardNumber = "411111111111111"

	_, err := svc.PlaceOrder(context.Background(), "u1", "", f)
	assert.ErrorIs(t, err, ErrInvalidForm)
	assert.Empty(t, repo.orders)
	assert.Len(t, repo.carts["c1"].Lines, 1)
}

func TestSummary(t *testing.T) {
	_, svc := seeded()
	s, err := svc.Summary(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "Jane", s.Form.Name)
	assert.Equal(t, "jane@example.com", s.Form.Email)
	assert.Equal(t, "40.00", s.Totals.Subtotal.StringFixed(2))
}
