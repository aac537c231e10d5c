package cart

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
)

type books map[string]models.Book

func (b books) Book(id string) (models.Book, bool) {
	x, ok := b[id]
	return x, ok
}

var shelf = books{
	"b1": {ID: "b1", Title: "One", Author: "A", Price: decimal.RequireFromString("20.00"), CoverColor: "#111"},
	"b2": {ID: "b2", Title: "Two", Author: "B", Price: decimal.RequireFromString("10.00")},
}

func TestAdd_MergesLines(t *testing.T) {
	c := New("")
	require.NoError(t, Add(&c, shelf, "b1", 1))
	require.NoError(t, Add(&c, shelf, "b1", 2))

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, "One", c.Lines[0].Title)
	assert.Equal(t, "#111", c.Lines[0].CoverColor)
	assert.Equal(t, 3, ItemCount(c))
}

func TestAdd_UnknownBook(t *testing.T) {
	c := New("u1")
	require.NoError(t, Add(&c, shelf, "b2", 1))
	before := c.UpdatedAt

	err := Add(&c, shelf, "missing", 1)
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Len(t, c.Lines, 1)
	assert.Equal(t, before, c.UpdatedAt)
}

func TestAdd_InvalidQuantity(t *testing.T) {
	c := New("")
	assert.ErrorIs(t, Add(&c, shelf, "b1", 0), ErrInvalidQuantity)
	assert.True(t, IsEmpty(c))
}

func TestAdd_QuantityCap(t *testing.T) {
	c := New("")
	assert.ErrorIs(t, Add(&c, shelf, "b1", math.MaxInt), ErrInvalidQuantity)
	assert.True(t, IsEmpty(c))

	require.NoError(t, Add(&c, shelf, "b1", consts.MaxLineQuantity-1))
	assert.ErrorIs(t, Add(&c, shelf, "b1", 2), ErrInvalidQuantity)
	assert.ErrorIs(t, Add(&c, shelf, "b1", consts.MaxLineQuantity), ErrInvalidQuantity)
	assert.Equal(t, consts.MaxLineQuantity-1, c.Lines[0].Quantity)

	require.NoError(t, Add(&c, shelf, "b1", 1))
	assert.Equal(t, consts.MaxLineQuantity, c.Lines[0].Quantity)
	assert.True(t, CalculateTotals(c.Lines).Total.IsPositive())

	assert.ErrorIs(t, UpdateQuantity(&c, "b1", math.MaxInt), ErrInvalidQuantity)
	assert.Equal(t, consts.MaxLineQuantity, c.Lines[0].Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	c := New("")
	require.NoError(t, Add(&c, shelf, "b1", 1))
	require.NoError(t, Add(&c, shelf, "b2", 1))

	require.NoError(t, UpdateQuantity(&c, "b2", 4))
	assert.Equal(t, 4, c.Lines[1].Quantity)

	require.NoError(t, UpdateQuantity(&c, "b1", 0))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "b2", c.Lines[0].BookID)
	assert.True(t, decimal.RequireFromString("40").Equal(CalculateTotals(c.Lines).Subtotal))

	require.NoError(t, UpdateQuantity(&c, "missing", 3))
	assert.Len(t, c.Lines, 1)
}

func TestRemoveAndClear(t *testing.T) {
	c := New("")
	require.NoError(t, Add(&c, shelf, "b1", 1))
	Remove(&c, "b1")
	Remove(&c, "b1")
	assert.True(t, IsEmpty(c))

	require.NoError(t, Add(&c, shelf, "b2", 2))
	Clear(&c)
	assert.Equal(t, 0, ItemCount(c))
	assert.NotNil(t, c.Lines)
}
