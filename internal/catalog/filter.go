package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

var ErrUnknownFilter = errors.New("unknown filter value")

const All = "all"

type PriceBracket string

const (
	PriceAny     PriceBracket = ""
	PriceUnder10 PriceBracket = "under10"
	Price10to20  PriceBracket = "10to20"
	Price20to30  PriceBracket = "20to30"
	PriceOver30  PriceBracket = "over30"
)

var (
	ten    = decimal.NewFromInt(10)
	twenty = decimal.NewFromInt(20)
	thirty = decimal.NewFromInt(30)
)

func ParsePriceBracket(s string) (PriceBracket, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", All:
		return PriceAny, nil
	case string(PriceUnder10), string(Price10to20), string(Price20to30), string(PriceOver30):
		return PriceBracket(v), nil
	}
	return PriceAny, fmt.Errorf("%w: price %q", ErrUnknownFilter, s)
}

// Contains reports whether price falls in the bracket. Inner brackets are
// inclusive at both ends.
func (p PriceBracket) Contains(price decimal.Decimal) bool {
	switch p {
	case PriceUnder10:
		return price.LessThan(ten)
	case Price10to20:
		return price.GreaterThanOrEqual(ten) && price.LessThanOrEqual(twenty)
	case Price20to30:
		return price.GreaterThanOrEqual(twenty) && price.LessThanOrEqual(thirty)
	case PriceOver30:
		return price.GreaterThan(thirty)
	}
	return true
}

// RatingFloor is the minimum rating a book needs; zero means no floor.
type RatingFloor int

func ParseRatingFloor(s string) (RatingFloor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", All:
		return 0, nil
	case "2", "2plus":
		return 2, nil
	case "3", "3plus":
		return 3, nil
	case "4", "4plus":
		return 4, nil
	}
	return 0, fmt.Errorf("%w: rating %q", ErrUnknownFilter, s)
}

type Criteria struct {
	Genre  string
	Price  PriceBracket
	Rating RatingFloor
	Query  string
}

// ParseCriteria builds criteria from raw request values.
func ParseCriteria(genre, price, rating, query string) (Criteria, error) {
	pb, err := ParsePriceBracket(price)
	if err != nil {
		return Criteria{}, err
	}
	rf, err := ParseRatingFloor(rating)
	if err != nil {
		return Criteria{}, err
	}
	return Criteria{Genre: genre, Price: pb, Rating: rf, Query: query}, nil
}

// IsZero reports whether no filter is applied at all.
func (cr Criteria) IsZero() bool {
	return cr.genre() == "" && cr.Price == PriceAny && cr.Rating == 0 && cr.query() == ""
}

func (cr Criteria) genre() string {
	g := strings.TrimSpace(cr.Genre)
	if strings.EqualFold(g, All) {
		return ""
	}
	return g
}

func (cr Criteria) query() string {
	return strings.ToLower(strings.TrimSpace(cr.Query))
}

// Match applies genre, price and rating as hard filters and the text query
// as an additional AND condition.
func (cr Criteria) Match(b models.Book) bool {
	if g := cr.genre(); g != "" && !strings.EqualFold(b.Genre, g) {
		return false
	}
	if !cr.Price.Contains(b.Price) {
		return false
	}
	if cr.Rating > 0 && b.Rating < float64(cr.Rating) {
		return false
	}
	if q := cr.query(); q != "" {
		return containsAny(q, b.Title, b.Author, b.Genre)
	}
	return true
}

// Filter returns the matching books in catalog order. The result is never
// nil.
func (c *Catalog) Filter(cr Criteria) []models.Book {
	out := make([]models.Book, 0)
	for _, b := range c.books {
		if cr.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// ByGenre is Filter with only a genre set.
func (c *Catalog) ByGenre(genre string) []models.Book {
	return c.Filter(Criteria{Genre: genre})
}

func containsAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
