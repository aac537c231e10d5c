package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Book struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	Genre         string          `json:"genre"`
	Subgenre      string          `json:"subgenre"`
	Price         decimal.Decimal `json:"price"`
	Rating        float64         `json:"rating"`
	RatingCount   int             `json:"ratingCount"`
	Description   string          `json:"description"`
	PublishedDate string          `json:"publishedDate"`
	Language      string          `json:"language"`
	Pages         int             `json:"pages"`
	CoverColor    string          `json:"coverColor"`
}

// CartLine keeps a snapshot of the book display fields taken when the line
// was first added.
type CartLine struct {
	BookID     string          `json:"bookId"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Price      decimal.Decimal `json:"price"`
	CoverColor string          `json:"coverColor"`
	Quantity   int             `json:"quantity"`
}

type Cart struct {
	CartID    string     `json:"cart_id"`
	UID       string     `json:"uuid,omitempty"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

func (a Address) IsEmpty() bool {
	return a.Street == ""
}

type User struct {
	UID          string    `json:"uuid,omitempty"`
	CartID       string    `json:"cart_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Pass         string    `json:"pass,omitempty"`
	Phone        string    `json:"phone"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	TokenVersion int       `json:"token_version"`
}

// Public returns the copy of the user that may leave the service.
func (u User) Public() User {
	u.Pass = ""
	return u
}

type PaymentInfo struct {
	CardType string `json:"cardType"`
	LastFour string `json:"lastFour"`
}

type Order struct {
	OrderID         string      `json:"orderId"`
	UID             string      `json:"userId"`
	CreatedAt       time.Time   `json:"date"`
	Items           []CartLine  `json:"items"`
	Totals                      // subtotal, tax, shipping, total
	ShippingAddress Address     `json:"shippingAddress"`
	PaymentMethod   PaymentInfo `json:"paymentMethod"`
	Status          string      `json:"status"`
}

type Review struct {
	ReviewID  string    `json:"review_id,omitempty"`
	BookID    string    `json:"book_id"`
	UID       string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Preferences struct {
	Language string `json:"language"`
	DarkMode bool   `json:"dark_mode"`
}
