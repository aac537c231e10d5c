// Package catalog holds the immutable book catalog and the pure query
// functions over it: filtering, search, suggestions and the curated
// collections shown on the storefront.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/azaliaz/bookhaven/internal/domain/models"
)

//go:embed data/books.json
var defaultBooks []byte

var (
	ErrDuplicateBook = errors.New("duplicate book id")
	ErrInvalidBook   = errors.New("invalid book record")
)

// Catalog is read-only once built and safe for concurrent use.
type Catalog struct {
	books []models.Book
	byID  map[string]int
}

func New(books []models.Book) (*Catalog, error) {
	c := &Catalog{
		books: make([]models.Book, 0, len(books)),
		byID:  make(map[string]int, len(books)),
	}
	for _, b := range books {
		if err := check(b); err != nil {
			return nil, err
		}
		if _, ok := c.byID[b.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBook, b.ID)
		}
		c.byID[b.ID] = len(c.books)
		c.books = append(c.books, b)
	}
	return c, nil
}

func check(b models.Book) error {
	switch {
	case strings.TrimSpace(b.ID) == "":
		return fmt.Errorf("%w: empty id", ErrInvalidBook)
	case b.Price.IsNegative():
		return fmt.Errorf("%w: %s: negative price", ErrInvalidBook, b.ID)
	case b.Rating < 0 || b.Rating > 5:
		return fmt.Errorf("%w: %s: rating out of range", ErrInvalidBook, b.ID)
	case b.RatingCount < 0:
		return fmt.Errorf("%w: %s: negative rating count", ErrInvalidBook, b.ID)
	case b.Pages <= 0:
		return fmt.Errorf("%w: %s: pages must be positive", ErrInvalidBook, b.ID)
	}
	return nil
}

// Load decodes a JSON array of books.
func Load(r io.Reader) (*Catalog, error) {
	var books []models.Book
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(books)
}

// LoadFile reads the catalog from path, or the embedded catalog when path is
// empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultBooks))
}

func (c *Catalog) Len() int {
	return len(c.books)
}

// All returns a copy of the catalog in catalog order.
func (c *Catalog) All() []models.Book {
	out := make([]models.Book, len(c.books))
	copy(out, c.books)
	return out
}

func (c *Catalog) Book(id string) (models.Book, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.Book{}, false
	}
	return c.books[i], true
}

// Genres lists the distinct genres in order of first appearance.
func (c *Catalog) Genres() []string {
	seen := make(map[string]struct{})
	genres := make([]string, 0)
	for _, b := range c.books {
		if _, ok := seen[b.Genre]; ok {
			continue
		}
		seen[b.Genre] = struct{}{}
		genres = append(genres, b.Genre)
	}
	return genres
}
