// Package covers finds a working cover image URL for a book. It tries the
// cache, then the precomputed table (primary, fallback), then an Open
// Library search, and finally settles on a placeholder.
package covers

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
)

//go:embed data/covers.json
var defaultTable []byte

const (
	DefaultSearchBase = "https://openlibrary.org"
	DefaultCoverBase  = "https://covers.openlibrary.org"

	placeholderFmt = "https://via.placeholder.com/300x450/%s/ffffff?text=No+Cover"
	defaultColor   = "3a506b"
)

type Source struct {
	Cover    string `json:"cover"`
	Fallback string `json:"fallback"`
}

type Resolver struct {
	client     *resty.Client
	table      map[string]Source
	searchBase string
	coverBase  string
	lookup     bool
	timeout    time.Duration

	mu    sync.RWMutex
	cache map[string]string
}

type Option func(*Resolver)

func WithClient(c *resty.Client) Option {
	return func(r *Resolver) { r.client = c }
}

func WithTable(t map[string]Source) Option {
	return func(r *Resolver) { r.table = t }
}

func WithSearchBase(base string) Option {
	return func(r *Resolver) { r.searchBase = strings.TrimRight(base, "/") }
}

func WithCoverBase(base string) Option {
	return func(r *Resolver) { r.coverBase = strings.TrimRight(base, "/") }
}

// WithLookup turns remote checks on or off. Without them the table primary
// is trusted as is.
func WithLookup(on bool) Option {
	return func(r *Resolver) { r.lookup = on }
}

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

func New(opts ...Option) (*Resolver, error) {
	r := &Resolver{
		searchBase: DefaultSearchBase,
		coverBase:  DefaultCoverBase,
		lookup:     true,
		timeout:    consts.CoverFetchTimeout,
		cache:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.table == nil {
		t, err := LoadTable(defaultTable)
		if err != nil {
			return nil, err
		}
		r.table = t
	}
	if r.client == nil {
		r.client = resty.New()
	}
	return r, nil
}

// MustNew is New for options that cannot fail, such as the embedded table.
func MustNew(opts ...Option) *Resolver {
	r, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func LoadTable(data []byte) (map[string]Source, error) {
	t := make(map[string]Source)
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode cover table: %w", err)
	}
	return t, nil
}

// Placeholder is the last resort image, tinted with the book's cover color.
func Placeholder(coverColor string) string {
	c := strings.TrimPrefix(coverColor, "#")
	if c == "" {
		c = defaultColor
	}
	return fmt.Sprintf(placeholderFmt, c)
}

func (r *Resolver) Cached(bookID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.cache[bookID]
	return u, ok
}

func (r *Resolver) remember(bookID, url string) {
	r.mu.Lock()
	r.cache[bookID] = url
	r.mu.Unlock()
}

// Resolve always returns a URL. Remote failures only show up in debug logs.
// Placeholders are not cached so a later call can still find a real cover.
func (r *Resolver) Resolve(ctx context.Context, b models.Book) string {
	if u, ok := r.Cached(b.ID); ok {
		return u
	}
	log := logger.Get()

	src, inTable := r.table[b.ID]
	if !r.lookup {
		if inTable && src.Cover != "" {
			r.remember(b.ID, src.Cover)
			return src.Cover
		}
		return Placeholder(b.CoverColor)
	}

	if inTable {
		for _, u := range []string{src.Cover, src.Fallback} {
			if u == "" {
				continue
			}
			if err := r.check(ctx, u); err != nil {
				log.Debug().Err(err).Str("book_id", b.ID).Str("url", u).Msg("cover check failed")
				continue
			}
			r.remember(b.ID, u)
			return u
		}
	}

	u, err := r.search(ctx, b.Title, b.Author)
	if err != nil {
		log.Debug().Err(err).Str("book_id", b.ID).Msg("cover search failed")
		return Placeholder(b.CoverColor)
	}
	r.remember(b.ID, u)
	return u
}

func (r *Resolver) check(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("status %d", resp.StatusCode())
	}
	return nil
}

type searchResult struct {
	Docs []struct {
		CoverI int `json:"cover_i"`
	} `json:"docs"`
}

var errNoCover = errors.New("no cover in search result")

func (r *Resolver) search(ctx context.Context, title, author string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var res searchResult
	resp, err := r.client.R().
		SetContext(ctx).
		SetQueryParam("q", strings.Join(strings.Fields(title+" "+author), " ")).
		SetQueryParam("limit", "1").
		SetResult(&res).
		Get(r.searchBase + "/search.json")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("search status %d", resp.StatusCode())
	}
	if len(res.Docs) == 0 || res.Docs[0].CoverI == 0 {
		return "", errNoCover
	}
	return fmt.Sprintf("%s/b/id/%d-M.jpg", r.coverBase, res.Docs[0].CoverI), nil
}

// Prefetch resolves covers for books with at most limit lookups in flight.
// It stops early when ctx is cancelled.
func (r *Resolver) Prefetch(ctx context.Context, books []models.Book, limit int) error {
	if limit <= 0 {
		limit = 8
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, b := range books {
		if gctx.Err() != nil {
			break
		}
		b := b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.Resolve(gctx, b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
