package consts

import "time"

const (
	DBCtxTimeout      = 5 * time.Second
	CoverFetchTimeout = 5 * time.Second
	ShutdownTimeout   = 10 * time.Second

	SuggestionLimit     = 5
	HistoryLimit        = 10
	RecentlyViewedLimit = 10
	BooksPerPage        = 8
	CollectionLimit     = 12
	MaxLineQuantity     = 99

	OrderStatusProcessing = "processing"
	DefaultLanguage       = "en"
)

// Languages the storefront has string tables for.
var Languages = []string{"en", "hi"} //nolint:gochecknoglobals // read-only
