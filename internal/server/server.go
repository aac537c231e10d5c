package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/azaliaz/bookhaven/internal/auth"
	"github.com/azaliaz/bookhaven/internal/catalog"
	"github.com/azaliaz/bookhaven/internal/checkout"
	"github.com/azaliaz/bookhaven/internal/config"
	"github.com/azaliaz/bookhaven/internal/covers"
	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
)

//go:generate mockgen -source=server.go -destination=./mocks/storage_mock.go -package=mocks

type UserStorage interface {
	SaveUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, uid string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	BumpTokenVersion(ctx context.Context, uid string) error
}

type CartStorage interface {
	SaveCart(ctx context.Context, cart models.Cart) error
	GetCart(ctx context.Context, cartID string) (models.Cart, error)
	DeleteCart(ctx context.Context, cartID string) error
}

type OrderStorage interface {
	SaveOrder(ctx context.Context, order models.Order) error
	GetOrders(ctx context.Context, uid string) ([]models.Order, error)
	GetOrder(ctx context.Context, uid, orderID string) (models.Order, error)
}

type ReviewStorage interface {
	AddReview(ctx context.Context, review models.Review) error
	GetReviews(ctx context.Context, bookID string) ([]models.Review, error)
}

type ListStorage interface {
	AddToWishlist(ctx context.Context, uid, bookID string) error
	RemoveFromWishlist(ctx context.Context, uid, bookID string) error
	GetWishlist(ctx context.Context, uid string) ([]string, error)
	PushSearchHistory(ctx context.Context, uid, query string) error
	GetSearchHistory(ctx context.Context, uid string) ([]string, error)
	PushRecentlyViewed(ctx context.Context, uid, bookID string) error
	GetRecentlyViewed(ctx context.Context, uid string) ([]string, error)
	GetPreferences(ctx context.Context, uid string) (models.Preferences, error)
	SavePreferences(ctx context.Context, uid string, prefs models.Preferences) error
	Subscribe(ctx context.Context, email string) error
}

type Storage interface {
	UserStorage
	CartStorage
	OrderStorage
	ReviewStorage
	ListStorage
}

type Server struct {
	serv     *http.Server
	valid    *validator.Validate
	storage  Storage
	catalog  *catalog.Catalog
	covers   *covers.Resolver
	auth     *auth.Service
	checkout *checkout.Service
	now      func() time.Time
	ErrChan  chan error
}

// New wires the services around one storage backend. A nil resolver means
// covers are served from the precomputed table without remote checks.
func New(cfg config.Config, stor Storage, cat *catalog.Catalog, res *covers.Resolver) *Server {
	server := http.Server{ //nolint:gosec // timeouts are set below
		Addr:              cfg.Addr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if res == nil {
		res = covers.MustNew(covers.WithLookup(false))
	}
	valid := checkout.NewValidator()
	tokens := auth.TokenService{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   "bookhaven",
		Duration: cfg.TokenTTL,
	}
	return &Server{
		serv:     &server,
		valid:    valid,
		storage:  stor,
		catalog:  cat,
		covers:   res,
		auth:     auth.NewService(stor, stor, tokens),
		checkout: checkout.NewService(stor, stor, stor, valid),
		now:      time.Now,
		ErrChan:  make(chan error, 1),
	}
}

func (s *Server) ShutdownServer() error {
	ctx, cancel := context.WithTimeout(context.Background(), consts.ShutdownTimeout)
	defer cancel()
	return s.serv.Shutdown(ctx)
}

// Run serves until ctx is cancelled. Listener failures are reported on
// ErrChan.
func (s *Server) Run(ctx context.Context) error {
	log := logger.Get()
	s.serv.Handler = s.Router()
	go func() {
		log.Info().Str("host", s.serv.Addr).Msg("server started")
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.ErrChan <- err
		}
	}()
	<-ctx.Done()
	log.Info().Msg("shutting down server")
	return s.ShutdownServer()
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Authorization"},
		MaxAge:        12 * time.Hour,
	}))
	router.GET("/health", func(ctx *gin.Context) { ctx.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	books := router.Group("/books", s.OptionalAuth())
	{
		books.GET("", s.ListBooks)
		books.GET("/genres", s.Genres)
		books.GET("/search", s.SearchBooks)
		books.GET("/suggest", s.Suggest)
		books.GET("/new-arrivals", s.NewArrivals)
		books.GET("/bestsellers", s.Bestsellers)
		books.GET("/:id", s.BookInfo)
		books.GET("/:id/cover", s.BookCover)
		books.GET("/:id/reviews", s.BookReviews)
		books.POST("/:id/reviews", s.JWTAuthMiddleware(), s.AddReview)
	}
	router.POST("/newsletter", s.Subscribe)

	users := router.Group("/users")
	{
		users.POST("/register", s.Register)
		users.POST("/login", s.Login)
		users.POST("/logout", s.JWTAuthMiddleware(), s.Logout)
		users.GET("/info", s.JWTAuthMiddleware(), s.UserInfo)
		users.PUT("/profile", s.JWTAuthMiddleware(), s.UpdateProfile)
		users.GET("/wishlist", s.JWTAuthMiddleware(), s.Wishlist)
		users.POST("/wishlist/:book_id", s.JWTAuthMiddleware(), s.AddToWishlist)
		users.DELETE("/wishlist/:book_id", s.JWTAuthMiddleware(), s.RemoveFromWishlist)
		users.GET("/search-history", s.JWTAuthMiddleware(), s.SearchHistory)
		users.GET("/recently-viewed", s.JWTAuthMiddleware(), s.RecentlyViewed)
		users.GET("/preferences", s.JWTAuthMiddleware(), s.Preferences)
		users.PUT("/preferences", s.JWTAuthMiddleware(), s.SavePreferences)
	}

	carts := router.Group("/carts", s.OptionalAuth())
	{
		carts.POST("", s.CreateCart)
		carts.GET("/:cart_id", s.GetCart)
		carts.POST("/:cart_id/items", s.AddCartItem)
		carts.PUT("/:cart_id/items/:book_id", s.UpdateCartItem)
		carts.DELETE("/:cart_id/items/:book_id", s.RemoveCartItem)
		carts.DELETE("/:cart_id", s.ClearCart)
	}

	router.GET("/checkout/summary", s.JWTAuthMiddleware(), s.CheckoutSummary)
	router.POST("/checkout", s.JWTAuthMiddleware(), s.PlaceOrder)

	orders := router.Group("/orders", s.JWTAuthMiddleware())
	{
		orders.GET("", s.Orders)
		orders.GET("/:order_id", s.OrderInfo)
	}
	return router
}
