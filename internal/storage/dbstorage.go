package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

const (
	listSearchHistory  = "search_history"
	listRecentlyViewed = "recently_viewed"
)

type DBStorage struct {
	pool *pgxpool.Pool
}

func NewDB(ctx context.Context, addr string) (*DBStorage, error) {
	pool, err := pgxpool.New(ctx, addr)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DBStorage{pool: pool}, nil
}

func (dbs *DBStorage) Close() error {
	dbs.pool.Close()
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func (dbs *DBStorage) SaveUser(ctx context.Context, user models.User) (string, error) {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	_, err := dbs.pool.Exec(ctx,
		`INSERT INTO users (uid, cart_id, name, email, pass, phone, address, created_at, token_version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.UID, user.CartID, user.Name, user.Email, user.Pass, user.Phone, user.Address, user.CreatedAt, user.TokenVersion)
	if err != nil {
		if isUniqueViolation(err) {
			return "", storerrros.ErrUserExists
		}
		log.Error().Err(err).Msg("failed to insert user")
		return "", err
	}
	return user.UID, nil
}

const userColumns = "uid, cart_id, name, email, pass, phone, address, created_at, token_version"

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.UID, &u.CartID, &u.Name, &u.Email, &u.Pass, &u.Phone, &u.Address, &u.CreatedAt, &u.TokenVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, storerrros.ErrUserNotFound
	}
	return u, err
}

func (dbs *DBStorage) GetUser(ctx context.Context, uid string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	return scanUser(dbs.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE uid = $1", uid))
}

func (dbs *DBStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	return scanUser(dbs.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email))
}

func (dbs *DBStorage) UpdateUser(ctx context.Context, user models.User) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	tag, err := dbs.pool.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, pass = $4, phone = $5, address = $6
		 WHERE uid = $1`,
		user.UID, user.Name, user.Email, user.Pass, user.Phone, user.Address)
	if err != nil {
		if isUniqueViolation(err) {
			return storerrros.ErrUserExists
		}
		log.Error().Err(err).Msg("failed to update user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrros.ErrUserNotFound
	}
	return nil
}

// BumpTokenVersion invalidates every token issued to the user so far.
func (dbs *DBStorage) BumpTokenVersion(ctx context.Context, uid string) error {
	log := logger.Get()
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	tag, err := dbs.pool.Exec(ctx, "UPDATE users SET token_version = token_version + 1 WHERE uid = $1", uid)
	if err != nil {
		log.Error().Err(err).Msg("failed to bump token version")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrros.ErrUserNotFound
	}
	return nil
}

func (dbs *DBStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (dbs *DBStorage) SaveCart(ctx context.Context, cart models.Cart) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	if cart.Lines == nil {
		cart.Lines = make([]models.CartLine, 0)
	}
	_, err := dbs.pool.Exec(ctx,
		`INSERT INTO carts (cart_id, user_id, lines, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (cart_id) DO UPDATE SET user_id = EXCLUDED.user_id, lines = EXCLUDED.lines, updated_at = EXCLUDED.updated_at`,
		cart.CartID, cart.UID, cart.Lines, cart.UpdatedAt)
	return err
}

func (dbs *DBStorage) GetCart(ctx context.Context, cartID string) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	var c models.Cart
	err := dbs.pool.QueryRow(ctx, "SELECT cart_id, user_id, lines, updated_at FROM carts WHERE cart_id = $1", cartID).
		Scan(&c.CartID, &c.UID, &c.Lines, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Cart{}, storerrros.ErrCartNotExist
	}
	if err != nil {
		return models.Cart{}, err
	}
	if c.Lines == nil {
		c.Lines = make([]models.CartLine, 0)
	}
	return c, nil
}

func (dbs *DBStorage) DeleteCart(ctx context.Context, cartID string) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	tag, err := dbs.pool.Exec(ctx, "DELETE FROM carts WHERE cart_id = $1", cartID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrros.ErrCartNotExist
	}
	return nil
}

func (dbs *DBStorage) SaveOrder(ctx context.Context, o models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	_, err := dbs.pool.Exec(ctx,
		`INSERT INTO orders (order_id, user_id, created_at, items, subtotal, tax, shipping, total, shipping_address, payment, status)
		 VALUES ($1, $2, $3, $4, $5::text::numeric, $6::text::numeric, $7::text::numeric, $8::text::numeric, $9, $10, $11)`,
		o.OrderID, o.UID, o.CreatedAt, o.Items,
		o.Subtotal.String(), o.Tax.String(), o.Shipping.String(), o.Total.String(),
		o.ShippingAddress, o.PaymentMethod, o.Status)
	return err
}

const orderColumns = `order_id, user_id, created_at, items, subtotal::text, tax::text, shipping::text, total::text,
	shipping_address, payment, status`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	var subtotal, tax, shipping, total string
	if err := row.Scan(&o.OrderID, &o.UID, &o.CreatedAt, &o.Items, &subtotal, &tax, &shipping, &total,
		&o.ShippingAddress, &o.PaymentMethod, &o.Status); err != nil {
		return models.Order{}, err
	}
	var err error
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&o.Subtotal, subtotal}, {&o.Tax, tax}, {&o.Shipping, shipping}, {&o.Total, total}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return models.Order{}, fmt.Errorf("parse amount %q: %w", f.src, err)
		}
	}
	return o, nil
}

func (dbs *DBStorage) GetOrders(ctx context.Context, uid string) ([]models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at", uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (dbs *DBStorage) GetOrder(ctx context.Context, uid, orderID string) (models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	o, err := scanOrder(dbs.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 AND order_id = $2", uid, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Order{}, storerrros.ErrOrderNotFound
	}
	return o, err
}

func (dbs *DBStorage) AddReview(ctx context.Context, r models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	_, err := dbs.pool.Exec(ctx,
		`INSERT INTO reviews (review_id, book_id, user_id, user_name, rating, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ReviewID, r.BookID, r.UID, r.UserName, r.Rating, r.Text, r.CreatedAt)
	return err
}

func (dbs *DBStorage) GetReviews(ctx context.Context, bookID string) ([]models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx,
		`SELECT review_id, book_id, user_id, user_name, rating, body, created_at
		 FROM reviews WHERE book_id = $1 ORDER BY created_at DESC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := make([]models.Review, 0)
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ReviewID, &r.BookID, &r.UID, &r.UserName, &r.Rating, &r.Text, &r.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}

func (dbs *DBStorage) AddToWishlist(ctx context.Context, uid, bookID string) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	tag, err := dbs.pool.Exec(ctx,
		"INSERT INTO wishlist (user_id, book_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", uid, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrros.ErrAlreadyInWishlist
	}
	return nil
}

func (dbs *DBStorage) RemoveFromWishlist(ctx context.Context, uid, bookID string) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	tag, err := dbs.pool.Exec(ctx, "DELETE FROM wishlist WHERE user_id = $1 AND book_id = $2", uid, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrros.ErrNotInWishlist
	}
	return nil
}

func (dbs *DBStorage) GetWishlist(ctx context.Context, uid string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	rows, err := dbs.pool.Query(ctx, "SELECT book_id FROM wishlist WHERE user_id = $1 ORDER BY added_at", uid)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = make([]string, 0)
	}
	return list, nil
}

// push updates one most-recent-first list inside a transaction so concurrent
// pushes for the same user do not lose entries.
func (dbs *DBStorage) push(ctx context.Context, uid, kind, v string, limit int) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	return pgx.BeginFunc(ctx, dbs.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"INSERT INTO user_lists (user_id, kind) VALUES ($1, $2) ON CONFLICT DO NOTHING", uid, kind); err != nil {
			return err
		}
		var items []string
		if err := tx.QueryRow(ctx,
			"SELECT items FROM user_lists WHERE user_id = $1 AND kind = $2 FOR UPDATE", uid, kind).Scan(&items); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			"UPDATE user_lists SET items = $3 WHERE user_id = $1 AND kind = $2", uid, kind, pushRecent(items, v, limit))
		return err
	})
}

func (dbs *DBStorage) list(ctx context.Context, uid, kind string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	items := make([]string, 0)
	err := dbs.pool.QueryRow(ctx, "SELECT items FROM user_lists WHERE user_id = $1 AND kind = $2", uid, kind).Scan(&items)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return items, nil
}

func (dbs *DBStorage) PushSearchHistory(ctx context.Context, uid, query string) error {
	return dbs.push(ctx, uid, listSearchHistory, query, consts.HistoryLimit)
}

func (dbs *DBStorage) GetSearchHistory(ctx context.Context, uid string) ([]string, error) {
	return dbs.list(ctx, uid, listSearchHistory)
}

func (dbs *DBStorage) PushRecentlyViewed(ctx context.Context, uid, bookID string) error {
	return dbs.push(ctx, uid, listRecentlyViewed, bookID, consts.RecentlyViewedLimit)
}

func (dbs *DBStorage) GetRecentlyViewed(ctx context.Context, uid string) ([]string, error) {
	return dbs.list(ctx, uid, listRecentlyViewed)
}

func (dbs *DBStorage) GetPreferences(ctx context.Context, uid string) (models.Preferences, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()

	prefs := models.Preferences{Language: consts.DefaultLanguage}
	err := dbs.pool.QueryRow(ctx, "SELECT language, dark_mode FROM preferences WHERE user_id = $1", uid).
		Scan(&prefs.Language, &prefs.DarkMode)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return models.Preferences{}, err
	}
	return prefs, nil
}

func (dbs *DBStorage) SavePreferences(ctx context.Context, uid string, prefs models.Preferences) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	_, err := dbs.pool.Exec(ctx,
		`INSERT INTO preferences (user_id, language, dark_mode) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET language = EXCLUDED.language, dark_mode = EXCLUDED.dark_mode`,
		uid, prefs.Language, prefs.DarkMode)
	return err
}

func (dbs *DBStorage) Subscribe(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	tag, err := dbs.pool.Exec(ctx, "INSERT INTO subscribers (email) VALUES (lower($1)) ON CONFLICT DO NOTHING", email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storerrros.ErrAlreadySubscribed
	}
	return nil
}

func (dbs *DBStorage) Subscribers(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, consts.DBCtxTimeout)
	defer cancel()
	rows, err := dbs.pool.Query(ctx, "SELECT email FROM subscribers ORDER BY subscribed_at")
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = make([]string, 0)
	}
	return list, nil
}

// Migrations applies the schema under migrationsPath.
func Migrations(dbDsn string, migrationsPath string) error {
	log := logger.Get()
	migratePath := fmt.Sprintf("file://%s", migrationsPath)
	m, err := migrate.New(migratePath, dbDsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Msg("no migrations to apply")
			return nil
		}
		return err
	}
	log.Info().Msg("all migrations applied")
	return nil
}

// MigrateDown rolls back every migration. Used by the admin CLI.
func MigrateDown(dbDsn string, migrationsPath string) error {
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsPath), dbDsn)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
