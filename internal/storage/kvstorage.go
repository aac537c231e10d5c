package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/azaliaz/bookhaven/internal/domain/consts"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

// Keys follow the browser storage layout of the storefront so an export of
// it can be loaded as is.
const (
	keyUsers       = "bookhavenUsers"
	keySubscribers = "subscribers"
)

func keyCart(id string) string           { return "cart_" + id }
func keyOrders(uid string) string        { return "orders_" + uid }
func keyWishlist(uid string) string      { return "wishlist_" + uid }
func keyReviews(bookID string) string    { return "bookReviews_" + bookID }
func keySearchHistory(uid string) string { return "searchHistory_" + uid }
func keyRecent(uid string) string        { return "recentlyViewed_" + uid }
func keyPreferences(uid string) string   { return "preferences_" + uid }

// kv is a flat string-keyed blob store.
type kv interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, value []byte) error
	del(ctx context.Context, key string) error
	close() error
}

// KVStorage keeps every record as a JSON value under one key. A single mutex
// serializes read-modify-write sequences.
type KVStorage struct {
	mu sync.Mutex
	kv kv
}

func (s *KVStorage) Close() error {
	return s.kv.close()
}

func (s *KVStorage) load(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := s.kv.get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *KVStorage) store(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.put(ctx, key, data)
}

func (s *KVStorage) users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := s.load(ctx, keyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *KVStorage) SaveUser(ctx context.Context, user models.User) (string, error) {
	log := logger.Get()
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if sameEmail(u.Email, user.Email) {
			return "", storerrros.ErrUserExists
		}
	}
	users = append(users, user)
	if err := s.store(ctx, keyUsers, users); err != nil {
		log.Error().Err(err).Msg("save user failed")
		return "", err
	}
	return user.UID, nil
}

func (s *KVStorage) GetUser(ctx context.Context, uid string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if u.UID == uid {
			return u, nil
		}
	}
	return models.User{}, storerrros.ErrUserNotFound
}

func (s *KVStorage) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, u := range users {
		if sameEmail(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, storerrros.ErrUserNotFound
}

func (s *KVStorage) UpdateUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, u := range users {
		if u.UID == user.UID {
			idx = i
			continue
		}
		if sameEmail(u.Email, user.Email) {
			return storerrros.ErrUserExists
		}
	}
	if idx < 0 {
		return storerrros.ErrUserNotFound
	}
	// the session generation only moves through BumpTokenVersion
	user.TokenVersion = users[idx].TokenVersion
	users[idx] = user
	return s.store(ctx, keyUsers, users)
}

// BumpTokenVersion invalidates every token issued to the user so far.
func (s *KVStorage) BumpTokenVersion(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].UID == uid {
			users[i].TokenVersion++
			return s.store(ctx, keyUsers, users)
		}
	}
	return storerrros.ErrUserNotFound
}

// ListUsers is used by the admin tooling.
func (s *KVStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = make([]models.User, 0)
	}
	return users, nil
}

func (s *KVStorage) SaveCart(ctx context.Context, cart models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(ctx, keyCart(cart.CartID), cart)
}

func (s *KVStorage) GetCart(ctx context.Context, cartID string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cart models.Cart
	ok, err := s.load(ctx, keyCart(cartID), &cart)
	if err != nil {
		return models.Cart{}, err
	}
	if !ok {
		return models.Cart{}, storerrros.ErrCartNotExist
	}
	if cart.Lines == nil {
		cart.Lines = make([]models.CartLine, 0)
	}
	return cart, nil
}

func (s *KVStorage) DeleteCart(ctx context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.kv.get(ctx, keyCart(cartID))
	if err != nil {
		return err
	}
	if !ok {
		return storerrros.ErrCartNotExist
	}
	return s.kv.del(ctx, keyCart(cartID))
}

func (s *KVStorage) SaveOrder(ctx context.Context, order models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []models.Order
	if _, err := s.load(ctx, keyOrders(order.UID), &orders); err != nil {
		return err
	}
	orders = append(orders, order)
	return s.store(ctx, keyOrders(order.UID), orders)
}

func (s *KVStorage) GetOrders(ctx context.Context, uid string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := make([]models.Order, 0)
	if _, err := s.load(ctx, keyOrders(uid), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *KVStorage) GetOrder(ctx context.Context, uid, orderID string) (models.Order, error) {
	orders, err := s.GetOrders(ctx, uid)
	if err != nil {
		return models.Order{}, err
	}
	for _, o := range orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return models.Order{}, storerrros.ErrOrderNotFound
}

func (s *KVStorage) AddReview(ctx context.Context, review models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reviews []models.Review
	if _, err := s.load(ctx, keyReviews(review.BookID), &reviews); err != nil {
		return err
	}
	reviews = append(reviews, review)
	return s.store(ctx, keyReviews(review.BookID), reviews)
}

// GetReviews returns the book's reviews newest first.
func (s *KVStorage) GetReviews(ctx context.Context, bookID string) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := make([]models.Review, 0)
	if _, err := s.load(ctx, keyReviews(bookID), &reviews); err != nil {
		return nil, err
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	return reviews, nil
}

func (s *KVStorage) loadList(ctx context.Context, key string) ([]string, error) {
	list := make([]string, 0)
	if _, err := s.load(ctx, key, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *KVStorage) AddToWishlist(ctx context.Context, uid, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadList(ctx, keyWishlist(uid))
	if err != nil {
		return err
	}
	if contains(list, bookID) {
		return storerrros.ErrAlreadyInWishlist
	}
	return s.store(ctx, keyWishlist(uid), append(list, bookID))
}

func (s *KVStorage) RemoveFromWishlist(ctx context.Context, uid, bookID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadList(ctx, keyWishlist(uid))
	if err != nil {
		return err
	}
	if !contains(list, bookID) {
		return storerrros.ErrNotInWishlist
	}
	return s.store(ctx, keyWishlist(uid), removeValue(list, bookID))
}

func (s *KVStorage) GetWishlist(ctx context.Context, uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList(ctx, keyWishlist(uid))
}

func (s *KVStorage) push(ctx context.Context, key, v string, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadList(ctx, key)
	if err != nil {
		return err
	}
	return s.store(ctx, key, pushRecent(list, v, limit))
}

func (s *KVStorage) PushSearchHistory(ctx context.Context, uid, query string) error {
	return s.push(ctx, keySearchHistory(uid), query, consts.HistoryLimit)
}

func (s *KVStorage) GetSearchHistory(ctx context.Context, uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList(ctx, keySearchHistory(uid))
}

func (s *KVStorage) PushRecentlyViewed(ctx context.Context, uid, bookID string) error {
	return s.push(ctx, keyRecent(uid), bookID, consts.RecentlyViewedLimit)
}

func (s *KVStorage) GetRecentlyViewed(ctx context.Context, uid string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList(ctx, keyRecent(uid))
}

func (s *KVStorage) GetPreferences(ctx context.Context, uid string) (models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := models.Preferences{Language: consts.DefaultLanguage}
	if _, err := s.load(ctx, keyPreferences(uid), &prefs); err != nil {
		return models.Preferences{}, err
	}
	return prefs, nil
}

func (s *KVStorage) SavePreferences(ctx context.Context, uid string, prefs models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store(ctx, keyPreferences(uid), prefs)
}

func (s *KVStorage) Subscribe(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.loadList(ctx, keySubscribers)
	if err != nil {
		return err
	}
	for _, e := range list {
		if sameEmail(e, email) {
			return storerrros.ErrAlreadySubscribed
		}
	}
	return s.store(ctx, keySubscribers, append(list, email))
}

func (s *KVStorage) Subscribers(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadList(ctx, keySubscribers)
}
