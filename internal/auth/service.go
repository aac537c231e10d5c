// Package auth covers accounts and sessions: registration with the password
// policy, login, token issuing and revocation, and profile edits.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/azaliaz/bookhaven/internal/cart"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

var (
	ErrUserExists         = storerrros.ErrUserExists
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("please fill in all fields")
)

type UserRepo interface {
	SaveUser(ctx context.Context, user models.User) (string, error)
	GetUser(ctx context.Context, uid string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	BumpTokenVersion(ctx context.Context, uid string) error
}

type CartRepo interface {
	SaveCart(ctx context.Context, cart models.Cart) error
}

type Service struct {
	Users  UserRepo
	Carts  CartRepo
	Tokens TokenService
}

func NewService(users UserRepo, carts CartRepo, tokens TokenService) *Service {
	return &Service{Users: users, Carts: carts, Tokens: tokens}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterUser creates the account together with its cart. The password is
// only ever stored as a bcrypt hash.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return models.User{}, ErrMissingFields
	}
	if err := CheckPassword(password); err != nil {
		return models.User{}, err
	}
	if _, err := s.Users.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, ErrUserExists
	} else if !errors.Is(err, storerrros.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	uid := uuid.New().String()
	c := cart.New(uid)
	user := models.User{
		UID:       uid,
		CartID:    c.CartID,
		Name:      name,
		Email:     email,
		Pass:      hash,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.Users.SaveUser(ctx, user); err != nil {
		return models.User{}, err
	}
	if err := s.Carts.SaveCart(ctx, c); err != nil {
		return models.User{}, fmt.Errorf("create cart: %w", err)
	}
	logger.Get().Info().Str("uid", uid).Msg("user registered")
	return user.Public(), nil
}

func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.Users.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storerrros.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !ComparePassword(user.Pass, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user.Public(), nil
}

// Login authenticates and issues a session token for the current token
// version.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, models.User, error) {
	user, err := s.AuthenticateUser(ctx, email, password)
	if err != nil {
		return "", time.Time{}, models.User{}, err
	}
	token, exp, err := s.Tokens.Sign(user)
	if err != nil {
		return "", time.Time{}, models.User{}, err
	}
	return token, exp, user, nil
}

// Verify parses the token and checks it was issued for the user's current
// session generation.
func (s *Service) Verify(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storerrros.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout invalidates every token issued so far.
func (s *Service) Logout(ctx context.Context, uid string) error {
	return s.Users.BumpTokenVersion(ctx, uid)
}

type Profile struct {
	Name    string         `json:"name"`
	Email   string         `json:"email"`
	Phone   string         `json:"phone"`
	Address models.Address `json:"address" validate:"-"`
}

func (s *Service) UpdateProfile(ctx context.Context, uid string, p Profile) (models.User, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	if p.Name == "" || p.Email == "" {
		return models.User{}, ErrMissingFields
	}
	user, err := s.Users.GetUser(ctx, uid)
	if err != nil {
		return models.User{}, err
	}
	if p.Email != user.Email {
		other, err := s.Users.GetUserByEmail(ctx, p.Email)
		switch {
		case err == nil && other.UID != uid:
			return models.User{}, ErrUserExists
		case err != nil && !errors.Is(err, storerrros.ErrUserNotFound):
			return models.User{}, err
		}
	}
	user.Name = p.Name
	user.Email = p.Email
	user.Phone = strings.TrimSpace(p.Phone)
	user.Address = models.Address{
		Street:  strings.TrimSpace(p.Address.Street),
		City:    strings.TrimSpace(p.Address.City),
		State:   strings.TrimSpace(p.Address.State),
		Zip:     strings.TrimSpace(p.Address.Zip),
		Country: strings.TrimSpace(p.Address.Country),
	}
	if err := s.Users.UpdateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user.Public(), nil
}
