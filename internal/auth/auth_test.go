package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/models"
	storerrros "github.com/azaliaz/bookhaven/internal/storage/errors"
)

type fakeUsers struct {
	users map[string]models.User
	carts map[string]models.Cart
}

func newFake() *fakeUsers {
	return &fakeUsers{users: map[string]models.User{}, carts: map[string]models.Cart{}}
}

func (f *fakeUsers) SaveUser(_ context.Context, u models.User) (string, error) {
	for _, x := range f.users {
		if x.Email == u.Email {
			return "", storerrros.ErrUserExists
		}
	}
	f.users[u.UID] = u
	return u.UID, nil
}

func (f *fakeUsers) GetUser(_ context.Context, uid string) (models.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return models.User{}, storerrros.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storerrros.ErrUserNotFound
}

func (f *fakeUsers) UpdateUser(_ context.Context, u models.User) error {
	if _, ok := f.users[u.UID]; !ok {
		return storerrros.ErrUserNotFound
	}
	u.TokenVersion = f.users[u.UID].TokenVersion
	f.users[u.UID] = u
	return nil
}

func (f *fakeUsers) BumpTokenVersion(_ context.Context, uid string) error {
	u, ok := f.users[uid]
	if !ok {
		return storerrros.ErrUserNotFound
	}
	u.TokenVersion++
	f.users[uid] = u
	return nil
}

func (f *fakeUsers) SaveCart(_ context.Context, c models.Cart) error {
	f.carts[c.CartID] = c
	return nil
}

func newService() (*fakeUsers, *Service) {
	f := newFake()
	return f, NewService(f, f, TokenService{Secret: []byte("test"), Issuer: "bookhaven", Duration: time.Hour})
}

const goodPass = "Secret#123"

func TestCheckPassword(t *testing.T) {
	assert.NoError(t, CheckPassword(goodPass))

	err := CheckPassword("short")
	require.ErrorIs(t, err, ErrWeakPassword)
	var perr *PasswordError
	require.ErrorAs(t, err, &perr)
	assert.Len(t, perr.Problems, 3)

	assert.ErrorIs(t, CheckPassword("alllowercase!"), ErrWeakPassword)
	assert.ErrorIs(t, CheckPassword("NoSpecial123"), ErrWeakPassword)
	assert.ErrorIs(t, CheckConfirm("a", "b"), ErrPasswordMismatch)

	long := "Aa!" + strings.Repeat("x", 80)
	err = CheckPassword(long)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"Password must be at most 72 bytes long"}, perr.Problems)

	edge := "Aa!" + strings.Repeat("x", 69)
	require.NoError(t, CheckPassword(edge))
	_, err = HashPassword(edge)
	assert.NoError(t, err)
}

func TestRegisterUser(t *testing.T) {
	f, s := newService()
	u, err := s.RegisterUser(context.Background(), " Jane ", " Jane@Example.com ", goodPass)
	require.NoError(t, err)

	assert.Equal(t, "Jane", u.Name)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Empty(t, u.Pass)
	stored := f.users[u.UID]
	assert.NotEqual(t, goodPass, stored.Pass)
	assert.True(t, ComparePassword(stored.Pass, goodPass))

	c, ok := f.carts[u.CartID]
	require.True(t, ok)
	assert.Equal(t, u.UID, c.UID)
}

func TestRegisterUser_Duplicate(t *testing.T) {
	f, s := newService()
	_, err := s.RegisterUser(context.Background(), "Jane", "jane@example.com", goodPass)
	require.NoError(t, err)

	_, err = s.RegisterUser(context.Background(), "Other", "JANE@example.com", goodPass)
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, f.users, 1)
	assert.Len(t, f.carts, 1)
}

func TestRegisterUser_Rejects(t *testing.T) {
	f, s := newService()
	_, err := s.RegisterUser(context.Background(), "", "a@b.c", goodPass)
	assert.ErrorIs(t, err, ErrMissingFields)
	_, err = s.RegisterUser(context.Background(), "A", "a@b.c", "weak")
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Empty(t, f.users)
}

func TestAuthenticateUser(t *testing.T) {
	_, s := newService()
	_, err := s.RegisterUser(context.Background(), "Jane", "jane@example.com", goodPass)
	require.NoError(t, err)

	u, err := s.AuthenticateUser(context.Background(), "JANE@example.com", goodPass)
	require.NoError(t, err)
	assert.Equal(t, "Jane", u.Name)
	assert.Empty(t, u.Pass)

	_, err = s.AuthenticateUser(context.Background(), "jane@example.com", "Wrong#123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.AuthenticateUser(context.Background(), "nobody@example.com", goodPass)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginVerifyLogout(t *testing.T) {
	_, s := newService()
	ctx := context.Background()
	_, err := s.RegisterUser(ctx, "Jane", "jane@example.com", goodPass)
	require.NoError(t, err)

	token, exp, u, err := s.Login(ctx, "jane@example.com", goodPass)
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	claims, err := s.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.UID, claims.UserID)

	require.NoError(t, s.Logout(ctx, u.UID))
	_, err = s.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	fresh, _, _, err := s.Login(ctx, "jane@example.com", goodPass)
	require.NoError(t, err)
	_, err = s.Verify(ctx, fresh)
	assert.NoError(t, err)
}

func TestLogout_StaleProfileWriteKeepsRevocation(t *testing.T) {
	_, s := newService()
	ctx := context.Background()
	_, err := s.RegisterUser(ctx, "Jane", "jane@example.com", goodPass)
	require.NoError(t, err)
	token, _, u, err := s.Login(ctx, "jane@example.com", goodPass)
	require.NoError(t, err)

	stale, err := s.Users.GetUser(ctx, u.UID)
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx, u.UID))

	stale.Address.Street = "1 Main St"
	require.NoError(t, s.Users.UpdateUser(ctx, stale))
	_, err = s.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.UpdateProfile(ctx, u.UID, Profile{Name: "Jane D", Email: "jane@example.com"})
	require.NoError(t, err)
	_, err = s.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Parse(t *testing.T) {
	ts := TokenService{Secret: []byte("one"), Duration: time.Hour}
	token, _, err := ts.Sign(models.User{UID: "u1"})
	require.NoError(t, err)

	other := TokenService{Secret: []byte("two"), Duration: time.Hour}
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := TokenService{Secret: []byte("one"), Duration: -time.Minute}
	old, _, err := expired.Sign(models.User{UID: "u1"})
	require.NoError(t, err)
	_, err = ts.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ts.Parse("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUpdateProfile(t *testing.T) {
	_, s := newService()
	ctx := context.Background()
	jane, err := s.RegisterUser(ctx, "Jane", "jane@example.com", goodPass)
	require.NoError(t, err)
	_, err = s.RegisterUser(ctx, "Bob", "bob@example.com", goodPass)
	require.NoError(t, err)

	_, err = s.UpdateProfile(ctx, jane.UID, Profile{Name: "Jane", Email: "BOB@example.com"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.UpdateProfile(ctx, jane.UID, Profile{Name: "", Email: "x@y.z"})
	assert.ErrorIs(t, err, ErrMissingFields)

	u, err := s.UpdateProfile(ctx, jane.UID, Profile{
		Name:    "Jane R",
		Email:   "jane@example.com",
		Phone:   " 555 ",
		Address: models.Address{Street: "1 Main St"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane R", u.Name)
	assert.Equal(t, "555", u.Phone)
	assert.Equal(t, "1 Main St", u.Address.Street)
}
