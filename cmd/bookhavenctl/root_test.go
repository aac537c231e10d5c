package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String() + errOut.String(), err
}

func TestBooksCmd(t *testing.T) {
	out, err := run(t, "books", "--genre", "Fiction", "--page", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "page 3 of 3, 21 books")

	out, err = run(t, "books", "--genre", "Fiction", "--per-page", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "fiction-1")
	assert.Contains(t, out, "$14.99")

	_, err = run(t, "books", "--price", "free")
	assert.Error(t, err)
}

func TestBooksSubcommands(t *testing.T) {
	out, err := run(t, "books", "genres")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(out), 8)

	out, err = run(t, "books", "show", "fiction-1")
	require.NoError(t, err)
	assert.Contains(t, out, "The Silent Patient")
	assert.Contains(t, out, "336 pages")

	out, err = run(t, "books", "show", "nope")
	assert.Error(t, err)
	assert.Contains(t, out, `book "nope" not found`)

	out, err = run(t, "books", "bestsellers")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 12)
}

func TestCoversResolveOffline(t *testing.T) {
	out, err := run(t, "covers", "resolve", "--lookup=false", "fiction-1")
	require.NoError(t, err)
	assert.Equal(t, "fiction-1 https://covers.openlibrary.org/b/title/The%20Silent%20Patient-M.jpg\n", out)

	_, err = run(t, "covers", "resolve", "--lookup=false", "nope")
	assert.Error(t, err)
}

func TestAccountsFromSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")
	s, err := storage.NewSQLite(ctx, path)
	require.NoError(t, err)
	_, err = s.SaveUser(ctx, models.User{UID: "u1", Name: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.Subscribe(ctx, "reader@example.com"))
	require.NoError(t, s.Close())

	out, err := run(t, "--storage", "sqlite", "--sqlite", path, "users")
	require.NoError(t, err)
	assert.Contains(t, out, "jane@example.com")
	assert.Contains(t, out, "1 accounts")

	out, err = run(t, "--storage", "sqlite", "--sqlite", path, "subscribers")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com\n", out)

	_, err = run(t, "--storage", "memory", "users")
	assert.Error(t, err)
}
