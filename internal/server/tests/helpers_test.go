package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/azaliaz/bookhaven/internal/catalog"
	"github.com/azaliaz/bookhaven/internal/config"
	"github.com/azaliaz/bookhaven/internal/domain/models"
	"github.com/azaliaz/bookhaven/internal/logger"
	"github.com/azaliaz/bookhaven/internal/server"
	"github.com/azaliaz/bookhaven/internal/storage"
)

const testPass = "Secret#123"

func testConfig() config.Config {
	return config.Config{
		Addr:      ":8080",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}
}

func newServer(t *testing.T, stor server.Storage) *server.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Get(false)
	cat, err := catalog.Default()
	require.NoError(t, err)
	if stor == nil {
		stor = storage.New()
	}
	return server.New(testConfig(), stor, cat, nil)
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type cartView struct {
	Cart      models.Cart   `json:"cart"`
	Totals    models.Totals `json:"totals"`
	ItemCount int           `json:"item_count"`
}

type errorBody struct {
	Error    string   `json:"error"`
	Redirect string   `json:"redirect"`
	Field    string   `json:"field"`
	Problems []string `json:"problems"`
}

func register(t *testing.T, h http.Handler, name, email string) session {
	t.Helper()
	w := do(t, h, http.MethodPost, "/users/register", "", gin.H{
		"name":             name,
		"email":            email,
		"password":         testPass,
		"confirm_password": testPass,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[session](t, w)
}

func checkoutBody(cartID, card string) gin.H {
	return gin.H{
		"cart_id": cartID,
		"name":    "Jane Reader",
		"email":   "jane@example.com",
		"address": gin.H{
			"street":  "1 Main St",
			"city":    "Springfield",
			"state":   "IL",
			"zip":     "62701",
			"country": "US",
		},
		"payment": gin.H{
			"cardName":   "Jane Reader",
			"cardNumber": card,
			"expiry":     "12/29",
			"cvv":        "123",
		},
	}
}
