package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type panickingAuthorizer struct{}

func (panickingAuthorizer) Authorize(ctx context.Context, userID int64, roles ...domain.Role) (*domain.User, error) {
	panic("authorizer exploded")
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenService) {
	t.Helper()

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:     "router-test-secret",
		Issuer:     "courier-test",
		SessionTTL: time.Hour,
		ResetTTL:   20 * time.Minute,
	}, auth.SystemClock{})

	router := NewRouter(RouterDeps{
		AuthHandler:   handler.NewAuthHandler(nil, nil, handler.CookieConfig{Name: "token", SessionTTL: time.Hour}),
		OrderHandler:  handler.NewOrderHandler(nil, nil),
		JobHandler:    handler.NewJobHandler(nil),
		DriverHandler: handler.NewDriverHandler(nil),
		Tokens:        tokens,
		Authorizer:    panickingAuthorizer{},
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		CookieName:    "token",
	})
	return router, tokens
}

func serve(router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_FailureEnvelopes(t *testing.T) {
	router, tokens := newTestRouter(t)
	token, err := tokens.IssueSessionToken("c@example.com", 1, domain.RoleCustomer)
	require.NoError(t, err)

	testCases := []struct {
		name    string
		method  string
		path    string
		token   string
		code    int
		message string
	}{
		{"panic in handler chain", http.MethodGet, "/get-status", token, http.StatusInternalServerError, "Internal server error"},
		{"unknown path", http.MethodGet, "/nowhere", "", http.StatusNotFound, "Not Found"},
		{"wrong method", http.MethodGet, "/login", "", http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(router, tc.method, tc.path, tc.token)

			assert.Equal(t, tc.code, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "failed", body["status"])
			assert.Equal(t, tc.message, body["message"])
		})
	}
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	w := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
