package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/auth"
	"courier/internal/domain"
	"courier/internal/middleware"
	"courier/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthorizer serves roles from a map, like the identity store would.
type fakeAuthorizer struct {
	roles map[int64]domain.Role
}

func (a *fakeAuthorizer) Authorize(ctx context.Context, userID int64, roles ...domain.Role) (*domain.User, error) {
	role, ok := a.roles[userID]
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	u := &domain.User{ID: userID, Role: role}
	if len(roles) > 0 && !u.HasRole(roles...) {
		return nil, service.ErrForbidden
	}
	return u, nil
}

func newTokens() *auth.TokenService {
	return auth.NewTokenService(auth.TokenConfig{
		Secret:     "middleware-test-secret",
		Issuer:     "courier-test",
		SessionTTL: time.Hour,
		ResetTTL:   20 * time.Minute,
	}, auth.SystemClock{})
}

func newRouter(tokens *auth.TokenService, authz middleware.Authorizer, roles ...domain.Role) *gin.Engine {
	r := gin.New()
	r.GET("/protected",
		middleware.Authenticate(tokens, "token"),
		middleware.RequireSession(),
		middleware.RequireRole(authz, roles...),
		func(c *gin.Context) {
			id, _ := middleware.IdentityFrom(c)
			c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "email": id.Email})
		},
	)
	return r
}

func TestAuthenticate_CookieAndBearer(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	authz := &fakeAuthorizer{roles: map[int64]domain.Role{7: domain.RoleCustomer}}
	router := newRouter(tokens, authz, domain.RoleCustomer)

	token, err := tokens.IssueSessionToken("c@example.com", 7, domain.RoleCustomer)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"email":"c@example.com"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticate_Rejections(t *testing.T) {
	t.Parallel()

	tokens := newTokens()
	authz := &fakeAuthorizer{roles: map[int64]domain.Role{7: domain.RoleCustomer, 8: domain.RoleDriver}}

	session, err := tokens.IssueSessionToken("c@example.com", 7, domain.RoleCustomer)
	require.NoError(t, err)
	reset, err := tokens.IssueResetToken("c@example.com", 7, domain.RoleCustomer)
	require.NoError(t, err)
	staleRole, err := tokens.IssueSessionToken("d@example.com", 8, domain.RoleCustomer)
	require.NoError(t, err)
	driver, err := tokens.IssueSessionToken("d@example.com", 8, domain.RoleDriver)
	require.NoError(t, err)
	ghost, err := tokens.IssueSessionToken("g@example.com", 99, domain.RoleCustomer)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header string
		want   int
	}{
		{"no credential", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"reset token on session route", "Bearer " + reset, http.StatusUnauthorized},
		{"role claim disagrees with storage", "Bearer " + staleRole, http.StatusUnauthorized},
		{"identity no longer exists", "Bearer " + ghost, http.StatusUnauthorized},
		{"wrong stored role", "Bearer " + driver, http.StatusForbidden},
		{"valid customer", "Bearer " + session, http.StatusOK},
	}

	router := newRouter(tokens, authz, domain.RoleCustomer)
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want != http.StatusOK {
				assert.Contains(t, w.Body.String(), `"status":"failed"`)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(middleware.CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
