package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/examprep-api/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubParser принимает токены из карты token -> claims
type stubParser map[string]*auth.Claims

func (p stubParser) ParseToken(token string) (*auth.Claims, error) {
	if claims, ok := p[token]; ok {
		return claims, nil
	}
	if token == "expired" {
		return nil, auth.ErrTokenExpired
	}
	return nil, errors.New("bad token")
}

func newParser() stubParser {
	return stubParser{
		"user-token":  {RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}},
		"admin-token": {Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "a1"}},
	}
}

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(newParser(), "admin")
	router := gin.New()
	router.GET("/private", m.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantBody   string
	}{
		{name: "valid", token: "user-token", wantStatus: http.StatusOK, wantBody: "u1"},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantBody: "token_missing"},
		{name: "invalid", token: "garbage", wantStatus: http.StatusUnauthorized, wantBody: "token_invalid"},
		{name: "expired", token: "expired", wantStatus: http.StatusUnauthorized, wantBody: "token_expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, http.MethodGet, "/private", tt.token)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestRequireAuth_BadHeaderFormat(t *testing.T) {
	m := NewAuthMiddleware(newParser(), "admin")
	router := gin.New()
	router.GET("/private", m.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Token user-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token_format")
}

func TestOptionalAuth(t *testing.T) {
	m := NewAuthMiddleware(newParser(), "admin")
	router := gin.New()
	router.GET("/open", m.OptionalAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, "user="+UserIDFromContext(c))
	})

	assert.Equal(t, "user=u1", serve(router, http.MethodGet, "/open", "user-token").Body.String())
	assert.Equal(t, "user=", serve(router, http.MethodGet, "/open", "").Body.String())
	assert.Equal(t, "user=", serve(router, http.MethodGet, "/open", "garbage").Body.String(), "Невалидный токен не блокирует запрос")
}

func TestAdminOnly(t *testing.T) {
	m := NewAuthMiddleware(newParser(), "admin")
	router := gin.New()
	router.POST("/admin", m.RequireAuth(), m.AdminOnly(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/admin", "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/admin", "user-token").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodPost, "/admin", "").Code)
}

func TestSessionParam(t *testing.T) {
	router := gin.New()
	router.GET("/s/:id", SessionParam("id"), func(c *gin.Context) {
		id, ok := SessionIDFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})
	id := uuid.New()

	ok := serve(router, http.MethodGet, "/s/"+id.String(), "")
	bad := serve(router, http.MethodGet, "/s/42", "")
	zero := serve(router, http.MethodGet, "/s/"+uuid.Nil.String(), "")

	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, id.String(), ok.Body.String())
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, http.StatusBadRequest, zero.Code, "Нулевой UUID отклоняется")
}

func TestSessionIDFromContext_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := SessionIDFromContext(c)

	assert.False(t, ok)
}

func TestRateLimiter_NilClientPassesThrough(t *testing.T) {
	rl := NewRateLimiter(nil)
	router := gin.New()
	router.POST("/answer", rl.Limit(AnswerRateLimitConfig(1, 0)), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/answer", "").Code)
	}
}

func TestRateLimitKey(t *testing.T) {
	router := gin.New()
	var keys []string
	m := NewAuthMiddleware(newParser(), "admin")
	router.POST("/s/:id/answer", m.OptionalAuth(), func(c *gin.Context) {
		keys = append(keys, rateLimitKey(c, "rl:answer"))
	})

	serve(router, http.MethodPost, "/s/1/answer", "user-token")
	serve(router, http.MethodPost, "/s/2/answer", "")

	require.Len(t, keys, 2)
	assert.Equal(t, "rl:answer:user:u1:/s/:id/answer", keys[0], "Ключ строится по пользователю и шаблону маршрута")
	assert.Contains(t, keys[1], "rl:answer:ip:")
}
