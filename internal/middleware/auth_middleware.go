package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/examprep-api/pkg/auth"
)

// Ключи контекста Gin, заполняемые middleware аутентификации
const (
	ContextUserID  = "user_id"
	ContextEmail   = "email"
	ContextIsAdmin = "is_admin"
)

// TokenParser проверяет токен и возвращает claims
type TokenParser interface {
	ParseToken(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	parser    TokenParser
	adminRole string
}

// NewAuthMiddleware создает middleware аутентификации
func NewAuthMiddleware(parser TokenParser, adminRole string) *AuthMiddleware {
	return &AuthMiddleware{parser: parser, adminRole: adminRole}
}

// bearerToken извлекает токен из заголовка Authorization или query-параметра token (для WebSocket)
func bearerToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, ""
		}
		return "", "token_missing"
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "token_format"
	}
	return parts[1], ""
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	claims, err := m.parser.ParseToken(token)
	if err != nil {
		return err
	}
	c.Set(ContextUserID, claims.UserID())
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextIsAdmin, m.adminRole != "" && claims.Role == m.adminRole)
	return nil
}

// RequireAuth проверяет, аутентифицирован ли пользователь
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errType := bearerToken(c)
		if errType != "" {
			msg := "Authorization header is required"
			if errType == "token_format" {
				msg = "Authorization header format must be Bearer {token}"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "error_type": errType})
			return
		}

		if err := m.authenticate(c, token); err != nil {
			errType := "token_invalid"
			if errors.Is(err, auth.ErrTokenExpired) {
				errType = "token_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": errType})
			return
		}
		c.Next()
	}
}

// OptionalAuth заполняет пользователя, если передан валидный токен.
// Без токена или с невалидным токеном запрос обрабатывается анонимно.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, errType := bearerToken(c); errType == "" {
			_ = m.authenticate(c, token)
		}
		c.Next()
	}
}

// AdminOnly проверяет, является ли пользователь администратором. Применяется после RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !c.GetBool(ContextIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
			return
		}
		c.Next()
	}
}

// UserIDFromContext возвращает идентификатор пользователя или пустую строку для анонимного запроса
func UserIDFromContext(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
