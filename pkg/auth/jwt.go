package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token is expired")
	ErrTokenSignature = errors.New("signature is invalid")
	ErrTokenInvalid   = errors.New("token validation failed")
)

// Claims содержит поля токена внешнего провайдера аутентификации.
// Идентификатор пользователя передаётся в стандартном claim sub.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID возвращает идентификатор пользователя из claim sub
func (c *Claims) UserID() string {
	return c.Subject
}

// Verifier проверяет HS256 токены, выпущенные провайдером аутентификации
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewVerifier создает верификатор. Пустые issuer и audience не проверяются.
func NewVerifier(secret, issuer, audience string, leeway time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required for Verifier")
	}
	if leeway < 0 {
		leeway = 0
	}
	return &Verifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
		now:      time.Now,
	}, nil
}

// ParseToken проверяет подпись и срок действия токена
func (v *Verifier) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Printf("[JWT] Неожиданный метод подписи: %v", token.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}

	// Время проверяем сами, с учетом допуска расхождения часов
	parser := jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.ParseWithClaims(tokenString, claims, keyFunc)
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok {
			switch {
			case ve.Errors&jwt.ValidationErrorMalformed != 0:
				return nil, ErrTokenMalformed
			case ve.Errors&jwt.ValidationErrorSignatureInvalid != 0:
				log.Printf("[JWT] Ошибка: Неверная подпись токена для пользователя %s", claims.Subject)
				return nil, ErrTokenSignature
			}
		}
		log.Printf("[JWT] Ошибка при разборе токена: %v", err)
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if err := v.validateClaims(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (v *Verifier) validateClaims(claims *Claims) error {
	now := v.now()

	if !claims.VerifyExpiresAt(now.Add(-v.leeway), false) {
		return ErrTokenExpired
	}
	if !claims.VerifyNotBefore(now.Add(v.leeway), false) {
		return fmt.Errorf("%w: token not valid yet", ErrTokenInvalid)
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return fmt.Errorf("%w: unexpected issuer %q", ErrTokenInvalid, claims.Issuer)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return fmt.Errorf("%w: unexpected audience", ErrTokenInvalid)
	}
	if claims.Subject == "" {
		return fmt.Errorf("%w: missing sub", ErrTokenInvalid)
	}
	return nil
}
