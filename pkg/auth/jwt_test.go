package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(now time.Time) Claims {
	return Claims{
		Email: "student@example.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "auth.example.com",
			Audience:  jwt.ClaimStrings{"examprep"},
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifier_ParseToken(t *testing.T) {
	now := time.Now()
	verifier, err := NewVerifier(testSecret, "auth.example.com", "examprep", 30*time.Second)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(now))

		claims, err := verifier.ParseToken(token)

		require.NoError(t, err)
		assert.Equal(t, "user-42", claims.UserID())
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("expired beyond leeway", func(t *testing.T) {
		c := validClaims(now)
		c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

		_, err := verifier.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))

		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expired within leeway", func(t *testing.T) {
		c := validClaims(now)
		c.ExpiresAt = jwt.NewNumericDate(now.Add(-10 * time.Second))

		_, err := verifier.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))

		assert.NoError(t, err, "Допуск расхождения часов учитывается")
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := verifier.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims(now)))

		assert.ErrorIs(t, err, ErrTokenSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		c := validClaims(now)
		c.Issuer = "evil"

		_, err := verifier.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))

		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("missing subject", func(t *testing.T) {
		c := validClaims(now)
		c.Subject = ""

		_, err := verifier.ParseToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))

		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := verifier.ParseToken("not-a-token")

		assert.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(now))

		_, err := verifier.ParseToken(token)

		assert.Error(t, err)
	})
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	_, err := NewVerifier("", "", "", 0)

	assert.Error(t, err)
}
