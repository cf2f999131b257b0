package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/messagely/pkg/apperror"
)

// JWTManager issues and verifies identity tokens. It holds no mutable state
// after construction, so Verify is safe to call from any number of goroutines.
type JWTManager struct {
	Secret []byte
	// TTL of issued tokens. Zero issues tokens without an exp claim.
	TTL time.Duration

	now func() time.Time
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue signs a token asserting username.
func (m *JWTManager) Issue(username string) (string, error) {
	if username == "" {
		return "", errors.New("empty username")
	}
	now := m.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.TTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.TTL))
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.Secret)
}

// Verify returns the username embedded in tokenStr. Malformed, tampered and
// expired tokens all fail with apperror.KindInvalidToken.
func (m *JWTManager) Verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	}
	if m.TTL > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	}, opts...)
	if err != nil {
		return "", apperror.InvalidToken(err)
	}
	if !tkn.Valid || claims.Username == "" {
		return "", apperror.InvalidToken(errors.New("missing username claim"))
	}
	return claims.Username, nil
}
