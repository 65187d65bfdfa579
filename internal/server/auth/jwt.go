package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// Claims is the token payload: the account identity plus the registered
// claims (expiry, issued-at, subject).
type Claims struct {
	jwt.RegisteredClaims
	AccountID string `json:"id"`
	Email     string `json:"email"`
}

// TokenIssuer signs and decodes bearer tokens.
type TokenIssuer interface {
	Sign(accountID, email string, ttl time.Duration) (string, error)
	// Decode returns nil for malformed, tampered or expired tokens.
	Decode(token string) *Claims
}

// JWTIssuer issues HS256 tokens.
type JWTIssuer struct {
	secretKey []byte
	now       func() time.Time
}

func NewJWTIssuer(secretKey []byte) *JWTIssuer {
	return &JWTIssuer{secretKey: secretKey, now: time.Now}
}

// WithClock replaces the time source used for iat/exp and for validation.
func (j *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	if now != nil {
		j.now = now
	}
	return j
}

func (j *JWTIssuer) Sign(accountID, email string, ttl time.Duration) (string, error) {
	issuedAt := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		AccountID: accountID,
		Email:     email,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (j *JWTIssuer) Decode(tokenString string) *Claims {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, bearerPrefix))
	if tokenString == "" {
		return nil
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid || claims.AccountID == "" {
		return nil
	}

	return claims
}
