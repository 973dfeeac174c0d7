package auth

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token verification failure reasons. The auth gate maps these to distinct
// client-visible error codes.
var (
	// ErrTokenMalformed indicates the token string is not a JWT at all.
	ErrTokenMalformed = errors.New("auth: malformed token")

	// ErrTokenInvalid indicates a signature or claim check failed.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrTokenExpired indicates the token's absolute expiry has passed.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims is the identity claim embedded in every bearer token.
type Claims struct {
	gojwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// TokenService signs and verifies compact bearer tokens carrying a user
// identity. The signing secret is process-wide configuration loaded once at
// startup; rotating it invalidates all outstanding tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service from configuration.
func NewTokenService(cfg Config) (*TokenService, error) {
	cfg.ApplyDefaults()
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth: jwt_secret is required")
	}
	return &TokenService{secret: []byte(cfg.JWTSecret), ttl: cfg.TokenTTL}, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed HS256 token for the given user with an absolute
// expiry of now + TTL.
func (s *TokenService) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID.String(),
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token string and returns its claims. Rejections carry a
// distinct reason: ErrTokenMalformed, ErrTokenExpired, or ErrTokenInvalid.
func (s *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, gojwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, gojwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// UserUUID returns the identity claim as a uuid.UUID.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

func (s *TokenService) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != gojwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("auth: unexpected signing method: %s", token.Method.Alg())
	}
	return s.secret, nil
}
