package auth

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestTokenService(t *testing.T, ttl time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(Config{JWTSecret: "test-secret", TokenTTL: ttl})
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}
	return svc
}

func TestTokenService_IssueAndParse(t *testing.T) {
	svc := newTestTokenService(t, 2*time.Hour)
	userID := uuid.New()

	token, err := svc.Issue(userID)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse rejected a fresh token: %v", err)
	}

	parsed, err := claims.UserUUID()
	if err != nil {
		t.Fatalf("UserUUID failed: %v", err)
	}
	if parsed != userID {
		t.Errorf("identity mismatch: issued %s, parsed %s", userID, parsed)
	}
}

func TestTokenService_Expiry(t *testing.T) {
	svc := newTestTokenService(t, 2*time.Hour)

	token, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 119*time.Minute || ttl > 121*time.Minute {
		t.Errorf("expected ~2h expiry, got %s", ttl)
	}
}

func TestTokenService_Expired(t *testing.T) {
	// A negative TTL produces a token already past its expiry.
	svc := newTestTokenService(t, -time.Minute)

	token, err := svc.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = svc.Parse(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer := newTestTokenService(t, time.Hour)
	verifier, err := NewTokenService(Config{JWTSecret: "different-secret"})
	if err != nil {
		t.Fatalf("NewTokenService failed: %v", err)
	}

	token, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	_, err = verifier.Parse(token)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Malformed(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b"} {
		_, err := svc.Parse(token)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Parse(%q): expected ErrTokenMalformed, got %v", token, err)
		}
	}
}

func TestTokenService_RejectsUnexpectedAlgorithm(t *testing.T) {
	svc := newTestTokenService(t, time.Hour)

	// Tokens signed with "none" must never verify.
	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{UserID: uuid.NewString()})
	token, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing test token failed: %v", err)
	}

	if _, err := svc.Parse(token); err == nil {
		t.Error("Parse accepted an unsigned token")
	}
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	if _, err := NewTokenService(Config{}); err == nil {
		t.Error("expected error when jwt_secret is missing")
	}
}
