package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testIssuer = "taskhub-test"

var testKey = []byte("test-signing-key-at-least-32-bytes!!")

func newTestManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(testIssuer, testKey, ttl)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestNewTokenManagerRequiresKey(t *testing.T) {
	_, err := NewTokenManager(testIssuer, nil, time.Hour)
	if err == nil {
		t.Fatal("expected an error for an empty signing key")
	}
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, expiresAt, err := m.Issue(42, "alice@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Fatalf("expiry %v is not about one hour away", expiresAt)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.ID == "" {
		t.Error("token id claim is empty")
	}
}

func TestVerifyWrongKey(t *testing.T) {
	m := newTestManager(t, time.Hour)
	token, _, err := m.Issue(1, "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewTokenManager(testIssuer, []byte("a-completely-different-signing-key"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify under wrong key = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	m := newTestManager(t, time.Hour)

	now := time.Now().Add(-2 * time.Hour)
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 1,
		Email:  "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	signed, err := expired.SignedString(testKey)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	if _, err := m.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify of expired token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongIssuer(t *testing.T) {
	other, err := NewTokenManager("someone-else", testKey, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	token, _, err := other.Issue(1, "a@x.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m := newTestManager(t, time.Hour)
	if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("Verify of foreign issuer = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	m := newTestManager(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}
