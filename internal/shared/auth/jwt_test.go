package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenManager_IssueVerify(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, err := tm.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	userID, err := tm.Verify(token)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("Verify() userID = %q, want %q", userID, "user-123")
	}
}

func TestTokenManager_VerifyFailuresAreUniform(t *testing.T) {
	tm := NewTokenManager("test-secret")
	other := NewTokenManager("other-secret")

	wrongKey, _ := other.Issue("user-123")

	expired := makeToken(t, "test-secret", "user-123", -time.Hour)
	noSubject := makeToken(t, "test-secret", "", time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"Garbage", "not.a.token"},
		{"Empty", ""},
		{"WrongKey", wrongKey},
		{"Expired", expired},
		{"MissingUserID", noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tm.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify(%s) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func TestTokenManager_RejectsUnexpectedAlg(t *testing.T) {
	tm := NewTokenManager("test-secret")

	// alg=none token with otherwise valid claims
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build alg=none token: %v", err)
	}

	if _, err := tm.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(alg=none) error = %v, want ErrInvalidToken", err)
	}
}

func makeToken(t *testing.T, secret, userID string, ttl time.Duration) string {
	t.Helper()
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return token
}
