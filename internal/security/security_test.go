package security

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	apperrors "todo-items.com/todo-items/internal/errors"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hashed, err := HashPassword("XZ#o2Q#eQ3y1")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if hashed == "XZ#o2Q#eQ3y1" {
		t.Error("expected hash to differ from the plain password")
	}
	if !VerifyPassword("XZ#o2Q#eQ3y1", hashed) {
		t.Error("expected password to verify")
	}
	if VerifyPassword("wrong-password", hashed) {
		t.Error("expected wrong password to be rejected")
	}
	if VerifyPassword("XZ#o2Q#eQ3y1", "not-a-bcrypt-hash") {
		t.Error("expected garbage hash to be rejected")
	}
}

func TestDummyHash(t *testing.T) {
	hashed := DummyHash()

	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		t.Fatalf("expected a bcrypt hash, got %v", err)
	}
	if cost != bcrypt.DefaultCost {
		t.Errorf("expected default cost %d, got %d", bcrypt.DefaultCost, cost)
	}
	if DummyHash() != hashed {
		t.Error("expected the dummy hash to be computed once")
	}
	if VerifyPassword("XZ#o2Q#eQ3y1", hashed) {
		t.Error("expected arbitrary passwords not to match the dummy hash")
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)

	token, err := codec.Encode(42)
	if err != nil {
		t.Fatalf("failed to encode token: %v", err)
	}

	userID, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("failed to decode token: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user id 42, got %d", userID)
	}
}

func TestTokenCodec_Rejects(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	valid, err := codec.Encode(7)
	if err != nil {
		t.Fatalf("failed to encode token: %v", err)
	}

	expired := NewTokenCodec("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Encode(7)
	if err != nil {
		t.Fatalf("failed to encode token: %v", err)
	}

	tests := []struct {
		name  string
		codec *TokenCodec
		token string
	}{
		{"garbage", codec, "not-a-token"},
		{"wrong secret", NewTokenCodec("other", time.Hour), valid},
		{"tampered", codec, valid[:strings.LastIndex(valid, ".")] + ".c2lnbmF0dXJl"},
		{"expired", codec, expiredToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.codec.Decode(tt.token)
			if !apperrors.IsAccessTokenMalformed(err) {
				t.Errorf("expected access token malformed error, got %v", err)
			}
		})
	}
}
