package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignAndDecode_Success(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer([]byte("super-secret"))

	tok, err := issuer.Sign("acc-123", "admin@example.com", time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	claims := issuer.Decode(tok)
	if claims == nil {
		t.Fatal("Decode returned nil for a fresh token")
	}
	if claims.AccountID != "acc-123" || claims.Email != "admin@example.com" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Subject != "acc-123" {
		t.Fatalf("subject mismatch: %q", claims.Subject)
	}
}

func TestDecode_AcceptsBearerPrefix(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer([]byte("k"))
	tok, err := issuer.Sign("acc-1", "a@b.c", time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	if issuer.Decode("Bearer "+tok) == nil {
		t.Fatal("Decode rejected a Bearer-prefixed token")
	}
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	issuer := NewJWTIssuer([]byte("secret")).WithClock(func() time.Time { return now })

	tok, err := issuer.Sign("u1", "a@b.c", time.Minute)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if issuer.Decode(tok) != nil {
		t.Fatal("expected nil claims for expired token")
	}
}

func TestDecode_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTIssuer([]byte("right-secret")).Sign("u2", "a@b.c", time.Hour)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	if NewJWTIssuer([]byte("wrong-secret")).Decode(tok) != nil {
		t.Fatal("expected nil claims for invalid signature")
	}
}

func TestDecode_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		AccountID:        "u3",
	})
	tok, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if NewJWTIssuer(secret).Decode(tok) != nil {
		t.Fatal("expected HS512 token to be rejected")
	}
}

func TestDecode_MalformedNeverPanics(t *testing.T) {
	t.Parallel()

	issuer := NewJWTIssuer([]byte("k"))
	for _, in := range []string{"", "Bearer ", "not.a.jwt", "a.b", "...."} {
		if issuer.Decode(in) != nil {
			t.Fatalf("expected nil claims for %q", in)
		}
	}
}
