package auth_test

import (
	"testing"
	"time"

	"github.com/studyflow/accounthub/internal/auth"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Minute)

	raw, err := m.GenerateAccessToken(42, "sam@example.com", "admin")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)

	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if claims.UserID != 42 {
		t.Fatalf("got userID %d, want 42", claims.UserID)
	}

	if claims.Email != "sam@example.com" || claims.Role != "admin" {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	if claims.Subject != "42" {
		t.Fatalf("subject should mirror the user id, got %q", claims.Subject)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Minute)
	verifier := auth.NewManager("secret-b", time.Minute)

	raw, err := issuer.GenerateAccessToken(1, "a@x.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err = verifier.VerifyAccessToken(raw)

	if err == nil {
		t.Fatalf("token signed with different secret should not verify")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret-key", -time.Minute)

	raw, err := m.GenerateAccessToken(1, "a@x.com", "user")

	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err = m.VerifyAccessToken(raw)

	if err == nil {
		t.Fatalf("expired token should not verify")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	m := auth.NewManager("test-secret-key", time.Minute)

	_, err := m.VerifyAccessToken("not.a.jwt")

	if err == nil {
		t.Fatalf("garbage token should not verify")
	}
}
