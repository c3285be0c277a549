package auth

import (
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	tok, err := j.Generate(42, "operator")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := j.Validate(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "42" || claims.Role != "operator" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	tok, err := NewJWT("a", time.Hour).Generate(1, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWT("b", time.Hour).Validate(tok); err == nil {
		t.Error("token signed with a different secret validated")
	}
}

func TestJWTExpired(t *testing.T) {
	tok, err := NewJWT("secret", -time.Minute).Generate(1, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewJWT("secret", time.Hour).Validate(tok); err == nil {
		t.Error("expired token validated")
	}
}
