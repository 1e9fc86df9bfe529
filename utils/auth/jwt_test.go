package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret: "test-secret",
		Expiry: expiry,
		Issuer: "institute-api-test",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := testManager(time.Hour)
	userID := uuid.New()

	token, err := m.GenerateToken(userID, "staff@alpha.edu", "staff")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "staff@alpha.edu" {
		t.Errorf("Email = %s, want staff@alpha.edu", claims.Email)
	}
	if claims.Role != "staff" {
		t.Errorf("Role = %s, want staff", claims.Role)
	}
	if claims.Issuer != "institute-api-test" {
		t.Errorf("Issuer = %s, want institute-api-test", claims.Issuer)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	m := testManager(time.Hour)
	token, err := m.GenerateToken(uuid.New(), "staff@alpha.edu", "staff")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Hour, Issuer: "x"})
	if _, err := other.ValidateToken(token); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	m := testManager(-time.Minute)
	token, err := m.GenerateToken(uuid.New(), "staff@alpha.edu", "staff")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); err != ErrExpiredToken {
		t.Errorf("err = %v, want ErrExpiredToken", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	m := testManager(time.Hour)
	if _, err := m.ValidateToken("not.a.token"); err != ErrInvalidToken {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}
