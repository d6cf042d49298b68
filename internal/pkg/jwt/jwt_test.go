package jwt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/osintdesk/console-api/internal/pkg/jwt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Minute, time.Hour)
	adminID := uuid.New()

	token, err := svc.GenerateAccessToken(adminID, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.AdminID != adminID || claims.Role != "admin" {
		t.Fatalf("claims mismatch: %v / %s", claims.AdminID, claims.Role)
	}
}

func TestTokenTypeConfusion(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Minute, time.Hour)
	adminID := uuid.New()

	refresh, _, _, err := svc.GenerateRefreshToken(adminID)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// A refresh token must never pass as an access token
	if _, err := svc.ValidateAccessToken(refresh); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	access, err := svc.GenerateAccessToken(adminID, "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateRefreshToken(access); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := jwt.NewService("test-secret", -time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, jwt.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecret(t *testing.T) {
	issuer := jwt.NewService("secret-a", time.Minute, time.Hour)
	verifier := jwt.NewService("secret-b", time.Minute, time.Hour)

	token, err := issuer.GenerateAccessToken(uuid.New(), "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.ValidateAccessToken(token); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
