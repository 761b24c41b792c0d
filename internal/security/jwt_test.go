package security_test

import (
	"testing"
	"time"

	"github.com/Rrens/shop-assistant/internal/security"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-with-32-chars!!"

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	userID := "665f1c2e9b1d4a0012ab34cd"
	email := "shopper@example.com"

	accessToken, err := manager.GenerateAccessToken(userID, email, "customer")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	if accessToken == "" {
		t.Error("access token is empty")
	}

	claims, err := manager.ValidateAccessToken(accessToken)
	if err != nil {
		t.Fatalf("failed to validate access token: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user ID mismatch: got %v, want %v", claims.UserID, userID)
	}
	if claims.Email != email {
		t.Errorf("email mismatch: got %v, want %v", claims.Email, email)
	}
	if claims.Role != "customer" {
		t.Errorf("role mismatch: got %v, want customer", claims.Role)
	}
}

func TestJWTManager_GenerateTokenPair(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	userID := "u-42"

	accessToken, refreshToken, expiresIn, err := manager.GenerateTokenPair(userID, "shopper@example.com", "customer")
	if err != nil {
		t.Fatalf("failed to generate token pair: %v", err)
	}
	if accessToken == "" {
		t.Error("access token is empty")
	}
	if refreshToken == "" {
		t.Error("refresh token is empty")
	}
	if expiresIn != int64((15 * time.Minute).Seconds()) {
		t.Errorf("expires in mismatch: got %d, want %d", expiresIn, int64((15 * time.Minute).Seconds()))
	}

	extractedUserID, err := manager.ValidateRefreshToken(refreshToken)
	if err != nil {
		t.Fatalf("failed to validate refresh token: %v", err)
	}
	if extractedUserID != userID {
		t.Errorf("user ID from refresh token mismatch: got %v, want %v", extractedUserID, userID)
	}

	// a refresh token is not an access token
	if _, err := manager.ValidateAccessToken(refreshToken); err == nil {
		t.Error("expected refresh token to be rejected as access token")
	}
}

func TestJWTManager_InvalidToken(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	if _, err := manager.ValidateAccessToken("invalid-token"); err == nil {
		t.Error("expected error for invalid token, got nil")
	}
	if _, err := manager.ValidateAccessToken(""); err == nil {
		t.Error("expected error for empty token, got nil")
	}

	otherManager := security.NewJWTManager("different-secret-key-32-chars!!", 15*time.Minute, 7*24*time.Hour)
	token, _ := otherManager.GenerateAccessToken("u-1", "shopper@example.com", "customer")
	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for token signed with different secret, got nil")
	}
}

func TestJWTManager_ForeignIssuer(t *testing.T) {
	manager := security.NewJWTManager(testSecret, 15*time.Minute, time.Hour)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := foreign.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	if _, err := manager.ValidateRefreshToken(signed); err == nil {
		t.Error("expected error for foreign issuer, got nil")
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := security.NewJWTManager(testSecret, -time.Minute, time.Hour)

	token, err := manager.GenerateAccessToken("u-1", "shopper@example.com", "customer")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	if _, err := manager.ValidateAccessToken(token); err == nil {
		t.Error("expected error for expired token, got nil")
	}
}

func TestJWTManager_AccessTokenTTL(t *testing.T) {
	accessTTL := 30 * time.Minute
	manager := security.NewJWTManager(testSecret, accessTTL, 7*24*time.Hour)

	if manager.AccessTokenTTL() != accessTTL {
		t.Errorf("access token TTL mismatch: got %v, want %v", manager.AccessTokenTTL(), accessTTL)
	}
}
