package auth

import (
	"strings"
	"testing"
	"time"
)

func TestNewTokenService(t *testing.T) {
	secretKey := "test-secret"
	tokenTTL := time.Hour

	service := NewTokenService(secretKey, tokenTTL)

	if service == nil {
		t.Fatal("NewTokenService() returned nil")
	}

	if service.secretKey != secretKey {
		t.Errorf("TokenService.secretKey = %v, want %v", service.secretKey, secretKey)
	}

	if service.tokenTTL != tokenTTL {
		t.Errorf("TokenService.tokenTTL = %v, want %v", service.tokenTTL, tokenTTL)
	}
}

func TestTokenServiceGenerateToken(t *testing.T) {
	service := NewTokenService("test-secret-key", time.Hour)

	tests := []struct {
		name     string
		clientID string
		scopes   []Scope
	}{
		{
			name:     "generates token with all scopes",
			clientID: "client-123",
			scopes:   []Scope{ScopeRead, ScopeRun},
		},
		{
			name:     "generates token with single scope",
			clientID: "client-456",
			scopes:   []Scope{ScopeRead},
		},
		{
			name:     "generates token with no scopes",
			clientID: "client-789",
			scopes:   []Scope{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.GenerateToken(tt.clientID, tt.scopes)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			if token == "" {
				t.Error("GenerateToken() returned empty token")
			}

			// Token should have 3 parts separated by dots
			parts := strings.Split(token, ".")
			if len(parts) != 3 {
				t.Errorf("Token has %d parts, expected 3", len(parts))
			}

			// Validate the token
			claims, err := service.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}

			// Verify claims
			if claims["client_id"] != tt.clientID {
				t.Errorf("Token client_id = %v, want %v", claims["client_id"], tt.clientID)
			}

			// Verify scopes
			scopesInterface, ok := claims["scopes"].([]interface{})
			if !ok {
				t.Fatal("Token scopes claim is not []interface{}")
			}

			if len(scopesInterface) != len(tt.scopes) {
				t.Errorf("Token has %d scopes, want %d", len(scopesInterface), len(tt.scopes))
			}

			for i, scope := range tt.scopes {
				if scopesInterface[i] != string(scope) {
					t.Errorf("Token scopes[%d] = %v, want %v", i, scopesInterface[i], scope)
				}
			}

			// Verify exp and iat claims exist
			if _, ok := claims["exp"]; !ok {
				t.Error("Token missing exp claim")
			}

			if _, ok := claims["iat"]; !ok {
				t.Error("Token missing iat claim")
			}
		})
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	service := NewTokenService("test-secret-key", time.Hour)

	// Generate a valid token
	validToken, _ := service.GenerateToken("client-123", []Scope{ScopeRun})

	tests := []struct {
		name      string
		token     string
		wantError bool
	}{
		{
			name:      "validates valid token",
			token:     validToken,
			wantError: false,
		},
		{
			name:      "rejects invalid token format",
			token:     "invalid.token.format",
			wantError: true,
		},
		{
			name:      "rejects malformed token",
			token:     "notavalidtoken",
			wantError: true,
		},
		{
			name:      "rejects empty token",
			token:     "",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)

			if tt.wantError {
				if err == nil {
					t.Error("ValidateToken() should return error for invalid token")
				}
			} else {
				if err != nil {
					t.Errorf("ValidateToken() unexpected error = %v", err)
				}

				if claims == nil {
					t.Error("ValidateToken() returned nil claims for valid token")
				}
			}
		})
	}
}

func TestTokenServiceValidateTokenWithWrongSecret(t *testing.T) {
	// Create token with one secret
	service1 := NewTokenService("secret-key-1", time.Hour)
	token, _ := service1.GenerateToken("client-123", []Scope{ScopeRun})

	// Try to validate with different secret
	service2 := NewTokenService("secret-key-2", time.Hour)
	claims, err := service2.ValidateToken(token)

	if err == nil {
		t.Error("ValidateToken() should reject token signed with different secret")
	}

	if claims != nil {
		t.Error("ValidateToken() should return nil claims for invalid token")
	}
}

func TestTokenServiceValidateExpiredToken(t *testing.T) {
	// Create service with negative TTL (already expired)
	service := NewTokenService("test-secret", -time.Hour)
	token, err := service.GenerateToken("client-expired", []Scope{ScopeRun})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Try to validate expired token
	claims, err := service.ValidateToken(token)
	if err == nil {
		t.Error("ValidateToken() should reject expired token")
	}

	if claims != nil {
		t.Error("ValidateToken() should return nil claims for expired token")
	}
}

func TestTokenServiceTokenExpiration(t *testing.T) {
	ttl := 2 * time.Second
	service := NewTokenService("test-secret", ttl)

	token, err := service.GenerateToken("client-123", []Scope{ScopeRun})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Token should be valid immediately
	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Errorf("ValidateToken() should accept fresh token, got error: %v", err)
	}

	if claims == nil {
		t.Fatal("ValidateToken() returned nil claims for fresh token")
	}

	// Check exp claim is in the future
	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatal("exp claim is not a number")
	}

	expTime := time.Unix(int64(exp), 0)
	if !expTime.After(time.Now()) {
		t.Error("Token expiration should be in the future")
	}
}

func TestTokenServiceWithEmptyClientID(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)

	token, err := service.GenerateToken("", []Scope{ScopeRun})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	// Token should still be generated and valid
	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Errorf("ValidateToken() error = %v", err)
	}

	if claims["client_id"] != "" {
		t.Errorf("Expected empty client_id, got %v", claims["client_id"])
	}
}

func TestTokenServiceWithSpecialCharacters(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)

	specialInputs := []struct {
		clientID string
		scopes   []Scope
	}{
		{"client-with-unicode-üîê", []Scope{ScopeRun}},
		{"client@special#chars!", []Scope{ScopeRead, ScopeRun}},
		{"client\twith\ttabs", []Scope{ScopeRun}},
	}

	for _, input := range specialInputs {
		t.Run(input.clientID, func(t *testing.T) {
			token, err := service.GenerateToken(input.clientID, input.scopes)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			claims, err := service.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}

			if claims["client_id"] != input.clientID {
				t.Errorf("client_id = %v, want %v", claims["client_id"], input.clientID)
			}
		})
	}
}

func TestHasScope(t *testing.T) {
	service := NewTokenService("test-secret", time.Hour)
	token, err := service.GenerateToken("client-123", []Scope{ScopeRead})
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := service.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if !HasScope(claims, ScopeRead) {
		t.Error("expected claims to have ScopeRead")
	}
	if HasScope(claims, ScopeRun) {
		t.Error("did not expect claims to have ScopeRun")
	}
}

func BenchmarkTokenServiceGenerateToken(b *testing.B) {
	service := NewTokenService("test-secret-key", time.Hour)
	scopes := []Scope{ScopeRead, ScopeRun}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = service.GenerateToken("client-bench", scopes)
	}
}

func BenchmarkTokenServiceValidateToken(b *testing.B) {
	service := NewTokenService("test-secret-key", time.Hour)
	token, _ := service.GenerateToken("client-bench", []Scope{ScopeRun})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = service.ValidateToken(token)
	}
}
