package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService issues and validates bearer tokens for the advisor's HTTP
// API. There are no end users here, only automation (a CI step, a cron
// job, an operator's CLI) calling in with a pre-shared client ID, so
// claims carry a client ID and a scope rather than anything person-shaped.
type TokenService struct {
	secretKey string
	tokenTTL  time.Duration
}

// Scope bounds what a token is allowed to trigger.
type Scope string

const (
	// ScopeRead permits read-only endpoints (status, past run results).
	ScopeRead Scope = "read"
	// ScopeRun permits triggering a new recommendation run.
	ScopeRun Scope = "run"
)

// NewTokenService creates a new TokenService with the given secret key and token TTL.
func NewTokenService(secretKey string, tokenTTL time.Duration) *TokenService {
	return &TokenService{
		secretKey: secretKey,
		tokenTTL:  tokenTTL,
	}
}

// GenerateToken generates a JWT token for clientID with the given scopes.
func (s *TokenService) GenerateToken(clientID string, scopes []Scope) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"client_id": clientID,
		"scopes":    scopes,
		"exp":       now.Add(s.tokenTTL).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secretKey))
}

// ValidateToken validates a JWT token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify exact signing method to prevent algorithm confusion attacks
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}

// HasScope reports whether claims grants scope.
func HasScope(claims jwt.MapClaims, scope Scope) bool {
	raw, ok := claims["scopes"].([]interface{})
	if !ok {
		return false
	}
	for _, s := range raw {
		if str, ok := s.(string); ok && Scope(str) == scope {
			return true
		}
	}
	return false
}
