// Package auth validates access tokens issued by the external identity
// provider. User, role and session management live outside the engine;
// only claims extraction happens here.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "finbooks/internal/core/context"
)

// JWTConfig holds JWT validation configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "finbooks",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims represents the token claims the engine consumes.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"uid"`
	TenantID string   `json:"tid"`
	BranchID string   `json:"bid,omitempty"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	IsAdmin  bool     `json:"adm,omitempty"`
}

// JWTService validates and (for development tooling) issues tokens.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken issues a token with the given identity claims.
// Used by the dev token command and tests; production tokens come from
// the identity provider with the same shared secret.
func (s *JWTService) GenerateAccessToken(
	userID, tenantID, branchID, email string,
	roles []string,
	isAdmin bool,
) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:   userID,
		TenantID: tenantID,
		BranchID: branchID,
		Email:    email,
		Roles:    roles,
		IsAdmin:  isAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a token and returns the caller identity.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &appctx.UserContext{
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
		BranchID: claims.BranchID,
		Email:    claims.Email,
		Roles:    claims.Roles,
		IsAdmin:  claims.IsAdmin,
	}, nil
}
