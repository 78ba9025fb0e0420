package auth

import (
	"context"
	"time"
)

// TokenKind distinguishes the two token classes issued by the service.
type TokenKind string

const (
	// TokenKindAccess is the short-lived token presented on API requests.
	TokenKindAccess TokenKind = "access"

	// TokenKindRefresh is the long-lived token exchanged for new pairs.
	TokenKindRefresh TokenKind = "refresh"
)

// TokenService defines operations for issuing and verifying the signed
// bearer tokens used for authentication. Verification is stateless: a token
// is judged purely by its signature, expiry, and kind claim.
type TokenService interface {
	// GenerateAccessToken creates a signed access token for the given
	// username. Returns the token string or an error if signing fails.
	GenerateAccessToken(ctx context.Context, username string) (string, error)

	// GenerateRefreshToken creates a signed refresh token for the given
	// username. Refresh tokens have a longer lifetime and are signed with a
	// different secret than access tokens.
	GenerateRefreshToken(ctx context.Context, username string) (string, error)

	// ValidateAccessToken validates an access token string and extracts the
	// claims. Returns ErrWrongTokenType if given a refresh token.
	ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error)

	// ValidateRefreshToken validates a refresh token string and extracts the
	// claims. Returns ErrWrongTokenType if given an access token.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the verified claim set of a token.
type Claims struct {
	// Username is the subject the token was issued for.
	Username string `json:"sub,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	TokenType TokenKind `json:"type,omitempty"`

	// Standard registered JWT claims
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
