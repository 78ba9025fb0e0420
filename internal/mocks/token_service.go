package mocks

import (
	"context"

	"github.com/Holography7/listkeeper/internal/service/auth"
)

// MockTokenService implements auth.TokenService for testing
type MockTokenService struct {
	// Function fields for customizable behavior
	GenerateAccessTokenFn  func(ctx context.Context, username string) (string, error)
	GenerateRefreshTokenFn func(ctx context.Context, username string) (string, error)
	ValidateAccessTokenFn  func(ctx context.Context, tokenString string) (*auth.Claims, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	AccessToken  string
	RefreshToken string
	GenerateErr  error
	ValidateErr  error
	Claims       *auth.Claims
}

// GenerateAccessToken implements the auth.TokenService interface
func (m *MockTokenService) GenerateAccessToken(
	ctx context.Context,
	username string,
) (string, error) {
	if m.GenerateAccessTokenFn != nil {
		return m.GenerateAccessTokenFn(ctx, username)
	}
	return m.AccessToken, m.GenerateErr
}

// GenerateRefreshToken implements the auth.TokenService interface
func (m *MockTokenService) GenerateRefreshToken(
	ctx context.Context,
	username string,
) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, username)
	}
	return m.RefreshToken, m.GenerateErr
}

// ValidateAccessToken implements the auth.TokenService interface
func (m *MockTokenService) ValidateAccessToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateAccessTokenFn != nil {
		return m.ValidateAccessTokenFn(ctx, tokenString)
	}
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return m.Claims, nil
}

// ValidateRefreshToken implements the auth.TokenService interface
func (m *MockTokenService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	if m.ValidateErr != nil {
		return nil, m.ValidateErr
	}
	return m.Claims, nil
}
