package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/config"
	"github.com/Holography7/listkeeper/internal/platform/logger"
)

// hmacTokenService is an implementation of TokenService using HMAC-SHA
// signing with a distinct secret per token kind.
type hmacTokenService struct {
	accessKey       []byte
	refreshKey      []byte
	accessLifetime  time.Duration
	refreshLifetime time.Duration
	timeFunc        func() time.Time // Injectable for testing
	clockSkew       time.Duration    // Allowed time difference to handle clock drift
}

// tokenClaims defines the structure of the JWT claims we sign.
type tokenClaims struct {
	TokenType TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// Ensure hmacTokenService implements TokenService interface
var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a new TokenService using HMAC-SHA256 signing.
// Access and refresh secrets must each be at least 32 bytes and must differ
// from one another, so that leaking one secret does not compromise the
// other token class.
func NewTokenService(cfg config.AuthConfig) (TokenService, error) {
	if len(cfg.AccessSecret) < 32 {
		return nil, fmt.Errorf("access token secret must be at least 32 characters")
	}
	if len(cfg.RefreshSecret) < 32 {
		return nil, fmt.Errorf("refresh token secret must be at least 32 characters")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, fmt.Errorf("access and refresh token secrets must differ")
	}

	return &hmacTokenService{
		accessKey:       []byte(cfg.AccessSecret),
		refreshKey:      []byte(cfg.RefreshSecret),
		accessLifetime:  time.Duration(cfg.AccessTokenLifetimeMinutes) * time.Minute,
		refreshLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:        time.Now,
		clockSkew:       2 * time.Minute,
	}, nil
}

// GenerateAccessToken creates a signed access token for the given username.
func (s *hmacTokenService) GenerateAccessToken(ctx context.Context, username string) (string, error) {
	return s.generate(ctx, username, TokenKindAccess)
}

// GenerateRefreshToken creates a signed refresh token for the given username.
func (s *hmacTokenService) GenerateRefreshToken(ctx context.Context, username string) (string, error) {
	return s.generate(ctx, username, TokenKindRefresh)
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *hmacTokenService) ValidateAccessToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenKindAccess)
}

// ValidateRefreshToken validates a refresh token and returns its claims.
func (s *hmacTokenService) ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.validate(ctx, tokenString, TokenKindRefresh)
}

// key returns the signing secret for the given token kind.
func (s *hmacTokenService) key(kind TokenKind) []byte {
	if kind == TokenKindRefresh {
		return s.refreshKey
	}
	return s.accessKey
}

// lifetime returns the configured lifetime for the given token kind.
func (s *hmacTokenService) lifetime(kind TokenKind) time.Duration {
	if kind == TokenKindRefresh {
		return s.refreshLifetime
	}
	return s.accessLifetime
}

func (s *hmacTokenService) generate(ctx context.Context, username string, kind TokenKind) (string, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	claims := tokenClaims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime(kind))),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(s.key(kind))
	if err != nil {
		log.Error("failed to sign JWT token",
			"error", err,
			"username", username,
			"token_type", kind,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign %s token with HMAC-SHA256: %w", kind, err)
	}

	return signedToken, nil
}

func (s *hmacTokenService) validate(ctx context.Context, tokenString string, kind TokenKind) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time {
			return now
		}),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&tokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.key(kind), nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: token expired",
				"error", err,
				"token_type", kind)
			return nil, expiredErr(kind)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: token not yet valid",
				"error", err,
				"token_type", kind)
			if kind == TokenKindRefresh {
				return nil, ErrInvalidRefreshToken
			}
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("token validation failed",
				"error", err,
				"token_type", kind,
				"error_type", fmt.Sprintf("%T", err))
			return nil, invalidErr(kind)
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims", "token_type", kind)
		return nil, invalidErr(kind)
	}

	if claims.TokenType != kind {
		log.Debug("token validation failed: wrong token type",
			"expected", kind,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	log.Debug("token validated successfully",
		"username", claims.Subject,
		"token_id", claims.ID,
		"token_type", kind,
		"expiry", claims.ExpiresAt.Time)

	return &Claims{
		Username:  claims.Subject,
		TokenType: claims.TokenType,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}

func invalidErr(kind TokenKind) error {
	if kind == TokenKindRefresh {
		return ErrInvalidRefreshToken
	}
	return ErrInvalidToken
}

func expiredErr(kind TokenKind) error {
	if kind == TokenKindRefresh {
		return ErrExpiredRefreshToken
	}
	return ErrExpiredToken
}
