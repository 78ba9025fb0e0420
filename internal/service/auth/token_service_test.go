package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holography7/listkeeper/internal/config"
)

const (
	testAccessSecret  = "access-secret-that-is-long-enough-for-testing"
	testRefreshSecret = "refresh-secret-that-is-long-enough-for-testing"
)

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.AuthConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: config.AuthConfig{
				AccessSecret:                testAccessSecret,
				RefreshSecret:               testRefreshSecret,
				AccessTokenLifetimeMinutes:  60,
				RefreshTokenLifetimeMinutes: 10080,
			},
			wantErr: false,
		},
		{
			name: "access secret too short",
			cfg: config.AuthConfig{
				AccessSecret:                "short",
				RefreshSecret:               testRefreshSecret,
				AccessTokenLifetimeMinutes:  60,
				RefreshTokenLifetimeMinutes: 10080,
			},
			wantErr: true,
		},
		{
			name: "refresh secret too short",
			cfg: config.AuthConfig{
				AccessSecret:                testAccessSecret,
				RefreshSecret:               "short",
				AccessTokenLifetimeMinutes:  60,
				RefreshTokenLifetimeMinutes: 10080,
			},
			wantErr: true,
		},
		{
			name: "identical secrets rejected",
			cfg: config.AuthConfig{
				AccessSecret:                testAccessSecret,
				RefreshSecret:               testAccessSecret,
				AccessTokenLifetimeMinutes:  60,
				RefreshTokenLifetimeMinutes: 10080,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, err := NewTokenService(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, svc)
			}
		})
	}
}

func TestGenerateAccessToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	accessLifetime := 60 * time.Minute

	svc := NewTestTokenService(
		testAccessSecret, testRefreshSecret,
		accessLifetime, 7*24*time.Hour,
		func() time.Time { return fixedTime },
	)

	token, err := svc.GenerateAccessToken(context.Background(), "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenKindAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(accessLifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	refreshLifetime := 7 * 24 * time.Hour

	svc := NewTestTokenService(
		testAccessSecret, testRefreshSecret,
		time.Hour, refreshLifetime,
		func() time.Time { return fixedTime },
	)

	token, err := svc.GenerateRefreshToken(context.Background(), "alice")
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, TokenKindRefresh, claims.TokenType)
	assert.Equal(t, fixedTime.Add(refreshLifetime).Unix(), claims.ExpiresAt.Unix())
}

func TestValidateAccessToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	newService := func(timeFunc func() time.Time) TokenService {
		return NewTestTokenService(
			testAccessSecret, testRefreshSecret,
			time.Hour, 7*24*time.Hour,
			timeFunc,
		)
	}

	tests := []struct {
		name      string
		setupFunc func() (TokenService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func() (TokenService, string) {
				svc := newService(func() time.Time { return fixedTime })
				token, _ := svc.GenerateAccessToken(context.Background(), "alice")
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "expired token",
			setupFunc: func() (TokenService, string) {
				genSvc := newService(func() time.Time { return fixedTime })
				token, _ := genSvc.GenerateAccessToken(context.Background(), "alice")

				// Validate two hours later, past the one hour lifetime
				valSvc := newService(func() time.Time { return fixedTime.Add(2 * time.Hour) })
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "token signed with wrong secret",
			setupFunc: func() (TokenService, string) {
				otherSvc := NewTestTokenService(
					"another-access-secret-also-long-enough-here",
					testRefreshSecret,
					time.Hour, 7*24*time.Hour,
					func() time.Time { return fixedTime },
				)
				token, _ := otherSvc.GenerateAccessToken(context.Background(), "alice")

				svc := newService(func() time.Time { return fixedTime })
				return svc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "garbage token",
			setupFunc: func() (TokenService, string) {
				svc := newService(func() time.Time { return fixedTime })
				return svc, "not.a.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token rejected as access token",
			setupFunc: func() (TokenService, string) {
				svc := newService(func() time.Time { return fixedTime })
				token, _ := svc.GenerateRefreshToken(context.Background(), "alice")
				return svc, token
			},
			// Kinds are signed with distinct secrets, so the signature
			// check fails before the type claim is even consulted.
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc()

			claims, err := svc.ValidateAccessToken(context.Background(), token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "alice", claims.Username)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	newService := func(timeFunc func() time.Time) TokenService {
		return NewTestTokenService(
			testAccessSecret, testRefreshSecret,
			time.Hour, 7*24*time.Hour,
			timeFunc,
		)
	}

	t.Run("access token rejected as refresh token", func(t *testing.T) {
		t.Parallel()
		svc := newService(func() time.Time { return fixedTime })
		token, err := svc.GenerateAccessToken(context.Background(), "alice")
		require.NoError(t, err)

		_, err = svc.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()
		genSvc := newService(func() time.Time { return fixedTime })
		token, err := genSvc.GenerateRefreshToken(context.Background(), "alice")
		require.NoError(t, err)

		valSvc := newService(func() time.Time { return fixedTime.Add(8 * 24 * time.Hour) })
		_, err = valSvc.ValidateRefreshToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredRefreshToken)
	})

	t.Run("valid refresh token", func(t *testing.T) {
		t.Parallel()
		svc := newService(func() time.Time { return fixedTime })
		token, err := svc.GenerateRefreshToken(context.Background(), "alice")
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
	})
}
