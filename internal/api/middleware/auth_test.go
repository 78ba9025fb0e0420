package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holography7/listkeeper/internal/api/middleware"
	"github.com/Holography7/listkeeper/internal/api/shared"
	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/mocks"
	"github.com/Holography7/listkeeper/internal/service/access"
	"github.com/Holography7/listkeeper/internal/service/auth"
)

func newAuthMiddleware(t *testing.T, tokens *mocks.MockTokenService) (*middleware.AuthMiddleware, *mocks.MockIdentityStore) {
	t.Helper()

	identities := mocks.NewMockIdentityStore()
	lists := mocks.NewMockListStore()
	resolver := access.NewResolver(tokens, identities, lists, nil, nil)
	return middleware.NewAuthMiddleware(resolver), identities
}

// echoIdentity reports whether the middleware put an identity in context.
func echoIdentity(t *testing.T, got **domain.Identity) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.GetIdentity(r)
		require.True(t, ok)
		*got = identity
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	t.Run("valid token reaches the handler", func(t *testing.T) {
		t.Parallel()

		tokens := &mocks.MockTokenService{
			Claims: &auth.Claims{Username: "alice", TokenType: auth.TokenKindAccess},
		}
		mw, identities := newAuthMiddleware(t, tokens)

		identity, err := domain.NewIdentity("alice", "password-long-enough", "@alice")
		require.NoError(t, err)
		identities.Add(identity)

		var got *domain.Identity
		handler := mw.Authenticate(echoIdentity(t, &got))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		mw, _ := newAuthMiddleware(t, &mocks.MockTokenService{})
		handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		}))

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authorization header required")
	})

	t.Run("malformed header", func(t *testing.T) {
		t.Parallel()

		mw, _ := newAuthMiddleware(t, &mocks.MockTokenService{})
		handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not be reached")
		}))

		for _, header := range []string{"valid-token", "Basic dXNlcg==", "Bearer a b"} {
			req := httptest.NewRequest(http.MethodGet, "/profile", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()

		tokens := &mocks.MockTokenService{ValidateErr: auth.ErrExpiredToken}
		mw, _ := newAuthMiddleware(t, tokens)
		handler := mw.Authenticate(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer expired-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Token expired")
	})

	t.Run("refresh token on an API route", func(t *testing.T) {
		t.Parallel()

		tokens := &mocks.MockTokenService{ValidateErr: auth.ErrWrongTokenType}
		mw, _ := newAuthMiddleware(t, tokens)
		handler := mw.Authenticate(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer refresh-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid token")
	})

	t.Run("token for a deleted account", func(t *testing.T) {
		t.Parallel()

		tokens := &mocks.MockTokenService{
			Claims: &auth.Claims{Username: "ghost", TokenType: auth.TokenKindAccess},
		}
		mw, _ := newAuthMiddleware(t, tokens)
		handler := mw.Authenticate(http.NotFoundHandler())

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		req.Header.Set("Authorization", "Bearer orphaned-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer the-token")

	token, err := middleware.ExtractBearerToken(req)
	require.NoError(t, err)
	assert.Equal(t, "the-token", token)
}

func TestGetIdentity(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := middleware.GetIdentity(req)
	assert.False(t, ok)

	identity := &domain.Identity{Username: "alice"}
	ctx := context.WithValue(req.Context(), shared.IdentityContextKey, identity)
	got, ok := middleware.GetIdentity(req.WithContext(ctx))
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)
}
