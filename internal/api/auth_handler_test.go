package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Holography7/listkeeper/internal/api"
	"github.com/Holography7/listkeeper/internal/api/shared"
	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/mocks"
	"github.com/Holography7/listkeeper/internal/service/access"
	"github.com/Holography7/listkeeper/internal/service/auth"
)

type authFixture struct {
	identities *mocks.MockIdentityStore
	tokens     *mocks.MockTokenService
	verifier   *mocks.MockPasswordVerifier
	handler    *api.AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	identities := mocks.NewMockIdentityStore()
	lists := mocks.NewMockListStore()
	tokens := &mocks.MockTokenService{
		AccessToken:  "test-access-token",
		RefreshToken: "test-refresh-token",
		ValidateErr:  auth.ErrInvalidToken,
	}
	verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
	resolver := access.NewResolver(tokens, identities, lists, nil, nil)

	return &authFixture{
		identities: identities,
		tokens:     tokens,
		verifier:   verifier,
		handler:    api.NewAuthHandler(identities, tokens, verifier, resolver, nil),
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestRegister(t *testing.T) {
	t.Parallel()

	validBody := map[string]string{
		"username":        "alice",
		"password":        "password-long-enough",
		"repeat_password": "password-long-enough",
		"telegram":        "@alice",
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		w := postJSON(t, f.handler.Register, "/registration", validBody, nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp api.RegisterResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "@alice", resp.Telegram)

		stored, err := f.identities.GetByUsername(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleOwner, stored.Role)
	})

	t.Run("password mismatch", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := map[string]string{
			"username":        "alice",
			"password":        "password-long-enough",
			"repeat_password": "different-password!!",
			"telegram":        "@alice",
		}
		w := postJSON(t, f.handler.Register, "/registration", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("password too short", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := map[string]string{
			"username":        "alice",
			"password":        "short",
			"repeat_password": "short",
			"telegram":        "@alice",
		}
		w := postJSON(t, f.handler.Register, "/registration", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("telegram without prefix", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := map[string]string{
			"username":        "alice",
			"password":        "password-long-enough",
			"repeat_password": "password-long-enough",
			"telegram":        "alice",
		}
		w := postJSON(t, f.handler.Register, "/registration", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		first := postJSON(t, f.handler.Register, "/registration", validBody, nil)
		require.Equal(t, http.StatusCreated, first.Code)

		second := postJSON(t, f.handler.Register, "/registration", validBody, nil)
		assert.Equal(t, http.StatusConflict, second.Code)
	})

	t.Run("already authenticated caller is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		existing, err := domain.NewIdentity("bob", "password-long-enough", "@bob")
		require.NoError(t, err)
		f.identities.Add(existing)

		// The caller's access token validates successfully.
		f.tokens.ValidateErr = nil
		f.tokens.Claims = &auth.Claims{Username: "bob", TokenType: auth.TokenKindAccess}

		w := postJSON(t, f.handler.Register, "/registration", validBody, map[string]string{
			"Authorization": "Bearer some-valid-token",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid bearer token is treated as anonymous", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		w := postJSON(t, f.handler.Register, "/registration", validBody, map[string]string{
			"Authorization": "Bearer garbage",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestCreateTokens(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, f *authFixture) {
		t.Helper()
		identity, err := domain.NewIdentity("alice", "password-long-enough", "@alice")
		require.NoError(t, err)
		identity.HashedPassword = "$2a$10$fakehash"
		f.identities.Add(identity)
	}

	t.Run("success returns a fresh pair", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		seed(t, f)

		body := map[string]string{"username": "alice", "password": "password-long-enough"}
		w := postJSON(t, f.handler.CreateTokens, "/tokens", body, nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp api.TokenPairResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "test-access-token", resp.AccessToken)
		assert.Equal(t, "test-refresh-token", resp.RefreshToken)
	})

	t.Run("unknown username", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		body := map[string]string{"username": "nobody", "password": "password-long-enough"}
		w := postJSON(t, f.handler.CreateTokens, "/tokens", body, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Bad username or password", resp.Error)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)
		seed(t, f)
		f.verifier.ShouldSucceed = false

		body := map[string]string{"username": "alice", "password": "wrong-password"}
		w := postJSON(t, f.handler.CreateTokens, "/tokens", body, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		// Wrong password and unknown username are indistinguishable.
		var resp shared.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "Bad username or password", resp.Error)
	})
}

func TestRefreshTokens(t *testing.T) {
	t.Parallel()

	t.Run("valid refresh token yields new pair", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		identity, err := domain.NewIdentity("alice", "password-long-enough", "@alice")
		require.NoError(t, err)
		f.identities.Add(identity)

		f.tokens.ValidateRefreshTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			return &auth.Claims{Username: "alice", TokenType: auth.TokenKindRefresh}, nil
		}

		body := map[string]string{"refresh_token": "some-refresh-token"}
		w := postJSON(t, f.handler.RefreshTokens, "/tokens/refresh", body, nil)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp api.TokenPairResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("access token rejected", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		f.tokens.ValidateRefreshTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			return nil, auth.ErrInvalidRefreshToken
		}

		body := map[string]string{"refresh_token": "an-access-token"}
		w := postJSON(t, f.handler.RefreshTokens, "/tokens/refresh", body, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token for deleted account", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		f.tokens.ValidateRefreshTokenFn = func(ctx context.Context, tokenString string) (*auth.Claims, error) {
			return &auth.Claims{Username: "ghost", TokenType: auth.TokenKindRefresh}, nil
		}

		body := map[string]string{"refresh_token": "orphaned-token"}
		w := postJSON(t, f.handler.RefreshTokens, "/tokens/refresh", body, nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		identity, err := domain.NewIdentity("alice", "password-long-enough", "@alice")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		ctx := context.WithValue(req.Context(), shared.IdentityContextKey, identity)
		req = req.WithContext(ctx)

		w := httptest.NewRecorder()
		f.handler.Profile(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp api.ProfileResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "@alice", resp.Telegram)
		assert.Equal(t, "owner", resp.Role)
	})

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()
		f := newAuthFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		w := httptest.NewRecorder()
		f.handler.Profile(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
