package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Holography7/listkeeper/internal/api/middleware"
	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/service/access"
	"github.com/Holography7/listkeeper/internal/service/auth"
	"github.com/Holography7/listkeeper/internal/store"
)

// AuthHandler handles registration and token-related API requests.
type AuthHandler struct {
	identityStore    store.IdentityStore
	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	resolver         *access.Resolver
	expiry           access.ExpiryRefresher
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// expiry may be nil, in which case registration does not schedule an
// inactivity-expiry job.
func NewAuthHandler(
	identityStore store.IdentityStore,
	tokenService auth.TokenService,
	passwordVerifier auth.PasswordVerifier,
	resolver *access.Resolver,
	expiry access.ExpiryRefresher,
) *AuthHandler {
	return &AuthHandler{
		identityStore:    identityStore,
		tokenService:     tokenService,
		passwordVerifier: passwordVerifier,
		resolver:         resolver,
		expiry:           expiry,
		validator:        validator.New(),
	}
}

// Register handles the /registration endpoint.
//
// A caller presenting a valid access token is already registered and gets
// 403; an absent or invalid Authorization header is treated as anonymous.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if token, err := middleware.ExtractBearerToken(r); err == nil {
		if _, authErr := h.resolver.Authenticate(r.Context(), token); authErr == nil {
			RespondWithError(w, r, http.StatusForbidden, "Already registered")
			return
		}
	}

	var req RegisterRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	identity, err := domain.NewIdentity(req.Username, req.Password, req.Telegram)
	if err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid account data: "+err.Error())
		return
	}

	if err := h.identityStore.Create(r.Context(), identity); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			RespondWithError(w, r, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to create identity", "error", err, "username", req.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to create account")
		return
	}

	// A fresh account starts its inactivity clock immediately. Scheduling
	// failures only delay expiry, so they never fail the registration.
	if h.expiry != nil {
		if err := h.expiry.Refresh(r.Context(), identity); err != nil {
			slog.Error("failed to schedule expiry for new account",
				"error", err, "username", identity.Username)
		}
	}

	RespondWithJSON(w, r, http.StatusCreated, RegisterResponse{
		Username: identity.Username,
		Telegram: identity.Telegram,
	})
}

// CreateTokens handles the /tokens endpoint, exchanging credentials for a
// fresh access/refresh token pair.
func (h *AuthHandler) CreateTokens(w http.ResponseWriter, r *http.Request) {
	var req CreateTokensRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	identity, err := h.identityStore.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			RespondWithError(w, r, http.StatusUnauthorized, "Bad username or password")
			return
		}
		slog.Error("failed to get identity by username", "error", err, "username", req.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	if err := h.passwordVerifier.Compare(identity.HashedPassword, req.Password); err != nil {
		RespondWithError(w, r, http.StatusUnauthorized, "Bad username or password")
		return
	}

	h.issueTokenPair(w, r, identity)
}

// RefreshTokens handles the /tokens/refresh endpoint. A valid refresh token
// yields a brand-new pair; access tokens are rejected here.
func (h *AuthHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := DecodeJSON(r, &req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.tokenService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	identity, err := h.identityStore.GetByUsername(r.Context(), claims.Username)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			// Account deleted since the refresh token was issued.
			RespondWithError(w, r, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		slog.Error("failed to get identity for refresh", "error", err, "username", claims.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to refresh tokens")
		return
	}

	h.issueTokenPair(w, r, identity)
}

// Profile handles the authenticated /profile endpoint.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, ProfileResponse{
		Username: identity.Username,
		Telegram: identity.Telegram,
		Role:     string(identity.Role),
	})
}

func (h *AuthHandler) issueTokenPair(w http.ResponseWriter, r *http.Request, identity *domain.Identity) {
	accessToken, err := h.tokenService.GenerateAccessToken(r.Context(), identity.Username)
	if err != nil {
		slog.Error("failed to generate access token", "error", err, "username", identity.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	refreshToken, err := h.tokenService.GenerateRefreshToken(r.Context(), identity.Username)
	if err != nil {
		slog.Error("failed to generate refresh token", "error", err, "username", identity.Username)
		RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	RespondWithJSON(w, r, http.StatusCreated, TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
