// Package access resolves bearer tokens to identities and enforces
// resource-level visibility rules. Authorization failures are settled here
// and never reach handler business logic.
package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Holography7/listkeeper/internal/domain"
	"github.com/Holography7/listkeeper/internal/platform/logger"
	"github.com/Holography7/listkeeper/internal/service/auth"
	"github.com/Holography7/listkeeper/internal/store"
)

// ErrUnauthorized indicates the caller presented no token, an invalid or
// expired token, or a token for an identity that no longer exists.
var ErrUnauthorized = errors.New("unauthorized")

// ExpiryRefresher is the slice of the expiry scheduler the resolver needs.
type ExpiryRefresher interface {
	Refresh(ctx context.Context, identity *domain.Identity) error
}

// Resolver authenticates bearer tokens and authorizes list access.
type Resolver struct {
	tokens     auth.TokenService
	identities store.IdentityStore
	lists      store.ListStore
	expiry     ExpiryRefresher
	logger     *slog.Logger
}

// NewResolver creates a Resolver. expiry may be nil, in which case
// successful authentications do not reschedule account expiry (used by
// tests and by deployments without the expiry worker).
func NewResolver(
	tokens auth.TokenService,
	identities store.IdentityStore,
	lists store.ListStore,
	expiry ExpiryRefresher,
	log *slog.Logger,
) *Resolver {
	if log == nil {
		log = slog.Default()
	}

	return &Resolver{
		tokens:     tokens,
		identities: identities,
		lists:      lists,
		expiry:     expiry,
		logger:     log.With(slog.String("component", "access_resolver")),
	}
}

// Authenticate verifies the bearer token as an access token and resolves
// the calling identity. Every successful authentication of a regular
// account pushes its inactivity-expiry horizon forward; a failure to do so
// is logged but never fails the request.
func (r *Resolver) Authenticate(ctx context.Context, bearerToken string) (*domain.Identity, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	if bearerToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, auth.ErrMissingToken)
	}

	claims, err := r.tokens.ValidateAccessToken(ctx, bearerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	identity, err := r.identities.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, store.ErrIdentityNotFound) {
			// Valid signature for an account that no longer exists,
			// e.g. expired between token issuance and use.
			log.Debug("token subject no longer exists",
				slog.String("username", claims.Username))
			return nil, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	if r.expiry != nil && !identity.IsSuperuser() {
		if err := r.expiry.Refresh(ctx, identity); err != nil {
			log.Error("failed to refresh expiry schedule",
				slog.String("username", identity.Username),
				slog.String("error", err.Error()))
		}
	}

	return identity, nil
}

// AuthorizeList fetches the list if the identity may see it: superusers
// see any list, owners see their own. A list that exists but is invisible
// to the caller is reported exactly like a missing one, so responses give
// no way to probe for other users' list IDs.
func (r *Resolver) AuthorizeList(ctx context.Context, identity *domain.Identity, listID uuid.UUID) (*domain.List, error) {
	list, err := r.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, err
	}

	if !identity.IsSuperuser() && list.OwnerID != identity.ID {
		return nil, store.ErrListNotFound
	}

	return list, nil
}
