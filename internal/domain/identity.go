package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role classifies an identity for authorization decisions.
// Authorization code branches on the role rather than a boolean flag so
// that additional roles can be introduced without changing call sites.
type Role string

const (
	// RoleOwner is a regular account that only sees its own lists.
	RoleOwner Role = "owner"

	// RoleSuperuser sees and manages every list in the system.
	// Superuser accounts are exempt from inactivity expiry.
	RoleSuperuser Role = "superuser"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleSuperuser
}

// Identity represents a registered account: credentials, a contact address
// for out-of-band notifications, a role, and the reference to the currently
// outstanding account-expiry job, if any.
type Identity struct {
	ID             uuid.UUID  `json:"id"`
	Username       string     `json:"username"`
	Password       string     `json:"-"` // Plaintext, only set transiently during registration
	HashedPassword string     `json:"-"` // Never expose the hash in JSON
	Telegram       string     `json:"telegram"`
	Role           Role       `json:"role"`
	ExpiryJobID    *uuid.UUID `json:"-"` // Outstanding inactivity-expiry job, nil if none
	LastSeen       time.Time  `json:"last_seen"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewIdentity creates a new owner-role Identity with the given credentials.
// The plaintext password is carried on the returned struct and must be
// hashed by the store before persisting. Returns a validation error if any
// field is invalid.
func NewIdentity(username, password, telegram string) (*Identity, error) {
	now := time.Now().UTC()
	identity := &Identity{
		ID:        uuid.New(),
		Username:  username,
		Password:  password,
		Telegram:  telegram,
		Role:      RoleOwner,
		LastSeen:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := identity.Validate(); err != nil {
		return nil, err
	}

	return identity, nil
}

// Validate checks that the Identity holds consistent data.
func (i *Identity) Validate() error {
	if i.ID == uuid.Nil {
		return ErrInvalidID
	}

	if i.Username == "" {
		return ErrEmptyUsername
	}
	if len(i.Username) > 150 {
		return ErrUsernameTooLong
	}

	if !validTelegramContact(i.Telegram) {
		return ErrInvalidTelegram
	}

	if !i.Role.Valid() {
		return ErrInvalidRole
	}

	// A plaintext password is only present during registration or a password
	// change; persisted identities carry the hash alone.
	if i.Password != "" {
		if len(i.Password) < 10 {
			return ErrPasswordTooShort
		}
		// bcrypt truncates input beyond 72 bytes
		if len(i.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if i.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// IsSuperuser reports whether the identity holds the superuser role.
func (i *Identity) IsSuperuser() bool {
	return i.Role == RoleSuperuser
}

// validTelegramContact checks the contact address format used by the push
// relay: an at-sign prefixed handle of at most 33 characters.
func validTelegramContact(contact string) bool {
	return strings.HasPrefix(contact, "@") && len(contact) <= 33
}
