package api

import (
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the account registration endpoint.
type RegisterRequest struct {
	Username       string `json:"username"        validate:"required,max=150"`
	Password       string `json:"password"        validate:"required,min=10,max=72"`
	RepeatPassword string `json:"repeat_password" validate:"required,eqfield=Password"`
	Telegram       string `json:"telegram"        validate:"required,startswith=@,max=33"`
}

// RegisterResponse defines the successful response for the registration endpoint.
type RegisterResponse struct {
	Username string `json:"username"`
	Telegram string `json:"telegram"`
}

// CreateTokensRequest defines the payload for the token issuance endpoint.
type CreateTokensRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=1"`
}

// TokenPairResponse defines the successful response for both token issuance
// and token refresh. Both endpoints always return a fresh pair.
type TokenPairResponse struct {
	// AccessToken is the short-lived JWT used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived JWT used to obtain new token pairs
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ProfileResponse defines the response for the authenticated profile endpoint.
type ProfileResponse struct {
	Username string `json:"username"`
	Telegram string `json:"telegram"`
	Role     string `json:"role"`
}

// TaskPayload is a single TODO item inside a list request or response.
type TaskPayload struct {
	Name string `json:"name" validate:"required,max=500"`
	Done bool   `json:"is_complete"`
}

// ListRequest defines the payload for creating or replacing a TODO list.
type ListRequest struct {
	Name  string        `json:"name"  validate:"required,max=150"`
	Tasks []TaskPayload `json:"tasks" validate:"dive"`
}

// ListResponse defines the representation of a TODO list returned to clients.
type ListResponse struct {
	UUID  uuid.UUID     `json:"uuid"`
	Name  string        `json:"name"`
	Tasks []TaskPayload `json:"tasks"`
}
