package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	UsernameKey  string    `json:"-"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	AvatarURL    string
}

type UserSearchResult struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UsernameKey is the canonical lowercase projection of a username. All
// case-insensitive lookups go through this key rather than pattern matching
// on the display form.
func UsernameKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
