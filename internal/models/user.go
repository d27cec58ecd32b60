package models

import (
	"strings"
	"time"
)

// User is the credential record owned by the credential store.
type User struct {
	ID                    string     `db:"id" json:"id"`
	Email                 string     `db:"email" json:"email"`
	NormalizedEmail       string     `db:"normalized_email" json:"-"`
	PasswordHash          string     `db:"password_hash" json:"-"`
	AccessFailedCount     int        `db:"access_failed_count" json:"-"`
	LockoutEnd            *time.Time `db:"lockout_end" json:"-"`
	LockoutEnabled        bool       `db:"lockout_enabled" json:"-"`
	CurrentRefreshTokenID *string    `db:"current_refresh_token_id" json:"-"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// NormalizeEmail returns the lookup key used for the unique e-mail index.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RefreshTokenID returns the jti of the only refresh token currently accepted for the user.
func (u *User) RefreshTokenID() string {
	if u == nil || u.CurrentRefreshTokenID == nil {
		return ""
	}
	return *u.CurrentRefreshTokenID
}
