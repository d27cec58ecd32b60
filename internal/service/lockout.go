package service

import (
	"time"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

// LockoutPolicy locks an account for Duration after MaxFailedAttempts consecutive failed sign-ins.
type LockoutPolicy struct {
	MaxFailedAttempts  int
	Duration           time.Duration
	AllowedForNewUsers bool
}

// NewLockoutPolicy builds the policy from configuration, applying defaults.
func NewLockoutPolicy(cfg config.LockoutConfig) LockoutPolicy {
	p := LockoutPolicy{
		MaxFailedAttempts:  cfg.MaxFailedAttempts,
		Duration:           cfg.Duration,
		AllowedForNewUsers: cfg.AllowedForNewUsers,
	}
	if p.MaxFailedAttempts <= 0 {
		p.MaxFailedAttempts = 6
	}
	if p.Duration <= 0 {
		p.Duration = 5 * time.Minute
	}
	return p
}

// IsLockedOut reports whether the account is locked at now.
func (p LockoutPolicy) IsLockedOut(user *models.User, now time.Time) bool {
	return user.LockoutEnabled && user.LockoutEnd != nil && user.LockoutEnd.After(now)
}
