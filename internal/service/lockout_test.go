package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

func TestLockoutPolicyDefaults(t *testing.T) {
	p := NewLockoutPolicy(config.LockoutConfig{AllowedForNewUsers: true})
	assert.Equal(t, 6, p.MaxFailedAttempts)
	assert.Equal(t, 5*time.Minute, p.Duration)
}

func TestLockoutPolicyIsLockedOut(t *testing.T) {
	p := LockoutPolicy{MaxFailedAttempts: 3, Duration: time.Minute}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := now.Add(time.Minute)
	user := &models.User{LockoutEnabled: true, LockoutEnd: &end}

	assert.True(t, p.IsLockedOut(user, now.Add(59*time.Second)))
	assert.False(t, p.IsLockedOut(user, now.Add(time.Minute)))

	user.LockoutEnd = nil
	assert.False(t, p.IsLockedOut(user, now))
}

func TestLockoutPolicyDisabledForUser(t *testing.T) {
	p := LockoutPolicy{MaxFailedAttempts: 1, Duration: time.Minute}
	now := time.Now()
	end := now.Add(time.Hour)
	user := &models.User{LockoutEnabled: false, LockoutEnd: &end}
	assert.False(t, p.IsLockedOut(user, now))
}
