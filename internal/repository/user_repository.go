package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
)

var (
	// ErrDuplicateEmail is returned when the normalized e-mail is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnknownClaim is returned when a claim name is outside the recognised set.
	ErrUnknownClaim = errors.New("unknown claim")
)

const uniqueViolation = "23505"

const userColumns = `id, email, normalized_email, password_hash, access_failed_count, lockout_end, lockout_enabled, current_refresh_token_id, created_at, updated_at`

// UserRepository provides database access for credentials.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by e-mail address, compared case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE normalized_email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, models.NormalizeEmail(email)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.NormalizedEmail = models.NormalizeEmail(user.Email)

	const query = `INSERT INTO users (id, email, normalized_email, password_hash, access_failed_count, lockout_end, lockout_enabled, current_refresh_token_id, created_at, updated_at) VALUES (:id, :email, :normalized_email, :password_hash, :access_failed_count, :lockout_end, :lockout_enabled, :current_refresh_token_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Delete removes the credential. Profile and claims cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// UpdatePassword stores a new hash, clears the lockout state and revokes the active refresh token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE users SET password_hash = $2, access_failed_count = 0, lockout_end = NULL, current_refresh_token_id = NULL, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// RegisterFailedAttempt counts a failed sign-in in a single statement so
// concurrent failures cannot overwrite each other. Reaching maxAttempts sets
// lockout_end to now+lockDuration and resets the counter; failures during an
// active lockout change nothing. It returns the stored lockout_end, nil when the
// user has lockout disabled or no longer exists.
func (r *UserRepository) RegisterFailedAttempt(ctx context.Context, id string, maxAttempts int, lockDuration time.Duration, now time.Time) (*time.Time, error) {
	const query = `UPDATE users SET
		access_failed_count = CASE
			WHEN lockout_end > $4 THEN access_failed_count
			WHEN access_failed_count + 1 >= $2 THEN 0
			ELSE access_failed_count + 1
		END,
		lockout_end = CASE
			WHEN lockout_end > $4 THEN lockout_end
			WHEN access_failed_count + 1 >= $2 THEN $3
			ELSE lockout_end
		END,
		updated_at = $4
	WHERE id = $1 AND lockout_enabled
	RETURNING lockout_end`

	var lockoutEnd sql.NullTime
	err := r.db.QueryRowxContext(ctx, query, id, maxAttempts, now.Add(lockDuration), now).Scan(&lockoutEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("register failed attempt: %w", err)
	}
	if !lockoutEnd.Valid {
		return nil, nil
	}
	end := lockoutEnd.Time.UTC()
	return &end, nil
}

// ResetFailedAttempts clears the failure counter after a successful sign-in.
func (r *UserRepository) ResetFailedAttempts(ctx context.Context, id string, updatedAt time.Time) error {
	const query = `UPDATE users SET access_failed_count = 0, updated_at = $2 WHERE id = $1 AND access_failed_count <> 0`
	if _, err := r.db.ExecContext(ctx, query, id, updatedAt); err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	return nil
}

// SwapRefreshTokenID replaces the active refresh token id. When expected is
// non-nil the write only happens if the stored id still equals it; the
// returned bool reports whether a row was updated.
func (r *UserRepository) SwapRefreshTokenID(ctx context.Context, userID string, expected *string, next string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if expected == nil {
		const query = `UPDATE users SET current_refresh_token_id = $2, updated_at = $3 WHERE id = $1`
		res, err = r.db.ExecContext(ctx, query, userID, next, time.Now().UTC())
	} else {
		const query = `UPDATE users SET current_refresh_token_id = $2, updated_at = $3 WHERE id = $1 AND current_refresh_token_id IS NOT DISTINCT FROM $4`
		res, err = r.db.ExecContext(ctx, query, userID, next, time.Now().UTC(), *expected)
	}
	if err != nil {
		return false, fmt.Errorf("swap refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap refresh token rows: %w", err)
	}
	return affected == 1, nil
}

// GetClaims lists the persisted claims of a user.
func (r *UserRepository) GetClaims(ctx context.Context, userID string) ([]models.Claim, error) {
	const query = `SELECT user_id, name, value FROM user_claims WHERE user_id = $1 ORDER BY name`
	var claims []models.Claim
	if err := r.db.SelectContext(ctx, &claims, query, userID); err != nil {
		return nil, fmt.Errorf("get claims: %w", err)
	}
	return claims, nil
}

// SetClaim adds or replaces a recognised claim.
func (r *UserRepository) SetClaim(ctx context.Context, userID string, name models.ClaimName, value string) error {
	if !name.Recognized() {
		return fmt.Errorf("%w: %s", ErrUnknownClaim, name)
	}
	const query = `INSERT INTO user_claims (user_id, name, value) VALUES ($1, $2, $3) ON CONFLICT (user_id, name) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.ExecContext(ctx, query, userID, string(name), value); err != nil {
		return fmt.Errorf("set claim: %w", err)
	}
	return nil
}
