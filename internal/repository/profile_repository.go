package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
)

// EarthRadiusMeters is the mean radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

const profileColumns = `id, name, birth_date, idiom, about_me, image_url, city, latitude, longitude, created_at, deleted_at, last_access`

// ProfileRepository persists learner profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByID returns the active profile of a user.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.AppUser, error) {
	query := `SELECT ` + profileColumns + ` FROM app_users WHERE id = $1 AND deleted_at IS NULL LIMIT 1`
	var profile models.AppUser
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

// Create inserts a profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.AppUser) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.LastAccess.IsZero() {
		profile.LastAccess = now
	}
	if profile.Idiom == "" {
		profile.Idiom = models.IdiomEnglish
	}
	const query = `INSERT INTO app_users (id, name, birth_date, idiom, about_me, image_url, city, latitude, longitude, created_at, deleted_at, last_access) VALUES (:id, :name, :birth_date, :idiom, :about_me, :image_url, :city, :latitude, :longitude, :created_at, :deleted_at, :last_access)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// Update stores the mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile *models.AppUser) error {
	const query = `UPDATE app_users SET name = :name, birth_date = :birth_date, about_me = :about_me, image_url = :image_url, city = :city, latitude = :latitude, longitude = :longitude WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpdateLocation records the last known position of a user.
func (r *ProfileRepository) UpdateLocation(ctx context.Context, id string, coords models.Coordinates) error {
	const query = `UPDATE app_users SET latitude = $2, longitude = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, coords.Latitude, coords.Longitude); err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	return nil
}

// TouchLastAccess sets last_access for an existing profile. Missing profiles are ignored.
func (r *ProfileRepository) TouchLastAccess(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE app_users SET last_access = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("touch last access: %w", err)
	}
	return nil
}

// Delete removes a profile.
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM app_users WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}

// FindInRange returns located profiles whose haversine distance from coords is at most rangeMeters.
// The haversine term is clamped to 1 so rounding near antipodes stays inside ASIN's domain.
func (r *ProfileRepository) FindInRange(ctx context.Context, coords models.Coordinates, rangeMeters int) ([]models.AppUser, error) {
	query := `SELECT ` + profileColumns + ` FROM (
		SELECT *, 2 * CAST($4 AS DOUBLE PRECISION) * ASIN(LEAST(1, SQRT(
			POWER(SIN(RADIANS(latitude - $1) / 2), 2) +
			COS(RADIANS($1)) * COS(RADIANS(latitude)) * POWER(SIN(RADIANS(longitude - $2) / 2), 2)
		))) AS distance
		FROM app_users
		WHERE deleted_at IS NULL AND latitude IS NOT NULL AND longitude IS NOT NULL
	) nearby
	WHERE distance <= $3
	ORDER BY distance`
	var profiles []models.AppUser
	if err := r.db.SelectContext(ctx, &profiles, query, coords.Latitude, coords.Longitude, rangeMeters, EarthRadiusMeters); err != nil {
		return nil, fmt.Errorf("find profiles in range: %w", err)
	}
	return profiles, nil
}
