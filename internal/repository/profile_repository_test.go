package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
)

var profileRowColumns = []string{"id", "name", "birth_date", "idiom", "about_me", "image_url", "city", "latitude", "longitude", "created_at", "deleted_at", "last_access"}

func TestProfileFindByIDSkipsDeleted(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM app_users WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs("u-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "u-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileCreateDefaultsIdiom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO app_users")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	profile := &models.AppUser{ID: "u-1", Name: "Ana", BirthDate: time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, repo.Create(context.Background(), profile))
	assert.Equal(t, models.IdiomEnglish, profile.Idiom)
	assert.False(t, profile.CreatedAt.IsZero())
	assert.Equal(t, profile.CreatedAt, profile.LastAccess)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileFindInRange(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(profileRowColumns).
		AddRow("u-1", "Ana", now, "English", "hi", "http://img/1.png", "Recife", -8.05, -34.9, now, nil, now).
		AddRow("u-2", "Bia", now, "English", "hello", "http://img/2.png", "Olinda", -8.01, -34.85, now, nil, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE distance <= $3")).
		WithArgs(-8.05, -34.9, 10000, EarthRadiusMeters).
		WillReturnRows(rows)

	profiles, err := repo.FindInRange(context.Background(), models.Coordinates{Latitude: -8.05, Longitude: -34.9}, 10000)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "u-1", profiles[0].ID)
	require.NotNil(t, profiles[1].Latitude)
	assert.InDelta(t, -8.01, *profiles[1].Latitude, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileFindInRangeClampsHaversine(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ASIN(LEAST(1, SQRT(")).
		WithArgs(8.05, 145.1, 20037509, EarthRadiusMeters).
		WillReturnRows(sqlmock.NewRows(profileRowColumns))

	profiles, err := repo.FindInRange(context.Background(), models.Coordinates{Latitude: 8.05, Longitude: 145.1}, 20037509)
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileUpdateLocation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE app_users SET latitude = $2, longitude = $3 WHERE id = $1")).
		WithArgs("u-1", 10.5, 20.25).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLocation(context.Background(), "u-1", models.Coordinates{Latitude: 10.5, Longitude: 20.25}))
	assert.NoError(t, mock.ExpectationsWereMet())
}
