package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/storage"
)

// DefaultNearbyRange is the search radius in metres when none is given.
const DefaultNearbyRange = 50000

const profileImageType = "image/png"

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.AppUser, error)
	Create(ctx context.Context, profile *models.AppUser) error
	Update(ctx context.Context, profile *models.AppUser) error
	Delete(ctx context.Context, id string) error
	UpdateLocation(ctx context.Context, id string, coords models.Coordinates) error
	FindInRange(ctx context.Context, coords models.Coordinates, rangeMeters int) ([]models.AppUser, error)
}

type credentialRemover interface {
	Delete(ctx context.Context, id string) error
}

// ImageUpload is a profile picture streamed from the request.
type ImageUpload struct {
	Reader io.Reader
	Size   int64
}

// ProfileService manages learner profiles and their pictures.
type ProfileService struct {
	repo      profileRepository
	users     credentialRemover
	blobs     storage.BlobStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService constructs the service.
func NewProfileService(repo profileRepository, users credentialRemover, blobs storage.BlobStore, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, users: users, blobs: blobs, validator: validate, logger: logger, now: time.Now}
}

// Get returns the caller's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*dto.ProfileResponse, error) {
	profile, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, appErrors.ErrNotFound
	}
	return dto.NewProfileResponse(profile), nil
}

// Create completes registration for a signed-up user.
func (s *ProfileService) Create(ctx context.Context, userID string, req dto.ProfileRequest, image *ImageUpload) (*dto.ProfileResponse, error) {
	if image == nil {
		return nil, appErrors.ErrProfileImageMissing
	}
	existing, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErrors.ErrProfileExists
	}

	profile := &models.AppUser{ID: userID, Idiom: models.IdiomEnglish}
	if err := s.apply(profile, req); err != nil {
		return nil, err
	}

	url, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	profile.ImageURL = url

	if err := s.repo.Create(ctx, profile); err != nil {
		s.discard(ctx, url)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
	}
	s.logger.Info("profile registered", zap.String("user_id", userID))
	return dto.NewProfileResponse(profile), nil
}

// Update changes the profile fields and optionally replaces the picture.
func (s *ProfileService) Update(ctx context.Context, userID string, req dto.ProfileRequest, image *ImageUpload) (*dto.ProfileResponse, error) {
	profile, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, appErrors.ErrProfileIncomplete
	}
	if err := s.apply(profile, req); err != nil {
		return nil, err
	}

	previous := profile.ImageURL
	if image != nil {
		url, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		profile.ImageURL = url
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		if profile.ImageURL != previous {
			s.discard(ctx, profile.ImageURL)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}
	if profile.ImageURL != previous {
		s.discard(ctx, previous)
	}
	return dto.NewProfileResponse(profile), nil
}

// Delete removes the profile, its picture and the credential.
func (s *ProfileService) Delete(ctx context.Context, userID string) error {
	profile, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return appErrors.ErrNotFound
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete profile")
	}
	s.discard(ctx, profile.ImageURL)
	if err := s.users.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	s.logger.Info("account deleted", zap.String("user_id", userID))
	return nil
}

// Nearby stores the caller's position and lists profiles within rangeMeters of it.
func (s *ProfileService) Nearby(ctx context.Context, userID string, query dto.NearbyQuery) ([]dto.ProfileResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.FromValidation(err)
	}
	rangeMeters := query.Range
	if rangeMeters == 0 {
		rangeMeters = DefaultNearbyRange
	}

	profile, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, appErrors.ErrProfileIncomplete
	}

	coords := models.Coordinates{Latitude: *query.Latitude, Longitude: *query.Longitude}
	if err := s.repo.UpdateLocation(ctx, userID, coords); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store location")
	}
	profiles, err := s.repo.FindInRange(ctx, coords, rangeMeters)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search nearby users")
	}
	return dto.NewProfileResponses(profiles), nil
}

func (s *ProfileService) find(ctx context.Context, userID string) (*models.AppUser, error) {
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

func (s *ProfileService) apply(profile *models.AppUser, req dto.ProfileRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err)
	}
	birthDate, err := time.Parse(dto.DateLayout, req.BirthDate)
	if err != nil {
		return appErrors.WithMessages(appErrors.ErrValidation, "Invalid birth date")
	}
	if !birthDate.Before(s.now().UTC()) {
		return appErrors.WithMessages(appErrors.ErrValidation, "Birth date must be in the past")
	}
	profile.Name = req.Name
	profile.BirthDate = birthDate
	profile.AboutMe = req.AboutMe
	profile.City = req.City
	return nil
}

func (s *ProfileService) upload(ctx context.Context, image *ImageUpload) (string, error) {
	url, err := s.blobs.Upload(ctx, uuid.NewString()+".png", profileImageType, image.Reader, image.Size)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upload profile image")
	}
	return url, nil
}

func (s *ProfileService) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.blobs.Delete(ctx, url); err != nil {
		s.logger.Warn("failed to delete profile image", zap.String("url", url), zap.Error(err))
	}
}
