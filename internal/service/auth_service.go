package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	"github.com/Igor-Vicente/English.Registration.API/internal/repository"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/mail"
)

type authUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
	RegisterFailedAttempt(ctx context.Context, id string, maxAttempts int, lockDuration time.Duration, now time.Time) (*time.Time, error)
	ResetFailedAttempts(ctx context.Context, id string, updatedAt time.Time) error
}

type authProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.AppUser, error)
	TouchLastAccess(ctx context.Context, id string, ts time.Time) error
}

type tokenIssuer interface {
	IssueAccessToken(ctx context.Context, user *models.User) (string, time.Time, error)
	IssueRefreshToken(ctx context.Context, user *models.User, expectedPrev *string) (string, error)
	ValidateRefreshToken(raw string) models.TokenValidation
}

type resetCodes interface {
	Generate(user *models.User) (string, time.Time)
	Verify(code string, user *models.User) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	// ResetLinkBase is the front-end origin that hosts the new-password page.
	ResetLinkBase string
	Lockout       LockoutPolicy
}

// AuthService implements sign-up, sign-in, token refresh and password reset.
type AuthService struct {
	repo      authUserRepository
	profiles  authProfileRepository
	tokens    tokenIssuer
	codes     resetCodes
	mailer    mail.Sender
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, profiles authProfileRepository, tokens tokenIssuer, codes resetCodes, mailer mail.Sender, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.Lockout.MaxFailedAttempts <= 0 {
		config.Lockout.MaxFailedAttempts = 6
	}
	if config.Lockout.Duration <= 0 {
		config.Lockout.Duration = 5 * time.Minute
	}
	return &AuthService{
		repo:      repo,
		profiles:  profiles,
		tokens:    tokens,
		codes:     codes,
		mailer:    mailer,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// SignUp registers a credential and opens a session for it.
func (s *AuthService) SignUp(ctx context.Context, req models.SignUpRequest) (*dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err)
	}
	if problems := passwordPolicy(req.Password); len(problems) > 0 {
		return nil, appErrors.WithMessages(appErrors.ErrCredentialRejected, problems...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:          strings.TrimSpace(req.Email),
		PasswordHash:   string(hash),
		LockoutEnabled: s.config.Lockout.AllowedForNewUsers,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, appErrors.WithMessages(appErrors.ErrCredentialRejected, fmt.Sprintf("Email '%s' is already taken.", req.Email))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	resp, err := s.openSession(ctx, user, nil)
	if err != nil {
		return nil, err
	}
	resp.User = s.loadProfile(ctx, user.ID, false)

	s.metrics.RecordAuthEvent("signup", OutcomeSuccess)
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return resp, nil
}

// SignIn authenticates a user, applying the lockout policy.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuthEvent("signin", OutcomeFailure)
			return nil, appErrors.ErrAuthenticationFail
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	now := s.now().UTC()
	if s.config.Lockout.IsLockedOut(user, now) {
		s.metrics.RecordAuthEvent("signin", OutcomeLocked)
		return nil, appErrors.ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		lockoutEnd, err := s.repo.RegisterFailedAttempt(ctx, user.ID, s.config.Lockout.MaxFailedAttempts, s.config.Lockout.Duration, now)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record failed sign-in")
		}
		// The counter lives in the row, so concurrent failures all count.
		if lockoutEnd != nil && lockoutEnd.After(now) {
			s.metrics.RecordAuthEvent("signin", OutcomeLocked)
			s.logger.Warn("account locked after failed sign-ins", zap.String("user_id", user.ID), zap.Time("lockout_end", *lockoutEnd))
			return nil, appErrors.ErrAccountLocked
		}
		s.metrics.RecordAuthEvent("signin", OutcomeFailure)
		return nil, appErrors.ErrAuthenticationFail
	}

	if user.AccessFailedCount != 0 {
		if err := s.repo.ResetFailedAttempts(ctx, user.ID, now); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset failed sign-ins")
		}
	}

	resp, err := s.openSession(ctx, user, nil)
	if err != nil {
		return nil, err
	}
	resp.User = s.loadProfile(ctx, user.ID, true)

	s.metrics.RecordAuthEvent("signin", OutcomeSuccess)
	return resp, nil
}

// Refresh rotates a refresh token. Only the most recently issued token is accepted.
func (s *AuthService) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*dto.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err)
	}

	validation := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if !validation.Valid() {
		s.logger.Debug("refresh token rejected", zap.Stringer("status", validation.Status))
		s.metrics.RecordAuthEvent("refresh", OutcomeInvalid)
		return nil, appErrors.ErrTokenInvalid
	}
	claims := validation.Claims

	user, err := s.repo.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordAuthEvent("refresh", OutcomeInvalid)
			return nil, appErrors.ErrTokenInvalid
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if user.RefreshTokenID() != claims.ID {
		s.metrics.RecordAuthEvent("refresh", OutcomeSuperseded)
		return nil, appErrors.ErrTokenSuperseded
	}

	if s.config.Lockout.IsLockedOut(user, s.now().UTC()) {
		s.metrics.RecordAuthEvent("refresh", OutcomeLocked)
		return nil, appErrors.Clone(appErrors.ErrAccountLocked, "User blocked")
	}

	presented := claims.ID
	resp, err := s.openSession(ctx, user, &presented)
	if err != nil {
		if errors.Is(err, appErrors.ErrTokenSuperseded) {
			s.metrics.RecordAuthEvent("refresh", OutcomeSuperseded)
		}
		return nil, err
	}

	s.metrics.RecordAuthEvent("refresh", OutcomeSuccess)
	return resp, nil
}

// ForgotPassword mails a reset link when the account exists. It never reveals whether it does.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("forgot password lookup failed", zap.Error(err))
		}
		return nil
	}

	code, _ := s.codes.Generate(user)
	link := fmt.Sprintf("%s/new-password?code=%s&user=%s",
		strings.TrimRight(s.config.ResetLinkBase, "/"), url.QueryEscape(code), url.QueryEscape(user.ID))

	msg := mail.Message{
		To:      user.Email,
		Subject: "Reset Password",
		HTML: fmt.Sprintf("You can click <a href='%s'>here</a> to reset your password. <br /><br />"+
			"If you didn't ask to reset your password, you can ignore this message. <br /> Thanks, good studies 👋\r\n", link),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to queue reset password mail", zap.String("user_id", user.ID), zap.Error(err))
	}
	return nil
}

// ResetPassword sets a new password using a code from ForgotPassword.
func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.FromValidation(err)
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return appErrors.ErrInvalidResetLink
	}

	user, err := s.repo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrInvalidResetLink
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.codes.Verify(req.Code, user); err != nil {
		s.logger.Debug("reset code rejected", zap.String("user_id", user.ID), zap.Error(err))
		return appErrors.ErrInvalidResetCode
	}
	if problems := passwordPolicy(req.Password); len(problems) > 0 {
		return appErrors.WithMessages(appErrors.ErrCredentialRejected, problems...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), s.now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	s.logger.Info("password reset", zap.String("user_id", user.ID))
	return nil
}

func (s *AuthService) openSession(ctx context.Context, user *models.User, expectedPrev *string) (*dto.TokenResponse, error) {
	access, _, err := s.tokens.IssueAccessToken(ctx, user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	refresh, err := s.tokens.IssueRefreshToken(ctx, user, expectedPrev)
	if err != nil {
		if errors.Is(err, appErrors.ErrTokenSuperseded) {
			return nil, appErrors.ErrTokenSuperseded
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}
	return &dto.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// loadProfile returns the user's profile, if any. Lookup failures only cost the optional payload.
func (s *AuthService) loadProfile(ctx context.Context, userID string, touch bool) *dto.ProfileResponse {
	if s.profiles == nil {
		return nil
	}
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("failed to load profile", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	if touch {
		now := s.now().UTC()
		if err := s.profiles.TouchLastAccess(ctx, userID, now); err != nil {
			s.logger.Warn("failed to update last access", zap.String("user_id", userID), zap.Error(err))
		} else {
			profile.LastAccess = now
		}
	}
	return dto.NewProfileResponse(profile)
}

func passwordPolicy(password string) []string {
	var hasDigit, hasLower bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	var problems []string
	if !hasDigit {
		problems = append(problems, "Passwords must have at least one digit ('0'-'9').")
	}
	if !hasLower {
		problems = append(problems, "Passwords must have at least one lowercase ('a'-'z').")
	}
	return problems
}
