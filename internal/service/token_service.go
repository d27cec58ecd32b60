package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
)

// ErrMissingSigningKey is returned when the token issuer is built without a secret.
var ErrMissingSigningKey = errors.New("jwt signing key is not configured")

type tokenUserStore interface {
	GetClaims(ctx context.Context, userID string) ([]models.Claim, error)
	SwapRefreshTokenID(ctx context.Context, userID string, expected *string, next string) (bool, error)
}

// TokenConfig configures issued tokens.
type TokenConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService issues and validates access and refresh tokens.
type TokenService struct {
	store  tokenUserStore
	config TokenConfig
	key    []byte
	now    func() time.Time
}

// NewTokenService constructs the token issuer. An empty secret is a fatal misconfiguration.
func NewTokenService(store tokenUserStore, cfg TokenConfig) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningKey
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 60 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &TokenService{store: store, config: cfg, key: []byte(cfg.Secret), now: time.Now}, nil
}

// IssueAccessToken signs a short lived access token carrying the user's recognised claims.
func (s *TokenService) IssueAccessToken(ctx context.Context, user *models.User) (string, time.Time, error) {
	records, err := s.store.GetClaims(ctx, user.ID)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("load user claims: %w", err)
	}
	userClaims := models.ClaimsFromRecords(records)

	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTTL)
	claims := &models.AccessClaims{
		Email:   user.Email,
		IsAdmin: userClaims.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			Audience:  s.audience(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := s.sign(claims, models.TokenTypeAccess)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// IssueRefreshToken signs a refresh token and records its jti as the only one
// accepted for the user. A nil expectedPrev overwrites unconditionally; otherwise
// the swap only succeeds while the stored jti still equals it.
func (s *TokenService) IssueRefreshToken(ctx context.Context, user *models.User, expectedPrev *string) (string, error) {
	issuedAt := s.now().UTC()
	jti := uuid.NewString()
	claims := &models.RefreshClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Audience:  s.audience(),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.RefreshTTL)),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ID:        jti,
		},
	}

	signed, err := s.sign(claims, models.TokenTypeRefresh)
	if err != nil {
		return "", err
	}

	swapped, err := s.store.SwapRefreshTokenID(ctx, user.ID, expectedPrev, jti)
	if err != nil {
		return "", fmt.Errorf("store refresh token id: %w", err)
	}
	if !swapped {
		return "", appErrors.ErrTokenSuperseded
	}
	user.CurrentRefreshTokenID = &jti
	return signed, nil
}

// ValidateRefreshToken classifies a presented refresh token. It never returns claims for a token that failed any check.
func (s *TokenService) ValidateRefreshToken(raw string) models.TokenValidation {
	claims := &models.RefreshClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, s.keyFunc(models.TokenTypeRefresh), s.parserOptions()...)
	if err != nil {
		return models.TokenValidation{Status: classifyTokenError(err)}
	}
	if claims.ID == "" || claims.Email == "" {
		return models.TokenValidation{Status: models.TokenMalformed}
	}
	return models.TokenValidation{Status: models.TokenValid, Claims: claims}
}

// ValidateAccessToken parses a bearer token for protected routes.
func (s *TokenService) ValidateAccessToken(raw string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, s.keyFunc(models.TokenTypeAccess), s.parserOptions()...); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	if claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *TokenService) sign(claims jwt.Claims, typ string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["typ"] = typ
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", typ, err)
	}
	return signed, nil
}

func (s *TokenService) keyFunc(typ string) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if got, _ := token.Header["typ"].(string); got != typ {
			return nil, fmt.Errorf("unexpected token type %q", got)
		}
		return s.key, nil
	}
}

func (s *TokenService) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.config.Audience))
	}
	return opts
}

func (s *TokenService) audience() jwt.ClaimStrings {
	if s.config.Audience == "" {
		return nil
	}
	return jwt.ClaimStrings{s.config.Audience}
}

func classifyTokenError(err error) models.TokenStatus {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return models.TokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return models.TokenInvalidSignature
	default:
		return models.TokenMalformed
	}
}
