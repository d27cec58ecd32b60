package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
)

const (
	modulesCacheKey     = "modules:all"
	modulesCachePattern = "modules:*"
)

type moduleRepository interface {
	List(ctx context.Context) ([]models.Module, error)
	Create(ctx context.Context, module *models.Module) error
}

// ModuleService serves the course catalog.
type ModuleService struct {
	repo      moduleRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs the service. cache may be nil.
func NewModuleService(repo moduleRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ModuleService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every module with its lessons.
func (s *ModuleService) List(ctx context.Context) ([]dto.ModuleResponse, error) {
	var cached []dto.ModuleResponse
	if s.cache.Get(ctx, modulesCacheKey, &cached) {
		return cached, nil
	}

	modules, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	resp := dto.NewModuleResponses(modules)
	s.cache.Set(ctx, modulesCacheKey, resp, 0)
	return resp, nil
}

// Create validates and stores a module with its lessons.
func (s *ModuleService) Create(ctx context.Context, req dto.AddModuleRequest) (*dto.ModuleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err)
	}
	module := req.ToModel()
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	s.cache.Invalidate(ctx, modulesCachePattern)

	s.logger.Info("module created", zap.String("module_id", module.ID), zap.Int("lessons", len(module.Lessons)))
	resp := dto.NewModuleResponse(*module)
	return &resp, nil
}
