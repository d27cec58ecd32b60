package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
)

// ModuleRepository persists the course catalog.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository constructs the repository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// List returns every module with its lessons, both ordered by priority.
func (r *ModuleRepository) List(ctx context.Context) ([]models.Module, error) {
	const query = `SELECT id, title, priority, created_at FROM modules ORDER BY priority, created_at`
	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	if len(modules) == 0 {
		return modules, nil
	}

	ids := make([]string, 0, len(modules))
	index := make(map[string]int, len(modules))
	for i := range modules {
		ids = append(ids, modules[i].ID)
		index[modules[i].ID] = i
	}

	const lessonsQuery = `SELECT id, module_id, title, priority, video_url, thumb_url, content FROM lessons WHERE module_id = ANY($1) ORDER BY priority`
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, lessonsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	for _, lesson := range lessons {
		if i, ok := index[lesson.ModuleID]; ok {
			modules[i].Lessons = append(modules[i].Lessons, lesson)
		}
	}
	return modules, nil
}

// Create stores a module and its lessons in one transaction.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) (err error) {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin module tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const moduleQuery = `INSERT INTO modules (id, title, priority, created_at) VALUES (:id, :title, :priority, :created_at)`
	if _, err = tx.NamedExecContext(ctx, moduleQuery, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}

	const lessonQuery = `INSERT INTO lessons (id, module_id, title, priority, video_url, thumb_url, content) VALUES (:id, :module_id, :title, :priority, :video_url, :thumb_url, :content)`
	for i := range module.Lessons {
		lesson := &module.Lessons[i]
		if lesson.ID == "" {
			lesson.ID = uuid.NewString()
		}
		lesson.ModuleID = module.ID
		if _, err = tx.NamedExecContext(ctx, lessonQuery, lesson); err != nil {
			return fmt.Errorf("create lesson: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit module: %w", err)
	}
	return nil
}
