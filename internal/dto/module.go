package dto

import "github.com/Igor-Vicente/English.Registration.API/internal/models"

// AddLessonRequest describes a lesson of a new module.
type AddLessonRequest struct {
	Title    string `json:"title" validate:"required,max=60"`
	Priority int    `json:"priority"`
	VideoURL string `json:"videoUrl" validate:"required,max=200"`
	ThumbURL string `json:"thumbUrl" validate:"required,max=200"`
	Content  string `json:"content"`
}

// AddModuleRequest creates a module with its lessons.
type AddModuleRequest struct {
	Title    string             `json:"title" validate:"required,max=100"`
	Priority int                `json:"priority"`
	Lessons  []AddLessonRequest `json:"lessonsViewModel" validate:"required,min=1,dive"`
}

// LessonResponse is the public view of a lesson.
type LessonResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Priority int    `json:"priority"`
	VideoURL string `json:"videoUrl"`
	ThumbURL string `json:"thumbUrl"`
	Content  string `json:"content"`
}

// ModuleResponse is the public view of a module.
type ModuleResponse struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Priority int              `json:"priority"`
	Lessons  []LessonResponse `json:"lessons"`
}

// ToModel converts the request to a catalog module.
func (r AddModuleRequest) ToModel() *models.Module {
	module := &models.Module{Title: r.Title, Priority: r.Priority}
	for _, l := range r.Lessons {
		module.Lessons = append(module.Lessons, models.Lesson{
			Title:    l.Title,
			Priority: l.Priority,
			VideoURL: l.VideoURL,
			ThumbURL: l.ThumbURL,
			Content:  l.Content,
		})
	}
	return module
}

// NewModuleResponses maps catalog modules.
func NewModuleResponses(modules []models.Module) []ModuleResponse {
	out := make([]ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, NewModuleResponse(m))
	}
	return out
}

// NewModuleResponse maps one module.
func NewModuleResponse(m models.Module) ModuleResponse {
	lessons := make([]LessonResponse, 0, len(m.Lessons))
	for _, l := range m.Lessons {
		lessons = append(lessons, LessonResponse{
			ID:       l.ID,
			Title:    l.Title,
			Priority: l.Priority,
			VideoURL: l.VideoURL,
			ThumbURL: l.ThumbURL,
			Content:  l.Content,
		})
	}
	return ModuleResponse{ID: m.ID, Title: m.Title, Priority: m.Priority, Lessons: lessons}
}
