package dto

import (
	"time"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
)

// DateLayout is the wire format for birth dates.
const DateLayout = "2006-01-02"

// ProfileRequest is the multipart form for creating or updating a profile. The image part is read separately.
type ProfileRequest struct {
	Name      string `form:"name" validate:"required,max=100"`
	BirthDate string `form:"birthDate" validate:"required,datetime=2006-01-02"`
	AboutMe   string `form:"aboutMe" validate:"required,max=1000"`
	City      string `form:"city" validate:"required,max=100"`
}

// NearbyQuery selects profiles around a position.
type NearbyQuery struct {
	Latitude  *float64 `form:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"longitude" validate:"required,gte=-180,lte=180"`
	Range     int      `form:"range" validate:"gte=0"`
}

// ProfileResponse is the public view of a learner.
type ProfileResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	BirthDate   string              `json:"birthDate"`
	Idiom       models.Idiom        `json:"idiom"`
	AboutMe     string              `json:"aboutMe"`
	ImageURL    string              `json:"imageUrl"`
	City        string              `json:"city"`
	CreatedAt   time.Time           `json:"createdAt"`
	DeletedAt   *time.Time          `json:"deletedAt"`
	LastAccess  time.Time           `json:"lastAccess"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}

// NewProfileResponse maps a profile; nil yields nil.
func NewProfileResponse(p *models.AppUser) *ProfileResponse {
	if p == nil {
		return nil
	}
	return &ProfileResponse{
		ID:          p.ID,
		Name:        p.Name,
		BirthDate:   p.BirthDate.Format(DateLayout),
		Idiom:       p.Idiom,
		AboutMe:     p.AboutMe,
		ImageURL:    p.ImageURL,
		City:        p.City,
		CreatedAt:   p.CreatedAt,
		DeletedAt:   p.DeletedAt,
		LastAccess:  p.LastAccess,
		Coordinates: p.Location(),
	}
}

// NewProfileResponses maps a slice of profiles.
func NewProfileResponses(profiles []models.AppUser) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		out = append(out, *NewProfileResponse(&profiles[i]))
	}
	return out
}
