package models

import "time"

// Idiom is the language a learner studies.
type Idiom string

const IdiomEnglish Idiom = "English"

// AppUser is the learner profile completed after sign-up. Its ID equals the credential ID.
type AppUser struct {
	ID         string     `db:"id"`
	Name       string     `db:"name"`
	BirthDate  time.Time  `db:"birth_date"`
	Idiom      Idiom      `db:"idiom"`
	AboutMe    string     `db:"about_me"`
	ImageURL   string     `db:"image_url"`
	City       string     `db:"city"`
	Latitude   *float64   `db:"latitude"`
	Longitude  *float64   `db:"longitude"`
	CreatedAt  time.Time  `db:"created_at"`
	DeletedAt  *time.Time `db:"deleted_at"`
	LastAccess time.Time  `db:"last_access"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `form:"latitude" json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `form:"longitude" json:"longitude" validate:"gte=-180,lte=180"`
}

// Location returns the stored position, if any.
func (u *AppUser) Location() *Coordinates {
	if u == nil || u.Latitude == nil || u.Longitude == nil {
		return nil
	}
	return &Coordinates{Latitude: *u.Latitude, Longitude: *u.Longitude}
}

// SetLocation records the position.
func (u *AppUser) SetLocation(c Coordinates) {
	lat, lon := c.Latitude, c.Longitude
	u.Latitude = &lat
	u.Longitude = &lon
}
