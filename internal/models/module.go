package models

import "time"

// Module is a unit of the course catalog.
type Module struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Priority  int       `db:"priority"`
	CreatedAt time.Time `db:"created_at"`
	Lessons   []Lesson  `db:"-"`
}

// Lesson belongs to exactly one module.
type Lesson struct {
	ID       string `db:"id"`
	ModuleID string `db:"module_id"`
	Title    string `db:"title"`
	Priority int    `db:"priority"`
	VideoURL string `db:"video_url"`
	ThumbURL string `db:"thumb_url"`
	Content  string `db:"content"`
}
