package models

import "time"

// Content records. The CRUD around these lives in thin handlers; the models
// exist mainly because usage counting derives monthly consumption from them
// instead of keeping a mutable counter table.

type Post struct {
	BaseModel
	UserID    string `gorm:"not null;index" json:"user_id"`
	CollegeID string `gorm:"index" json:"college_id"`
	Content   string `gorm:"not null" json:"content"`
	ImageURL  string `json:"image_url"`
}

type Project struct {
	BaseModel
	UserID             string `gorm:"not null;index" json:"user_id"`
	CollegeID          string `gorm:"index" json:"college_id"`
	Name               string `gorm:"not null" json:"name"`
	Description        string `gorm:"not null" json:"description"`
	GithubRepo         string `json:"github_repo"`
	AllowCollaboration bool   `gorm:"default:true" json:"allow_collaboration"`
}

type Event struct {
	BaseModel
	CollegeID       string    `gorm:"index" json:"college_id"`
	CreatedBy       string    `gorm:"not null" json:"created_by"`
	Title           string    `gorm:"not null" json:"title"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date"`
	MaxParticipants int       `gorm:"default:0" json:"max_participants"`
}

// EventRegistration is counted against the "events" quota by RegisteredAt,
// not by the event's own date.
type EventRegistration struct {
	BaseModel
	EventID      string    `gorm:"type:uuid;not null;index" json:"event_id"`
	UserID       string    `gorm:"not null;index" json:"user_id"`
	RegisteredAt time.Time `gorm:"not null;index" json:"registered_at"`
}

type Job struct {
	BaseModel
	CompanyID   string `gorm:"not null;index" json:"company_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Active      bool   `gorm:"default:true" json:"active"`
}
