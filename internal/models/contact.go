package models

// SubjectContact maps a subject to a deliverable email address. The accounts
// service pushes rows here; the reminder worker only reads them.
type SubjectContact struct {
	BaseModel
	SubjectID   string      `gorm:"not null;uniqueIndex:idx_contacts_subject" json:"subject_id"`
	SubjectType SubjectType `gorm:"type:varchar(20);not null;uniqueIndex:idx_contacts_subject" json:"subject_type"`
	Email       string      `gorm:"not null" json:"email"`
}
