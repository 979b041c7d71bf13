package services

import (
	"context"
	"errors"
	"time"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/models"

	"gorm.io/gorm"
)

// ContentService owns the content-creation writes that consume quota. Every
// write asks the entitlement evaluator first; a denied check surfaces as a
// 403 with an upgrade prompt.
type ContentService interface {
	CreatePost(ctx context.Context, userID string, post *models.Post) error
	CreateProject(ctx context.Context, userID string, project *models.Project) error
	RegisterForEvent(ctx context.Context, userID, eventID string) (*models.EventRegistration, error)
	CreateJob(ctx context.Context, companyID string, job *models.Job) error
}

type contentService struct {
	db           *gorm.DB
	entitlements EntitlementService
}

func NewContentService(db *gorm.DB, entitlements EntitlementService) ContentService {
	return &contentService{db: db, entitlements: entitlements}
}

func (s *contentService) CreatePost(ctx context.Context, userID string, post *models.Post) error {
	if s.entitlements.CheckLimitExceeded(ctx, userID, models.SubjectTypeStudent, models.ActionChats) {
		return appErrors.LimitExceeded("post creation", "posts")
	}
	post.UserID = userID
	return s.db.WithContext(ctx).Create(post).Error
}

func (s *contentService) CreateProject(ctx context.Context, userID string, project *models.Project) error {
	if s.entitlements.CheckLimitExceeded(ctx, userID, models.SubjectTypeStudent, models.ActionProjects) {
		return appErrors.LimitExceeded("project creation", "projects")
	}
	project.UserID = userID
	return s.db.WithContext(ctx).Create(project).Error
}

func (s *contentService) RegisterForEvent(ctx context.Context, userID, eventID string) (*models.EventRegistration, error) {
	db := s.db.WithContext(ctx)

	var event models.Event
	if err := db.First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErrors.ErrEventNotFound
		}
		return nil, err
	}

	var existing int64
	if err := db.Model(&models.EventRegistration{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, appErrors.ErrAlreadyRegistered
	}

	if event.MaxParticipants > 0 {
		var total int64
		if err := db.Model(&models.EventRegistration{}).
			Where("event_id = ?", eventID).
			Count(&total).Error; err != nil {
			return nil, err
		}
		if total >= int64(event.MaxParticipants) {
			return nil, appErrors.ErrEventFull
		}
	}

	if s.entitlements.CheckLimitExceeded(ctx, userID, models.SubjectTypeStudent, models.ActionEvents) {
		return nil, appErrors.LimitExceeded("event registration", "registrations")
	}

	registration := &models.EventRegistration{
		EventID:      eventID,
		UserID:       userID,
		RegisteredAt: time.Now(),
	}
	if err := db.Create(registration).Error; err != nil {
		return nil, err
	}
	return registration, nil
}

func (s *contentService) CreateJob(ctx context.Context, companyID string, job *models.Job) error {
	if s.entitlements.CheckLimitExceeded(ctx, companyID, models.SubjectTypeCompany, models.ActionJobs) {
		return appErrors.LimitExceeded("job posting", "job postings")
	}
	job.CompanyID = companyID
	job.Active = true
	return s.db.WithContext(ctx).Create(job).Error
}
