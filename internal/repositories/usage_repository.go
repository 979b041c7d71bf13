package repositories

import (
	"context"
	"fmt"
	"time"

	"collegium_backend/internal/models"

	"gorm.io/gorm"
)

// Window is a closed time interval used to scope usage counting.
type Window struct {
	Start time.Time
	End   time.Time
}

// CurrentMonthWindow returns the calendar month containing now, from the
// first day 00:00:00 to the last day 23:59:59. Usage resets on calendar
// boundaries regardless of when a subscription started; this mirrors the
// historical behavior clients already rely on.
func CurrentMonthWindow(now time.Time) Window {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return Window{Start: start, End: end}
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// UsageRepository derives period consumption by counting domain records.
// There is no persisted counter to keep in sync or reset.
type UsageRepository interface {
	CountUsage(ctx context.Context, subjectID string, subjectType models.SubjectType, kind models.ActionKind, window Window) (int, error)
}

type UsageRepositoryImpl struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &UsageRepositoryImpl{db: db}
}

func (r *UsageRepositoryImpl) CountUsage(ctx context.Context, subjectID string, subjectType models.SubjectType, kind models.ActionKind, window Window) (int, error) {
	db := r.db.WithContext(ctx)
	var count int64
	var err error

	switch kind {
	case models.ActionProjects:
		err = db.Model(&models.Project{}).
			Where("user_id = ? AND created_at BETWEEN ? AND ?", subjectID, window.Start, window.End).
			Count(&count).Error
	case models.ActionChats:
		// The "chats" quota is consumed by post creation, see models.ActionChats.
		err = db.Model(&models.Post{}).
			Where("user_id = ? AND created_at BETWEEN ? AND ?", subjectID, window.Start, window.End).
			Count(&count).Error
	case models.ActionEvents:
		err = db.Model(&models.EventRegistration{}).
			Where("user_id = ? AND registered_at BETWEEN ? AND ?", subjectID, window.Start, window.End).
			Count(&count).Error
	case models.ActionJobs:
		err = db.Model(&models.Job{}).
			Where("company_id = ? AND created_at BETWEEN ? AND ?", subjectID, window.Start, window.End).
			Count(&count).Error
	default:
		return 0, fmt.Errorf("unknown action kind %q", kind)
	}

	if err != nil {
		return 0, err
	}
	return int(count), nil
}
