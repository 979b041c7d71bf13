package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"collegium_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrConflictingSubscription   = errors.New("subject already has a current subscription")
	ErrNoCancellableSubscription = errors.New("no subscription in a cancellable state")
)

var nonTerminalStatuses = []models.SubscriptionStatus{
	models.SubscriptionStatusPending,
	models.SubscriptionStatusTrial,
	models.SubscriptionStatusActive,
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.UserSubscription) error
	FindByID(ctx context.Context, id string) (*models.UserSubscription, error)
	FindNonTerminal(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	FindMostRecent(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	FindByStatus(ctx context.Context, subjectID string, subjectType models.SubjectType, status models.SubscriptionStatus) (*models.UserSubscription, error)
	FindHistory(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.UserSubscription, error)
	UpdateStatus(ctx context.Context, id string, status models.SubscriptionStatus) error
	Save(ctx context.Context, sub *models.UserSubscription) error
	Cancel(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	MarkExpired(ctx context.Context, id string) error
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.UserSubscription, error)
	CountNonTerminal(ctx context.Context, subjectID string, subjectType models.SubjectType) (int64, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

// Create inserts a new ledger entry. The transaction re-checks for an
// existing non-terminal entry and the partial unique index backs the check,
// so two concurrent creates for the same subject cannot both survive.
func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *models.UserSubscription) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// A lapsed trial/active row nothing has read yet must not block the
		// new entry. sub.StartDate carries the caller's clock.
		if err := tx.Model(&models.UserSubscription{}).
			Where("subject_id = ? AND subject_type = ? AND status IN ? AND end_date < ?",
				sub.SubjectID, sub.SubjectType,
				[]models.SubscriptionStatus{models.SubscriptionStatusTrial, models.SubscriptionStatusActive},
				sub.StartDate).
			Updates(map[string]interface{}{"status": models.SubscriptionStatusExpired, "updated_at": time.Now()}).
			Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.UserSubscription{}).
			Where("subject_id = ? AND subject_type = ? AND status IN ?", sub.SubjectID, sub.SubjectType, nonTerminalStatuses).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConflictingSubscription
		}
		return tx.Create(sub).Error
	})
	if isDuplicateKey(err) {
		return ErrConflictingSubscription
	}
	return err
}

func (r *SubscriptionRepositoryImpl) FindByID(ctx context.Context, id string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindNonTerminal(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("subject_id = ? AND subject_type = ? AND status IN ?", subjectID, subjectType, nonTerminalStatuses).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindMostRecent(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("subject_id = ? AND subject_type = ?", subjectID, subjectType).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByStatus(ctx context.Context, subjectID string, subjectType models.SubjectType, status models.SubscriptionStatus) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("subject_id = ? AND subject_type = ? AND status = ?", subjectID, subjectType, status).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindHistory(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("subject_id = ? AND subject_type = ?", subjectID, subjectType).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) UpdateStatus(ctx context.Context, id string, status models.SubscriptionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.UserSubscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) Save(ctx context.Context, sub *models.UserSubscription) error {
	return r.db.WithContext(ctx).Omit("Plan").Save(sub).Error
}

// Cancel flips the single cancellable (trial or active) entry of the subject.
func (r *SubscriptionRepositoryImpl) Cancel(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("subject_id = ? AND subject_type = ? AND status IN ?",
			subjectID, subjectType,
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusTrial}).
			First(&sub).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoCancellableSubscription
			}
			return err
		}
		now := time.Now()
		if err := tx.Model(&models.UserSubscription{}).Where("id = ?", sub.ID).Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusCancelled,
			"auto_renew":   false,
			"cancelled_at": now,
			"updated_at":   now,
		}).Error; err != nil {
			return err
		}
		sub.Status = models.SubscriptionStatusCancelled
		sub.AutoRenew = false
		sub.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) MarkExpired(ctx context.Context, id string) error {
	return r.UpdateStatus(ctx, id, models.SubscriptionStatusExpired)
}

// SweepExpired flips every stale trial/active entry in one statement and
// returns how many rows changed.
func (r *SubscriptionRepositoryImpl) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.UserSubscription{}).
		Where("status IN ? AND end_date < ?",
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusTrial}, now).
		Updates(map[string]interface{}{"status": models.SubscriptionStatusExpired, "updated_at": now})
	return result.RowsAffected, result.Error
}

// FindExpiringBetween returns running subscriptions whose end date falls in
// the window. Used by the reminder worker.
func (r *SubscriptionRepositoryImpl) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("status IN ? AND end_date BETWEEN ? AND ?",
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusTrial}, from, to).
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) CountNonTerminal(ctx context.Context, subjectID string, subjectType models.SubjectType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserSubscription{}).
		Where("subject_id = ? AND subject_type = ? AND status IN ?", subjectID, subjectType, nonTerminalStatuses).
		Count(&count).Error
	return count, err
}

// isDuplicateKey matches unique violations from both the Postgres driver and
// the sqlite driver used in tests.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
