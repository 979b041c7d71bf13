package repositories

import (
	"context"
	"errors"

	"collegium_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound  = errors.New("subscription plan not found")
	ErrDuplicateName = errors.New("plan name already exists")
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.SubscriptionPlan) error
	FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error)
	FindByName(ctx context.Context, name string) (*models.SubscriptionPlan, error)
	FindActive(ctx context.Context, audience models.SubjectType) ([]models.SubscriptionPlan, error)
	Update(ctx context.Context, plan *models.SubscriptionPlan) error
	Deactivate(ctx context.Context, id string) error
}

type PlanRepositoryImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &PlanRepositoryImpl{db: db}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, plan *models.SubscriptionPlan) error {
	err := r.db.WithContext(ctx).Create(plan).Error
	if isDuplicateKey(err) {
		return ErrDuplicateName
	}
	return err
}

func (r *PlanRepositoryImpl) FindByID(ctx context.Context, id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepositoryImpl) FindByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepositoryImpl) FindActive(ctx context.Context, audience models.SubjectType) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.WithContext(ctx).
		Where("active = ? AND audience = ?", true, audience).
		Order("price ASC").
		Find(&plans).Error
	return plans, err
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, plan *models.SubscriptionPlan) error {
	result := r.db.WithContext(ctx).Model(plan).Updates(map[string]interface{}{
		"price":       plan.Price,
		"currency":    plan.Currency,
		"period":      plan.Period,
		"description": plan.Description,
		"features":    plan.Features,
		"limits":      plan.Limits,
		"has_trial":   plan.HasTrial,
		"trial_price": plan.TrialPrice,
		"trial_days":  plan.TrialDays,
		"popular":     plan.Popular,
		"active":      plan.Active,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Deactivate hides the plan from listings. Subscriptions already referencing
// it keep functioning under its terms; plans are never hard-deleted.
func (r *PlanRepositoryImpl) Deactivate(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionPlan{}).
		Where("id = ?", id).
		Update("active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
