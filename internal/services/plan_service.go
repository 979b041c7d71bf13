package services

import (
	"context"
	"encoding/json"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"

	"gorm.io/datatypes"
)

type CreatePlanRequest struct {
	Name        string             `json:"name" binding:"required"`
	Audience    models.SubjectType `json:"audience" binding:"required,oneof=student company"`
	Price       float64            `json:"price" binding:"min=0"`
	Currency    string             `json:"currency"`
	Period      models.PlanPeriod  `json:"period" binding:"required,oneof=month year"`
	Description string             `json:"description"`
	Features    []string           `json:"features"`
	Limits      map[string]int     `json:"limits" binding:"required"`
	HasTrial    bool               `json:"has_trial"`
	TrialPrice  float64            `json:"trial_price"`
	TrialDays   int                `json:"trial_days"`
	Popular     bool               `json:"popular"`
}

type UpdatePlanRequest struct {
	Price       *float64           `json:"price"`
	Currency    *string            `json:"currency"`
	Period      *models.PlanPeriod `json:"period"`
	Description *string            `json:"description"`
	Features    *[]string          `json:"features"`
	Limits      *map[string]int    `json:"limits"`
	HasTrial    *bool              `json:"has_trial"`
	TrialPrice  *float64           `json:"trial_price"`
	TrialDays   *int               `json:"trial_days"`
	Popular     *bool              `json:"popular"`
	Active      *bool              `json:"active"`
}

type PlanService interface {
	GetPlan(ctx context.Context, planID string) (*models.SubscriptionPlan, error)
	ListActivePlans(ctx context.Context, audience models.SubjectType) ([]models.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, req *CreatePlanRequest) (*models.SubscriptionPlan, error)
	UpdatePlan(ctx context.Context, planID string, req *UpdatePlanRequest) (*models.SubscriptionPlan, error)
	DeactivatePlan(ctx context.Context, planID string) error
}

type planService struct {
	planRepo repositories.PlanRepository
}

func NewPlanService(planRepo repositories.PlanRepository) PlanService {
	return &planService{planRepo: planRepo}
}

func (s *planService) GetPlan(ctx context.Context, planID string) (*models.SubscriptionPlan, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListActivePlans(ctx context.Context, audience models.SubjectType) ([]models.SubscriptionPlan, error) {
	return s.planRepo.FindActive(ctx, audience)
}

func (s *planService) CreatePlan(ctx context.Context, req *CreatePlanRequest) (*models.SubscriptionPlan, error) {
	if err := validateLimits(req.Limits); err != nil {
		return nil, err
	}

	featuresJSON, err := json.Marshal(req.Features)
	if err != nil {
		return nil, err
	}
	limitsJSON, err := json.Marshal(req.Limits)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	plan := &models.SubscriptionPlan{
		Name:        req.Name,
		Audience:    req.Audience,
		Price:       req.Price,
		Currency:    currency,
		Period:      req.Period,
		Description: req.Description,
		Features:    datatypes.JSON(featuresJSON),
		Limits:      datatypes.JSON(limitsJSON),
		HasTrial:    req.HasTrial,
		TrialPrice:  req.TrialPrice,
		TrialDays:   req.TrialDays,
		Popular:     req.Popular,
		Active:      true,
	}

	if err := s.planRepo.Create(ctx, plan); err != nil {
		if appErrors.Is(err, repositories.ErrDuplicateName) {
			return nil, appErrors.ErrDuplicatePlanName
		}
		return nil, err
	}
	return plan, nil
}

// UpdatePlan applies a partial update. The plan name is immutable so quota
// keys referenced by stored subscriptions cannot drift.
func (s *planService) UpdatePlan(ctx context.Context, planID string, req *UpdatePlanRequest) (*models.SubscriptionPlan, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}

	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Currency != nil {
		plan.Currency = *req.Currency
	}
	if req.Period != nil {
		if *req.Period != models.PlanPeriodMonth && *req.Period != models.PlanPeriodYear {
			return nil, appErrors.ErrValidationFailed.WithDetails("period must be month or year")
		}
		plan.Period = *req.Period
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Features != nil {
		featuresJSON, err := json.Marshal(*req.Features)
		if err != nil {
			return nil, err
		}
		plan.Features = datatypes.JSON(featuresJSON)
	}
	if req.Limits != nil {
		if err := validateLimits(*req.Limits); err != nil {
			return nil, err
		}
		limitsJSON, err := json.Marshal(*req.Limits)
		if err != nil {
			return nil, err
		}
		plan.Limits = datatypes.JSON(limitsJSON)
	}
	if req.HasTrial != nil {
		plan.HasTrial = *req.HasTrial
	}
	if req.TrialPrice != nil {
		plan.TrialPrice = *req.TrialPrice
	}
	if req.TrialDays != nil {
		plan.TrialDays = *req.TrialDays
	}
	if req.Popular != nil {
		plan.Popular = *req.Popular
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) DeactivatePlan(ctx context.Context, planID string) error {
	err := s.planRepo.Deactivate(ctx, planID)
	if appErrors.Is(err, repositories.ErrPlanNotFound) {
		return appErrors.ErrPlanNotFound
	}
	return err
}

// validateLimits enforces the single unlimited sentinel: -1 means no cap,
// any other negative value is a mistake.
func validateLimits(limits map[string]int) error {
	for key, value := range limits {
		if !models.ActionKind(key).Valid() {
			return appErrors.ErrValidationFailed.WithDetails("unknown limit key: " + key)
		}
		if value < models.UnlimitedLimit {
			return appErrors.ErrValidationFailed.WithDetails("limit for " + key + " must be -1 (unlimited) or >= 0")
		}
	}
	return nil
}
