package services

import (
	"context"
	"time"

	"collegium_backend/internal/logger"
	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"
)

// FreeTierLimits applies to subjects with no subscription record at all.
var FreeTierLimits = map[models.ActionKind]int{
	models.ActionProjects: 2,
	models.ActionChats:    5,
	models.ActionEvents:   5,
	models.ActionJobs:     2,
}

type EntitlementService interface {
	// CheckLimitExceeded reports whether the subject has used up this
	// month's quota for the action. It fails open: internal lookup errors
	// are logged and reported as "not exceeded" so billing faults never
	// block content creation.
	CheckLimitExceeded(ctx context.Context, subjectID string, subjectType models.SubjectType, kind models.ActionKind) bool
	// SubjectLimits resolves the effective quota set of the subject's
	// current plan, falling back to the free tier.
	SubjectLimits(ctx context.Context, subjectID string, subjectType models.SubjectType) map[models.ActionKind]int
}

type entitlementService struct {
	subscriptions SubscriptionService
	usageRepo     repositories.UsageRepository
	clock         func() time.Time
}

func NewEntitlementService(subscriptions SubscriptionService, usageRepo repositories.UsageRepository) EntitlementService {
	return &entitlementService{
		subscriptions: subscriptions,
		usageRepo:     usageRepo,
		clock:         time.Now,
	}
}

func (s *entitlementService) CheckLimitExceeded(ctx context.Context, subjectID string, subjectType models.SubjectType, kind models.ActionKind) bool {
	limits := s.SubjectLimits(ctx, subjectID, subjectType)

	limit, ok := limits[kind]
	if !ok {
		limit = 0
	}
	if limit == models.UnlimitedLimit {
		return false
	}

	window := repositories.CurrentMonthWindow(s.clock())
	count, err := s.usageRepo.CountUsage(ctx, subjectID, subjectType, kind, window)
	if err != nil {
		logger.WithError(err).Error("usage count failed, allowing action",
			"subject_id", subjectID, "action", string(kind))
		return false
	}

	return count >= limit
}

func (s *entitlementService) SubjectLimits(ctx context.Context, subjectID string, subjectType models.SubjectType) map[models.ActionKind]int {
	sub, err := s.subscriptions.CurrentForEntitlement(ctx, subjectID, subjectType)
	if err != nil {
		logger.WithError(err).Error("subscription lookup failed, using free tier limits",
			"subject_id", subjectID)
		return FreeTierLimits
	}
	if sub == nil {
		return FreeTierLimits
	}

	planLimits, err := sub.Plan.LimitMap()
	if err != nil {
		logger.WithError(err).Error("plan limits unreadable, using free tier limits",
			"subject_id", subjectID, "plan_id", sub.PlanID)
		return FreeTierLimits
	}

	limits := make(map[models.ActionKind]int, len(planLimits))
	for key, value := range planLimits {
		limits[models.ActionKind(key)] = value
	}
	return limits
}
