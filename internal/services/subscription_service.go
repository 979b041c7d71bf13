package services

import (
	"context"
	"math"
	"time"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/logger"
	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"
)

// TrialStatusView is the dashboard projection of an active trial.
type TrialStatusView struct {
	Subscription *models.UserSubscription `json:"subscription"`
	DaysLeft     int                      `json:"days_left"`
}

type SubscriptionService interface {
	// GetCurrentSubscription returns the subject's single non-terminal entry,
	// or the most recent terminal one when nothing is current. Stale entries
	// are flipped to expired before being returned.
	GetCurrentSubscription(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	// CurrentForEntitlement is GetCurrentSubscription minus the terminal
	// fallback: it yields nil when the subject holds no usable subscription.
	CurrentForEntitlement(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	Subscribe(ctx context.Context, subjectID string, subjectType models.SubjectType, planID, paymentMethod string) (*models.UserSubscription, error)
	StartTrial(ctx context.Context, subjectID string, subjectType models.SubjectType, planID string) (*models.UserSubscription, error)
	TrialStatus(ctx context.Context, subjectID string, subjectType models.SubjectType) (*TrialStatusView, error)
	ConvertTrial(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	Cancel(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error)
	History(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.UserSubscription, error)
	// ActivateFromPayment applies a verified payment to the ledger. The
	// branch (convert trial, activate pending, or create new) is derived
	// from the ledger's current state, never from client input.
	ActivateFromPayment(ctx context.Context, subjectID string, subjectType models.SubjectType, planID string, paidAt time.Time) (*models.UserSubscription, error)
}

type subscriptionService struct {
	subRepo  repositories.SubscriptionRepository
	planRepo repositories.PlanRepository
	clock    func() time.Time
}

func NewSubscriptionService(subRepo repositories.SubscriptionRepository, planRepo repositories.PlanRepository) SubscriptionService {
	return &subscriptionService{
		subRepo:  subRepo,
		planRepo: planRepo,
		clock:    time.Now,
	}
}

func (s *subscriptionService) GetCurrentSubscription(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	sub, err := s.subRepo.FindNonTerminal(ctx, subjectID, subjectType)
	if err != nil {
		if appErrors.Is(err, repositories.ErrSubscriptionNotFound) {
			recent, recentErr := s.subRepo.FindMostRecent(ctx, subjectID, subjectType)
			if recentErr != nil {
				return nil, appErrors.ErrSubscriptionNotFound
			}
			return recent, nil
		}
		return nil, err
	}

	s.expireIfStale(ctx, sub)
	return sub, nil
}

func (s *subscriptionService) CurrentForEntitlement(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	sub, err := s.subRepo.FindNonTerminal(ctx, subjectID, subjectType)
	if err != nil {
		if appErrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if s.expireIfStale(ctx, sub) {
		return nil, nil
	}
	if sub.Status == models.SubscriptionStatusPending {
		// Not yet paid for: grants nothing.
		return nil, nil
	}
	return sub, nil
}

// expireIfStale lazily persists the expired transition for entries whose
// window has lapsed. The sweep worker does the same in bulk; this read-path
// check means correctness never depends on the worker's schedule.
func (s *subscriptionService) expireIfStale(ctx context.Context, sub *models.UserSubscription) bool {
	if sub.Status.IsTerminal() || !sub.IsExpired(s.clock()) {
		return sub.Status == models.SubscriptionStatusExpired
	}
	if err := s.subRepo.MarkExpired(ctx, sub.ID); err != nil {
		logger.WithError(err).Warn("failed to persist expired status", "subscription_id", sub.ID)
	}
	sub.Status = models.SubscriptionStatusExpired
	return true
}

func (s *subscriptionService) Subscribe(ctx context.Context, subjectID string, subjectType models.SubjectType, planID, paymentMethod string) (*models.UserSubscription, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}

	now := s.clock()
	sub := &models.UserSubscription{
		SubjectID:     subjectID,
		SubjectType:   subjectType,
		PlanID:        plan.ID,
		Status:        models.SubscriptionStatusActive,
		StartDate:     now,
		EndDate:       periodEnd(plan.Period, now),
		AutoRenew:     true,
		PaymentMethod: paymentMethod,
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		if appErrors.Is(err, repositories.ErrConflictingSubscription) {
			return nil, appErrors.ErrConflictingSubscription
		}
		return nil, err
	}
	sub.Plan = *plan
	return sub, nil
}

func (s *subscriptionService) StartTrial(ctx context.Context, subjectID string, subjectType models.SubjectType, planID string) (*models.UserSubscription, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}
	if !plan.HasTrial {
		return nil, appErrors.ErrTrialNotAvailable
	}

	if _, err := s.subRepo.FindByStatus(ctx, subjectID, subjectType, models.SubscriptionStatusTrial); err == nil {
		return nil, appErrors.ErrTrialAlreadyActive
	} else if !appErrors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, err
	}

	now := s.clock()
	trialEnd := now.AddDate(0, 0, plan.TrialDays)
	sub := &models.UserSubscription{
		SubjectID:     subjectID,
		SubjectType:   subjectType,
		PlanID:        plan.ID,
		Status:        models.SubscriptionStatusTrial,
		StartDate:     now,
		EndDate:       trialEnd,
		TrialEndDate:  &trialEnd,
		AutoRenew:     true,
		PaymentMethod: "trial",
	}

	if err := s.subRepo.Create(ctx, sub); err != nil {
		if appErrors.Is(err, repositories.ErrConflictingSubscription) {
			return nil, appErrors.ErrConflictingSubscription
		}
		return nil, err
	}
	sub.Plan = *plan
	return sub, nil
}

func (s *subscriptionService) TrialStatus(ctx context.Context, subjectID string, subjectType models.SubjectType) (*TrialStatusView, error) {
	trial, err := s.subRepo.FindByStatus(ctx, subjectID, subjectType, models.SubscriptionStatusTrial)
	if err != nil {
		if appErrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, appErrors.ErrNoActiveTrial
		}
		return nil, err
	}

	daysLeft := 0
	if trial.TrialEndDate != nil {
		daysLeft = int(math.Ceil(trial.TrialEndDate.Sub(s.clock()).Hours() / 24))
		if daysLeft < 0 {
			daysLeft = 0
		}
	}
	return &TrialStatusView{Subscription: trial, DaysLeft: daysLeft}, nil
}

func (s *subscriptionService) ConvertTrial(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	trial, err := s.subRepo.FindByStatus(ctx, subjectID, subjectType, models.SubscriptionStatusTrial)
	if err != nil {
		if appErrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, appErrors.ErrNoActiveTrial
		}
		return nil, err
	}

	now := s.clock()
	trial.Status = models.SubscriptionStatusActive
	trial.EndDate = periodEnd(trial.Plan.Period, now)

	if err := s.subRepo.Save(ctx, trial); err != nil {
		return nil, err
	}
	return trial, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, subjectID string, subjectType models.SubjectType) (*models.UserSubscription, error) {
	sub, err := s.subRepo.Cancel(ctx, subjectID, subjectType)
	if err != nil {
		if appErrors.Is(err, repositories.ErrNoCancellableSubscription) {
			return nil, appErrors.ErrNoActiveSubscription
		}
		return nil, err
	}
	sub.Status = models.SubscriptionStatusCancelled
	sub.AutoRenew = false
	return sub, nil
}

func (s *subscriptionService) History(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.UserSubscription, error) {
	return s.subRepo.FindHistory(ctx, subjectID, subjectType)
}

func (s *subscriptionService) ActivateFromPayment(ctx context.Context, subjectID string, subjectType models.SubjectType, planID string, paidAt time.Time) (*models.UserSubscription, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}

	current, err := s.subRepo.FindNonTerminal(ctx, subjectID, subjectType)
	if err != nil && !appErrors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, err
	}

	endDate := periodEnd(plan.Period, paidAt)

	if current != nil {
		switch current.Status {
		case models.SubscriptionStatusTrial:
			// Paid conversion of the running trial.
			current.Status = models.SubscriptionStatusActive
			current.PlanID = plan.ID
			current.EndDate = endDate
		case models.SubscriptionStatusPending:
			// First payment for a pre-created entry: open a fresh window.
			current.Status = models.SubscriptionStatusActive
			current.PlanID = plan.ID
			current.StartDate = paidAt
			current.EndDate = endDate
		default:
			// Renewal of an already active subscription.
			current.PlanID = plan.ID
			current.EndDate = endDate
		}
		current.PaymentMethod = "razorpay"
		current.LastPaymentDate = &paidAt
		current.NextBillingDate = &endDate
		if err := s.subRepo.Save(ctx, current); err != nil {
			return nil, err
		}
		current.Plan = *plan
		return current, nil
	}

	sub := &models.UserSubscription{
		SubjectID:       subjectID,
		SubjectType:     subjectType,
		PlanID:          plan.ID,
		Status:          models.SubscriptionStatusActive,
		StartDate:       paidAt,
		EndDate:         endDate,
		AutoRenew:       true,
		PaymentMethod:   "razorpay",
		LastPaymentDate: &paidAt,
		NextBillingDate: &endDate,
	}
	if err := s.subRepo.Create(ctx, sub); err != nil {
		if appErrors.Is(err, repositories.ErrConflictingSubscription) {
			return nil, appErrors.ErrConflictingSubscription
		}
		return nil, err
	}
	sub.Plan = *plan
	return sub, nil
}

// periodEnd advances one billing period using time.AddDate, which rolls
// month-length overflow forward to a valid date (2024-01-31 plus one month
// is 2024-03-02).
func periodEnd(period models.PlanPeriod, from time.Time) time.Time {
	if period == models.PlanPeriodYear {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
