package workers

import (
	"context"
	"time"

	"collegium_backend/internal/logger"
	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"
)

const (
	sweepInterval    = 6 * time.Hour
	reminderInterval = 24 * time.Hour
	reminderLeadTime = 3 * 24 * time.Hour
)

// EmailLookup resolves a subject to a deliverable address. Returning an
// empty address skips the notification for that subject.
type EmailLookup func(ctx context.Context, subjectID string, subjectType models.SubjectType) (string, error)

// ReminderSender delivers expiry reminders. Satisfied by email.Sender.
type ReminderSender interface {
	SendExpiryReminder(to string, sub *models.UserSubscription) error
}

type SubscriptionWorker struct {
	repo   repositories.SubscriptionRepository
	sender ReminderSender
	lookup EmailLookup
}

func NewSubscriptionWorker(repo repositories.SubscriptionRepository, sender ReminderSender, lookup EmailLookup) *SubscriptionWorker {
	return &SubscriptionWorker{repo: repo, sender: sender, lookup: lookup}
}

// Start launches the background loops. Both stop when ctx is cancelled.
func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.sweepExpired(ctx)
	go w.remindExpiring(ctx)
}

// sweepExpired flips stale trial/active subscriptions to expired. Reads also
// expire lazily, so this only bounds how long a stale row can linger.
func (w *SubscriptionWorker) sweepExpired(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped", "loop", "sweep")
			return
		case <-ticker.C:
			n, err := w.repo.SweepExpired(ctx, time.Now())
			logger.WorkerLog("subscription", "sweep_expired", err)
			if err == nil && n > 0 {
				logger.Info("expired subscriptions swept", "count", n)
			}
		}
	}
}

func (w *SubscriptionWorker) remindExpiring(ctx context.Context) {
	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped", "loop", "remind")
			return
		case <-ticker.C:
			w.sendReminders(ctx)
		}
	}
}

func (w *SubscriptionWorker) sendReminders(ctx context.Context) {
	now := time.Now()
	subs, err := w.repo.FindExpiringBetween(ctx, now, now.Add(reminderLeadTime))
	if err != nil {
		logger.WorkerLog("subscription", "find_expiring", err)
		return
	}

	for i := range subs {
		sub := &subs[i]
		addr, err := w.lookup(ctx, sub.SubjectID, sub.SubjectType)
		if err != nil || addr == "" {
			continue
		}
		if err := w.sender.SendExpiryReminder(addr, sub); err != nil {
			logger.WithError(err).Warn("expiry reminder not sent",
				"subject_id", sub.SubjectID, "subscription_id", sub.ID)
		}
	}
}
