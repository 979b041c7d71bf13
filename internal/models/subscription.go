package models

import "time"

// UserSubscription is one ledger entry per (subject, plan, time window).
// Records are never deleted; cancelled and expired rows remain as billing
// history. A partial unique index created in database.AutoMigrate keeps at
// most one non-terminal row per subject.
type UserSubscription struct {
	BaseModel
	SubjectID   string             `gorm:"not null;index:idx_subscriptions_subject" json:"subject_id"`
	SubjectType SubjectType        `gorm:"type:varchar(20);not null;index:idx_subscriptions_subject" json:"subject_type"`
	PlanID      string             `gorm:"type:uuid;not null;index" json:"plan_id"`
	Status      SubscriptionStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	StartDate    time.Time  `gorm:"not null" json:"start_date"`
	EndDate      time.Time  `gorm:"not null" json:"end_date"`
	TrialEndDate *time.Time `json:"trial_end_date,omitempty"`

	AutoRenew       bool       `gorm:"default:true" json:"auto_renew"`
	PaymentMethod   string     `json:"payment_method"`
	LastPaymentDate *time.Time `json:"last_payment_date,omitempty"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`

	Plan SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
}

// IsExpired reports whether the window has lapsed regardless of the stored
// status. The status column is only updated lazily on read or by the sweep
// worker, so callers must not trust Status alone.
func (s *UserSubscription) IsExpired(now time.Time) bool {
	return now.After(s.EndDate)
}

// IsCurrent reports whether this entry still grants plan access.
func (s *UserSubscription) IsCurrent(now time.Time) bool {
	return !s.Status.IsTerminal() && !s.IsExpired(now)
}
