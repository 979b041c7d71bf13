package models

type SubjectType string
type SubscriptionStatus string
type PaymentStatus string
type PlanPeriod string
type ActionKind string

const (
	SubjectTypeStudent SubjectType = "student"
	SubjectTypeCompany SubjectType = "company"

	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusTrial     SubscriptionStatus = "trial"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"

	PlanPeriodMonth PlanPeriod = "month"
	PlanPeriodYear  PlanPeriod = "year"

	// Action kinds checked against plan limits. "chats" is measured as post
	// creations: the quota key predates the feed rename and stored plans still
	// carry it, so the key is kept and only the measurement is documented.
	ActionProjects ActionKind = "projects"
	ActionChats    ActionKind = "chats"
	ActionEvents   ActionKind = "events"
	ActionJobs     ActionKind = "jobs"
)

// IsTerminal reports whether a subscription in this status can never become
// current again. At most one non-terminal subscription may exist per subject.
func (s SubscriptionStatus) IsTerminal() bool {
	return s == SubscriptionStatusCancelled || s == SubscriptionStatusExpired
}

func (k ActionKind) Valid() bool {
	switch k {
	case ActionProjects, ActionChats, ActionEvents, ActionJobs:
		return true
	}
	return false
}
