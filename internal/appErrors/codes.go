package appErrors

// Error codes grouped by domain
const (
	// Auth
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeInvalidAction    ErrorCode = "INVALID_ACTION"

	// Plans
	CodePlanNotFound      ErrorCode = "PLAN_NOT_FOUND"
	CodeDuplicatePlanName ErrorCode = "DUPLICATE_PLAN_NAME"
	CodeTrialNotAvailable ErrorCode = "TRIAL_NOT_AVAILABLE"

	// Subscriptions
	CodeSubscriptionNotFound    ErrorCode = "SUBSCRIPTION_NOT_FOUND"
	CodeConflictingSubscription ErrorCode = "CONFLICTING_SUBSCRIPTION"
	CodeTrialAlreadyActive      ErrorCode = "TRIAL_ALREADY_ACTIVE"
	CodeNoActiveTrial           ErrorCode = "NO_ACTIVE_TRIAL"
	CodeNoActiveSubscription    ErrorCode = "NO_ACTIVE_SUBSCRIPTION"
	CodeLimitExceeded           ErrorCode = "LIMIT_EXCEEDED"

	// Content
	CodeEventNotFound     ErrorCode = "EVENT_NOT_FOUND"
	CodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	CodeEventFull         ErrorCode = "EVENT_FULL"

	// Payments
	CodePaymentNotFound           ErrorCode = "PAYMENT_NOT_FOUND"
	CodeGatewayVerificationFailed ErrorCode = "PAYMENT_VERIFICATION_FAILED"
	CodeWebhookVerificationFailed ErrorCode = "WEBHOOK_VERIFICATION_FAILED"
	CodeInvalidPaymentAmount      ErrorCode = "INVALID_PAYMENT_AMOUNT"
	CodePaymentGatewayUnavailable ErrorCode = "PAYMENT_GATEWAY_UNAVAILABLE"

	// System
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
)
