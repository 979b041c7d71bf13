package appErrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an application error class
type ErrorCode string

// AppError is the application error carried from services up to HTTP handlers
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches by error code, so WithDetails/WithError clones still compare
// equal to the predeclared values under errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// Is wraps the standard errors.Is
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As wraps the standard errors.As
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predefined errors
var (
	// Auth
	ErrUnauthorized = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrForbidden    = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrInvalidToken = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)

	// Validation
	ErrValidationFailed = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrInvalidAction    = New(CodeInvalidAction, "Unknown action kind", http.StatusBadRequest)

	// Plans
	ErrPlanNotFound      = New(CodePlanNotFound, "Plan not found", http.StatusNotFound)
	ErrDuplicatePlanName = New(CodeDuplicatePlanName, "Plan with this name already exists", http.StatusConflict)
	ErrTrialNotAvailable = New(CodeTrialNotAvailable, "Trial not available for this plan", http.StatusBadRequest)

	// Subscriptions
	ErrSubscriptionNotFound    = New(CodeSubscriptionNotFound, "Subscription not found", http.StatusNotFound)
	ErrConflictingSubscription = New(CodeConflictingSubscription, "Subject already has a current subscription", http.StatusConflict)
	ErrTrialAlreadyActive      = New(CodeTrialAlreadyActive, "Trial already active", http.StatusConflict)
	ErrNoActiveTrial           = New(CodeNoActiveTrial, "No active trial found", http.StatusNotFound)
	ErrNoActiveSubscription    = New(CodeNoActiveSubscription, "Active subscription not found", http.StatusNotFound)

	// Content
	ErrEventNotFound     = New(CodeEventNotFound, "Event not found", http.StatusNotFound)
	ErrAlreadyRegistered = New(CodeAlreadyRegistered, "Already registered for this event", http.StatusBadRequest)
	ErrEventFull         = New(CodeEventFull, "Event is full", http.StatusBadRequest)

	// Payments. Verification failures stay generic on purpose: no internal
	// detail leaks to the caller.
	ErrPaymentNotFound           = New(CodePaymentNotFound, "Payment record not found", http.StatusNotFound)
	ErrGatewayVerificationFailed = New(CodeGatewayVerificationFailed, "Payment verification failed", http.StatusBadRequest)
	ErrWebhookVerificationFailed = New(CodeWebhookVerificationFailed, "Invalid signature", http.StatusBadRequest)
	ErrInvalidPaymentAmount      = New(CodeInvalidPaymentAmount, "Payment amount does not match", http.StatusBadRequest)

	// System
	ErrInternal = New(CodeInternalError, "Internal server error", http.StatusInternalServerError)
)

// LimitExceeded builds the quota-exceeded error surfaced to end users as a
// 403 with an upgrade prompt, e.g. LimitExceeded("project creation",
// "projects").
func LimitExceeded(what, more string) *AppError {
	msg := fmt.Sprintf("Monthly %s limit exceeded. Upgrade your plan for more %s.", what, more)
	return New(CodeLimitExceeded, msg, http.StatusForbidden)
}
