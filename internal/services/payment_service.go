package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"collegium_backend/internal/appErrors"
	"collegium_backend/internal/logger"
	"collegium_backend/internal/models"
	"collegium_backend/internal/repositories"

	"github.com/google/uuid"
)

type CreateOrderResponse struct {
	Order     *GatewayOrder `json:"order"`
	PaymentID string        `json:"payment_id"`
	Key       string        `json:"key"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
	PaymentID         string `json:"payment_id" binding:"required"`
	PlanID            string `json:"plan_id" binding:"required"`
}

type VerifyPaymentResponse struct {
	Subscription *models.UserSubscription `json:"subscription"`
	Payment      *models.Payment          `json:"payment"`
}

// webhookEnvelope is the slice of the gateway webhook body the core needs.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type PaymentService interface {
	// CreateOrder registers a gateway order and a pending payment record.
	// forTrial only selects the discounted trial price for plans that offer
	// one; it never decides which ledger transition the later verification
	// applies.
	CreateOrder(ctx context.Context, subjectID string, subjectType models.SubjectType, planID string, forTrial bool) (*CreateOrderResponse, error)
	// VerifyPayment checks the checkout signature (fail-closed) and applies
	// the payment to the ledger.
	VerifyPayment(ctx context.Context, subjectID string, subjectType models.SubjectType, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error)
	// HandleWebhook processes gateway events idempotently, keyed by gateway
	// ids. Delivery order is not assumed.
	HandleWebhook(ctx context.Context, body []byte, signature string) error
	History(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.Payment, error)
}

type paymentService struct {
	gateway       *RazorpayService
	paymentRepo   repositories.PaymentRepository
	subRepo       repositories.SubscriptionRepository
	planRepo      repositories.PlanRepository
	subscriptions SubscriptionService
}

func NewPaymentService(
	gateway *RazorpayService,
	paymentRepo repositories.PaymentRepository,
	subRepo repositories.SubscriptionRepository,
	planRepo repositories.PlanRepository,
	subscriptions SubscriptionService,
) PaymentService {
	return &paymentService{
		gateway:       gateway,
		paymentRepo:   paymentRepo,
		subRepo:       subRepo,
		planRepo:      planRepo,
		subscriptions: subscriptions,
	}
}

func (s *paymentService) CreateOrder(ctx context.Context, subjectID string, subjectType models.SubjectType, planID string, forTrial bool) (*CreateOrderResponse, error) {
	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}

	amount := plan.Price
	if forTrial && plan.HasTrial {
		amount = plan.TrialPrice
	}
	amountPaise := int64(amount * 100)

	receipt := fmt.Sprintf("rcpt_%s", uuid.NewString()[:18])
	order, err := s.gateway.CreateOrder(ctx, amountPaise, plan.Currency, receipt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.CodePaymentGatewayUnavailable,
			"Could not create payment order", 502)
	}

	payment := &models.Payment{
		SubjectID:      subjectID,
		SubjectType:    subjectType,
		Amount:         amount,
		Currency:       plan.Currency,
		PaymentMethod:  "razorpay",
		GatewayOrderID: order.ID,
		Status:         models.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &CreateOrderResponse{
		Order:     order,
		PaymentID: payment.ID,
		Key:       s.gateway.KeyID(),
	}, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, subjectID string, subjectType models.SubjectType, req *VerifyPaymentRequest) (*VerifyPaymentResponse, error) {
	if !s.gateway.VerifyPaymentSignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, appErrors.ErrGatewayVerificationFailed
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, appErrors.ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.SubjectID != subjectID || payment.SubjectType != subjectType {
		return nil, appErrors.ErrForbidden
	}
	if payment.GatewayOrderID != req.RazorpayOrderID {
		return nil, appErrors.ErrGatewayVerificationFailed
	}

	// The plan and amount are checked before any state changes: a signed
	// request can still carry the wrong plan id.
	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, appErrors.ErrPlanNotFound
		}
		return nil, err
	}
	if payment.Amount != plan.Price && !(plan.HasTrial && payment.Amount == plan.TrialPrice) {
		return nil, appErrors.ErrInvalidPaymentAmount
	}

	// Ledger first. If activation fails the payment stays pending, so the
	// captured webhook can still complete it later.
	paidAt := time.Now()
	sub, err := s.subscriptions.ActivateFromPayment(ctx, subjectID, subjectType, plan.ID, paidAt)
	if err != nil {
		return nil, err
	}

	if err := s.paymentRepo.MarkCompleted(ctx, payment.ID, req.RazorpayPaymentID, paidAt); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.AttachSubscription(ctx, payment.ID, sub.ID); err != nil {
		return nil, err
	}

	payment.Status = models.PaymentStatusCompleted
	payment.GatewayPaymentID = req.RazorpayPaymentID
	payment.CompletedAt = &paidAt
	payment.SubscriptionID = &sub.ID

	return &VerifyPaymentResponse{Subscription: sub, Payment: payment}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !s.gateway.VerifyWebhookSignature(body, signature) {
		return appErrors.ErrWebhookVerificationFailed
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return appErrors.ErrValidationFailed.WithError(err)
	}

	switch envelope.Event {
	case "payment.captured":
		return s.handleCaptured(ctx, envelope)
	case "payment.failed":
		return s.handleFailed(ctx, envelope)
	default:
		// Unsubscribed event types are acknowledged and dropped.
		logger.Debug("ignoring webhook event", "event", envelope.Event)
		return nil
	}
}

func (s *paymentService) handleCaptured(ctx context.Context, envelope webhookEnvelope) error {
	entity := envelope.Payload.Payment.Entity

	payment, err := s.paymentRepo.FindByGatewayPaymentID(ctx, entity.ID)
	if appErrors.Is(err, repositories.ErrPaymentNotFound) {
		// Checkout verification may not have landed yet; fall back to the
		// order id the webhook also carries.
		payment, err = s.paymentRepo.FindByGatewayOrderID(ctx, entity.OrderID)
	}
	if err != nil {
		if appErrors.Is(err, repositories.ErrPaymentNotFound) {
			logger.Warn("webhook for unknown payment", "gateway_payment_id", entity.ID, "gateway_order_id", entity.OrderID)
			return nil
		}
		return err
	}

	if payment.Status == models.PaymentStatusCompleted {
		return nil
	}

	now := time.Now()
	if err := s.paymentRepo.MarkCompleted(ctx, payment.ID, entity.ID, now); err != nil {
		return err
	}

	if payment.SubscriptionID != nil {
		sub, err := s.subRepo.FindByID(ctx, *payment.SubscriptionID)
		if err != nil {
			return err
		}
		sub.Status = models.SubscriptionStatusActive
		sub.LastPaymentDate = &now
		return s.subRepo.Save(ctx, sub)
	}
	return nil
}

func (s *paymentService) handleFailed(ctx context.Context, envelope webhookEnvelope) error {
	entity := envelope.Payload.Payment.Entity

	payment, err := s.paymentRepo.FindByGatewayOrderID(ctx, entity.OrderID)
	if err != nil {
		if appErrors.Is(err, repositories.ErrPaymentNotFound) {
			logger.Warn("failure webhook for unknown order", "gateway_order_id", entity.OrderID)
			return nil
		}
		return err
	}
	return s.paymentRepo.MarkFailed(ctx, payment.ID)
}

func (s *paymentService) History(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.Payment, error) {
	return s.paymentRepo.FindBySubject(ctx, subjectID, subjectType)
}
