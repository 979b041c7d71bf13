package repositories

import (
	"context"
	"errors"
	"time"

	"collegium_backend/internal/models"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment record not found")

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	FindByGatewayPaymentID(ctx context.Context, paymentID string) (*models.Payment, error)
	FindBySubject(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.Payment, error)
	MarkCompleted(ctx context.Context, id string, gatewayPaymentID string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id string) error
	AttachSubscription(ctx context.Context, id string, subscriptionID string) error
}

type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByGatewayOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", orderID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindByGatewayPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("gateway_payment_id = ?", paymentID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) FindBySubject(ctx context.Context, subjectID string, subjectType models.SubjectType) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND subject_type = ?", subjectID, subjectType).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// MarkCompleted is idempotent: a payment already completed is left untouched
// so webhook retries and out-of-order delivery cannot downgrade state.
func (r *PaymentRepositoryImpl) MarkCompleted(ctx context.Context, id string, gatewayPaymentID string, completedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status <> ?", id, models.PaymentStatusCompleted).
		Updates(map[string]interface{}{
			"status":             models.PaymentStatusCompleted,
			"gateway_payment_id": gatewayPaymentID,
			"completed_at":       completedAt,
		}).Error
}

// MarkFailed never overwrites a completed payment.
func (r *PaymentRepositoryImpl) MarkFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Update("status", models.PaymentStatusFailed).Error
}

func (r *PaymentRepositoryImpl) AttachSubscription(ctx context.Context, id string, subscriptionID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("subscription_id", subscriptionID).Error
}
