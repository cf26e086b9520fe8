package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.PaymentRecord, error) {
	var record payment.PaymentRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByGatewayReference finds a payment by its gateway session id
func (r *GormPaymentRecordRepository) FindByGatewayReference(ctx context.Context, sessionID string) (*payment.PaymentRecord, error) {
	var record payment.PaymentRecord
	if err := r.db.WithContext(ctx).
		First(&record, "gateway_reference = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByBasket finds the payment opened for a basket
func (r *GormPaymentRecordRepository) FindByBasket(ctx context.Context, basketNo uuid.UUID) (*payment.PaymentRecord, error) {
	var record payment.PaymentRecord
	if err := r.db.WithContext(ctx).
		Where("basket_no = ?", basketNo).
		Order("created_at DESC").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindLatestUnpaid finds the most recently opened INITIATED payment for an identity
func (r *GormPaymentRecordRepository) FindLatestUnpaid(ctx context.Context, owner identity.Identity) (*payment.PaymentRecord, error) {
	var record payment.PaymentRecord
	query := r.db.WithContext(ctx).Where("status = ?", payment.StatusInitiated)
	if owner.IsUser() {
		query = query.Where("user_id = ?", owner.UserID)
	} else {
		query = query.Where("session_key = ?", owner.SessionKey)
	}
	if err := query.Order("created_at DESC").First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save creates or updates a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *payment.PaymentRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// MarkPaid atomically moves an INITIATED payment to PAID. The WHERE clause on
// status makes concurrent callers race on a single row update; exactly one
// observes RowsAffected == 1.
func (r *GormPaymentRecordRepository) MarkPaid(ctx context.Context, id uuid.UUID, paymentIntentID string) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&payment.PaymentRecord{}).
		Where("id = ? AND status = ?", id, payment.StatusInitiated).
		Updates(map[string]interface{}{
			"status":            payment.StatusPaid,
			"payment_intent_id": paymentIntentID,
			"paid_at":           now,
			"updated_at":        now,
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkFailed atomically moves an INITIATED payment to FAILED
func (r *GormPaymentRecordRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&payment.PaymentRecord{}).
		Where("id = ? AND status = ?", id, payment.StatusInitiated).
		Updates(map[string]interface{}{
			"status":         payment.StatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Ensure GormPaymentRecordRepository implements PaymentRecordRepository
var _ payment.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
