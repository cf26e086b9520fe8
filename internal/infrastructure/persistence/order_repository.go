package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create inserts a new order with its items. The unique index on payment_id
// turns a duplicate insert into shared.ErrAlreadyExists, which materialization
// treats as "someone else already created this order".
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds an order with its items and status history
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.preloaded(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByPaymentID finds the order materialized for a payment
func (r *GormOrderRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.preloaded(ctx).First(&o, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNo finds an order by its display number
func (r *GormOrderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var o order.Order
	if err := r.preloaded(ctx).First(&o, "order_no = ?", orderNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOwner lists an identity's orders, newest first
func (r *GormOrderRepository) FindByOwner(ctx context.Context, owner identity.Identity, filter shared.Filter) ([]order.Order, error) {
	var orders []order.Order
	query := r.ownerScope(r.preloaded(ctx), owner)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByOwner counts an identity's orders
func (r *GormOrderRepository) CountByOwner(ctx context.Context, owner identity.Identity) (int64, error) {
	var count int64
	if err := r.ownerScope(r.db.WithContext(ctx).Model(&order.Order{}), owner).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save updates an existing order and appends new status changes
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(o).Error
}

// preloaded returns a query with items and status history preloaded
func (r *GormOrderRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusChanges", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// ownerScope narrows the query to the orders owned by an identity
func (r *GormOrderRepository) ownerScope(query *gorm.DB, owner identity.Identity) *gorm.DB {
	if owner.IsUser() {
		return query.Where("user_id = ?", owner.UserID)
	}
	return query.Where("session_key = ?", owner.SessionKey)
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
