package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartItemRepository implements CartItemRepository using GORM
type GormCartItemRepository struct {
	db *gorm.DB
}

// NewGormCartItemRepository creates a new GormCartItemRepository
func NewGormCartItemRepository(db *gorm.DB) *GormCartItemRepository {
	return &GormCartItemRepository{db: db}
}

// FindByID finds a cart line by its ID
func (r *GormCartItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindActiveByOwner finds all unpaid lines belonging to an identity.
// Rows are locked for the rest of the surrounding transaction so
// concurrent checkouts cannot stamp the same lines twice.
func (r *GormCartItemRepository) FindActiveByOwner(ctx context.Context, owner identity.Identity) ([]cart.CartItem, error) {
	var items []cart.CartItem
	if err := r.ownerScope(r.db.WithContext(ctx), owner).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("paid = ?", false).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindActiveByOwnerAndProduct finds the unpaid line an identity holds
// for a product, locked for the rest of the surrounding transaction.
func (r *GormCartItemRepository) FindActiveByOwnerAndProduct(ctx context.Context, owner identity.Identity, productID uuid.UUID) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.ownerScope(r.db.WithContext(ctx), owner).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("paid = ? AND product_id = ?", false, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByBasket finds all lines stamped with a basket number
func (r *GormCartItemRepository) FindByBasket(ctx context.Context, basketNo uuid.UUID) ([]cart.CartItem, error) {
	var items []cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("basket_no = ?", basketNo).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save creates or updates a cart line
func (r *GormCartItemRepository) Save(ctx context.Context, item *cart.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a cart line
func (r *GormCartItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&cart.CartItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByBasket removes every line stamped with a basket number
func (r *GormCartItemRepository) DeleteByBasket(ctx context.Context, basketNo uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&cart.CartItem{}, "basket_no = ?", basketNo).Error
}

// ownerScope narrows the query to the lines owned by an identity
func (r *GormCartItemRepository) ownerScope(query *gorm.DB, owner identity.Identity) *gorm.DB {
	if owner.IsUser() {
		return query.Where("user_id = ?", owner.UserID)
	}
	return query.Where("session_key = ?", owner.SessionKey)
}

// Ensure GormCartItemRepository implements CartItemRepository
var _ cart.CartItemRepository = (*GormCartItemRepository)(nil)
