package persistence

import (
	"context"

	appcheckout "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormCheckoutTransactionScope implements the checkout TransactionScope using
// GORM transactions. Stamping the basket and opening the payment commit as one
// unit.
type GormCheckoutTransactionScope struct {
	db *gorm.DB
}

// NewGormCheckoutTransactionScope creates a new GormCheckoutTransactionScope
func NewGormCheckoutTransactionScope(db *gorm.DB) *GormCheckoutTransactionScope {
	return &GormCheckoutTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormCheckoutTransactionScope) Execute(ctx context.Context, fn func(repos appcheckout.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCheckoutRepositories{tx: tx})
	})
}

// gormCheckoutRepositories provides access to checkout repositories within a transaction
type gormCheckoutRepositories struct {
	tx *gorm.DB
}

// CartRepo returns the cart repository scoped to the current transaction
func (r *gormCheckoutRepositories) CartRepo() cart.CartItemRepository {
	return NewGormCartItemRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormCheckoutRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// PaymentRepo returns the payment repository scoped to the current transaction
func (r *gormCheckoutRepositories) PaymentRepo() payment.PaymentRecordRepository {
	return NewGormPaymentRecordRepository(r.tx)
}

var _ appcheckout.TransactionScope = (*GormCheckoutTransactionScope)(nil)
var _ appcheckout.TransactionalRepositories = (*gormCheckoutRepositories)(nil)
