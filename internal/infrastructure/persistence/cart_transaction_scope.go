package persistence

import (
	"context"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormCartTransactionScope implements the cart TransactionScope using GORM
// transactions.
type GormCartTransactionScope struct {
	db *gorm.DB
}

// NewGormCartTransactionScope creates a new GormCartTransactionScope
func NewGormCartTransactionScope(db *gorm.DB) *GormCartTransactionScope {
	return &GormCartTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormCartTransactionScope) Execute(ctx context.Context, fn func(repos appcart.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCartRepositories{tx: tx})
	})
}

// gormCartRepositories provides access to cart repositories within a transaction
type gormCartRepositories struct {
	tx *gorm.DB
}

// CartRepo returns the cart repository scoped to the current transaction
func (r *gormCartRepositories) CartRepo() cart.CartItemRepository {
	return NewGormCartItemRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormCartRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

var _ appcart.TransactionScope = (*GormCartTransactionScope)(nil)
var _ appcart.TransactionalRepositories = (*gormCartRepositories)(nil)
