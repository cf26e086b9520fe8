package persistence

import (
	"context"

	apporder "github.com/storefront/backend/internal/application/order"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormOrderTransactionScope implements the order TransactionScope using GORM
// transactions. Creating the order and clearing the basket commit as one unit.
type GormOrderTransactionScope struct {
	db *gorm.DB
}

// NewGormOrderTransactionScope creates a new GormOrderTransactionScope
func NewGormOrderTransactionScope(db *gorm.DB) *GormOrderTransactionScope {
	return &GormOrderTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormOrderTransactionScope) Execute(ctx context.Context, fn func(repos apporder.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormOrderRepositories{tx: tx})
	})
}

// gormOrderRepositories provides access to materialization repositories within a transaction
type gormOrderRepositories struct {
	tx *gorm.DB
}

// OrderRepo returns the order repository scoped to the current transaction
func (r *gormOrderRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// CartRepo returns the cart repository scoped to the current transaction
func (r *gormOrderRepositories) CartRepo() cart.CartItemRepository {
	return NewGormCartItemRepository(r.tx)
}

// ProductRepo returns the product repository scoped to the current transaction
func (r *gormOrderRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

var _ apporder.TransactionScope = (*GormOrderTransactionScope)(nil)
var _ apporder.TransactionalRepositories = (*gormOrderRepositories)(nil)
