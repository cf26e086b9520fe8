package checkout

import (
	"context"

	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/payment"
)

// TransactionScope provides transactional access to the repositories a
// checkout touches. Stamping the basket and opening the payment must
// commit or roll back as one unit.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to checkout repositories
// within a transaction
type TransactionalRepositories interface {
	// CartRepo returns the cart repository scoped to the current transaction
	CartRepo() cart.CartItemRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// PaymentRepo returns the payment repository scoped to the current transaction
	PaymentRepo() payment.PaymentRecordRepository
}

// NoOpTransactionScope runs functions without a real transaction
type NoOpTransactionScope struct {
	cartRepo    cart.CartItemRepository
	productRepo catalog.ProductRepository
	paymentRepo payment.PaymentRecordRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	cartRepo cart.CartItemRepository,
	productRepo catalog.ProductRepository,
	paymentRepo payment.PaymentRecordRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// CartRepo returns the cart repository
func (s *NoOpTransactionScope) CartRepo() cart.CartItemRepository {
	return s.cartRepo
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// PaymentRepo returns the payment repository
func (s *NoOpTransactionScope) PaymentRepo() payment.PaymentRecordRepository {
	return s.paymentRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
