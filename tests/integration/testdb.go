// Package integration exercises the storefront through its HTTP surface
// against a real database, with only the payment gateway faked.
package integration

import (
	"testing"

	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	domainorder "github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens an in-memory SQLite database with the full storefront
// schema migrated. The connection is closed when the test finishes.
func NewTestDB(t *testing.T) *persistence.Database {
	t.Helper()

	db, err := persistence.NewSQLiteDatabase()
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.DB.AutoMigrate(
		&catalog.Product{},
		&domaincart.CartItem{},
		&payment.PaymentRecord{},
		&domainorder.Order{},
		&domainorder.OrderItem{},
		&domainorder.StatusChange{},
	), "Failed to migrate test schema")

	return db
}
