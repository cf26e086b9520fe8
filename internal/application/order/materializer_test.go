package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

type matFixture struct {
	mat      *Materializer
	products *memProductRepo
	carts    *memCartRepo
	payments *memPaymentRepo
	orders   *memOrderRepo
}

func newMatFixture(t *testing.T) *matFixture {
	t.Helper()
	f := &matFixture{
		products: newMemProductRepo(),
		carts:    newMemCartRepo(),
		payments: newMemPaymentRepo(),
		orders:   newMemOrderRepo(),
	}
	scope := NewNoOpTransactionScope(f.orders, f.carts, f.products)
	f.mat = NewMaterializer(scope, f.payments, zap.NewNop())
	f.mat.recheckAttempts = 3
	f.mat.recheckDelay = time.Millisecond
	return f
}

// seedCheckout sets up a stamped basket with an open payment, the state
// Initiate leaves behind.
func (f *matFixture) seedCheckout(t *testing.T, owner identity.Identity) *payment.PaymentRecord {
	t.Helper()

	p, err := catalog.NewProduct(uuid.NewString(), "Blue Mug", decimal.NewFromFloat(19.99))
	require.NoError(t, err)
	p.StockQuantity = 10
	f.products.put(p)

	line, err := domaincart.NewCartItem(owner, p.ID, 3)
	require.NoError(t, err)
	basketNo := uuid.New()
	line.AssignBasket(basketNo)
	f.carts.put(line)

	rec, err := payment.NewPaymentRecord(owner, basketNo,
		decimal.NewFromFloat(59.97), decimal.NewFromFloat(4.50), decimal.Zero,
		payment.ShippingContact{FirstName: "Ada", LastName: "Obi", Email: "ada@example.com", Address: "1 Main St", City: "Lagos", Country: "NG"})
	require.NoError(t, err)
	require.NoError(t, rec.AttachGatewayReference("cs_test_"+basketNo.String()[:8]))
	require.NoError(t, f.payments.Save(context.Background(), rec))
	return rec
}

func TestMaterialize(t *testing.T) {
	ctx := context.Background()
	owner := identity.User(uuid.New())

	t.Run("creates order and clears basket", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)

		resp, err := f.mat.Materialize(ctx, rec.ID, "pi_123")
		require.NoError(t, err)

		assert.Equal(t, rec.ID, resp.PaymentID)
		assert.Equal(t, "PROCESSING", resp.Status)
		assert.Equal(t, "64.47", resp.Total.StringFixed(2))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Blue Mug", resp.Items[0].ProductName)
		assert.Equal(t, "19.99", resp.Items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, 3, resp.Items[0].Quantity)

		paid, err := f.payments.FindByID(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, payment.StatusPaid, paid.Status)
		assert.Equal(t, "pi_123", paid.PaymentIntentID)

		remaining, err := f.carts.FindByBasket(ctx, rec.BasketNo)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("second call returns the same order", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)

		first, err := f.mat.Materialize(ctx, rec.ID, "pi_123")
		require.NoError(t, err)
		second, err := f.mat.Materialize(ctx, rec.ID, "")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.OrderNo, second.OrderNo)
		n, err := f.orders.CountByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("regenerates the order number on collision", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)
		f.orders.orderNoCollisions = 2

		resp, err := f.mat.Materialize(ctx, rec.ID, "pi_123")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.OrderNo)
		assert.Equal(t, 3, f.orders.createCalls)

		n, err := f.orders.CountByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("gives up after bounded collision retries", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)
		f.orders.orderNoCollisions = 10

		_, err := f.mat.Materialize(ctx, rec.ID, "pi_123")
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Equal(t, orderNoRetries+1, f.orders.createCalls)
	})

	t.Run("failed payment never materializes", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)
		_, err := f.payments.MarkFailed(ctx, rec.ID, "card declined")
		require.NoError(t, err)

		_, err = f.mat.Materialize(ctx, rec.ID, "")
		assert.ErrorIs(t, err, ErrPaymentNotCompleted)

		n, err := f.orders.CountByOwner(ctx, owner)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("recovers a paid payment with no order", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)

		// a winner marked the payment paid, then crashed before inserting
		won, err := f.payments.MarkPaid(ctx, rec.ID, "pi_crash")
		require.NoError(t, err)
		require.True(t, won)

		resp, err := f.mat.Materialize(ctx, rec.ID, "")
		require.NoError(t, err)
		assert.Equal(t, rec.ID, resp.PaymentID)
		require.Len(t, resp.Items, 1)
	})

	t.Run("paid payment with no order and no basket", func(t *testing.T) {
		f := newMatFixture(t)
		rec := f.seedCheckout(t, owner)
		won, err := f.payments.MarkPaid(ctx, rec.ID, "pi_crash")
		require.NoError(t, err)
		require.True(t, won)
		require.NoError(t, f.carts.DeleteByBasket(ctx, rec.BasketNo))

		_, err = f.mat.Materialize(ctx, rec.ID, "")
		assert.ErrorIs(t, err, ErrBasketGone)
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newMatFixture(t)
		_, err := f.mat.Materialize(ctx, uuid.New(), "")
		assert.Error(t, err)
	})
}

// TestMaterializeConcurrent races the webhook and redirect paths the
// way production does and checks that exactly one order comes out.
func TestMaterializeConcurrent(t *testing.T) {
	ctx := context.Background()
	owner := identity.User(uuid.New())

	f := newMatFixture(t)
	rec := f.seedCheckout(t, owner)

	const callers = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		ids    = make(map[uuid.UUID]int)
		failed []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		intentID := ""
		if i%2 == 0 {
			intentID = "pi_123"
		}
		go func(intentID string) {
			defer wg.Done()
			resp, err := f.mat.Materialize(ctx, rec.ID, intentID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, err)
				return
			}
			ids[resp.ID]++
		}(intentID)
	}
	wg.Wait()

	require.Empty(t, failed)
	require.Len(t, ids, 1, "every caller must see the same single order")

	n, err := f.orders.CountByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	paid, err := f.payments.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, paid.Status)
}
