package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/storefront/backend/internal/domain/identity"
)

func TestNewCartItem(t *testing.T) {
	productID := uuid.New()

	t.Run("user owned line", func(t *testing.T) {
		userID := uuid.New()
		item, err := NewCartItem(identity.User(userID), productID, 2)
		require.NoError(t, err)
		require.NotNil(t, item.UserID)
		assert.Equal(t, userID, *item.UserID)
		assert.Nil(t, item.SessionKey)
		assert.Equal(t, 2, item.Quantity)
		assert.False(t, item.Paid)
		assert.Nil(t, item.BasketNo)
	})

	t.Run("guest owned line", func(t *testing.T) {
		item, err := NewCartItem(identity.Guest("sess-1"), productID, 1)
		require.NoError(t, err)
		require.NotNil(t, item.SessionKey)
		assert.Equal(t, "sess-1", *item.SessionKey)
		assert.Nil(t, item.UserID)
	})

	t.Run("invalid owner", func(t *testing.T) {
		_, err := NewCartItem(identity.Guest(""), productID, 1)
		assert.ErrorIs(t, err, identity.ErrInvalidIdentity)
	})

	t.Run("nil product", func(t *testing.T) {
		_, err := NewCartItem(identity.Guest("sess-1"), uuid.Nil, 1)
		assert.Error(t, err)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		_, err := NewCartItem(identity.Guest("sess-1"), productID, 0)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestCartItemOwner(t *testing.T) {
	userID := uuid.New()
	item, err := NewCartItem(identity.User(userID), uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, identity.User(userID), item.Owner())

	guest, err := NewCartItem(identity.Guest("sess-9"), uuid.New(), 1)
	require.NoError(t, err)
	assert.Equal(t, identity.Guest("sess-9"), guest.Owner())
}

func TestCartItemReassign(t *testing.T) {
	item, err := NewCartItem(identity.Guest("sess-1"), uuid.New(), 1)
	require.NoError(t, err)

	userID := uuid.New()
	require.NoError(t, item.Reassign(identity.User(userID)))
	require.NotNil(t, item.UserID)
	assert.Equal(t, userID, *item.UserID)
	assert.Nil(t, item.SessionKey)

	assert.Error(t, item.Reassign(identity.Guest("")))
}

func TestCartItemSetQuantity(t *testing.T) {
	item, err := NewCartItem(identity.Guest("sess-1"), uuid.New(), 1)
	require.NoError(t, err)

	require.NoError(t, item.SetQuantity(4))
	assert.Equal(t, 4, item.Quantity)

	assert.ErrorIs(t, item.SetQuantity(0), ErrInvalidQuantity)
	assert.Equal(t, 4, item.Quantity)
}

func TestCartItemBasketAndPaid(t *testing.T) {
	item, err := NewCartItem(identity.Guest("sess-1"), uuid.New(), 1)
	require.NoError(t, err)

	basketNo := uuid.New()
	item.AssignBasket(basketNo)
	require.NotNil(t, item.BasketNo)
	assert.Equal(t, basketNo, *item.BasketNo)

	item.MarkPaid()
	assert.True(t, item.Paid)
}
