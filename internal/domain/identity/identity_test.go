package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIdentity(t *testing.T) {
	id := uuid.New()
	ident := User(id)

	assert.True(t, ident.IsUser())
	assert.False(t, ident.IsGuest())
	assert.Equal(t, id, ident.UserID)
	require.NoError(t, ident.Validate())
	assert.Equal(t, "user:"+id.String(), ident.Key())
}

func TestGuestIdentity(t *testing.T) {
	ident := Guest("abc123")

	assert.True(t, ident.IsGuest())
	assert.False(t, ident.IsUser())
	assert.Equal(t, "abc123", ident.SessionKey)
	require.NoError(t, ident.Validate())
	assert.Equal(t, "guest:abc123", ident.Key())
}

func TestIdentityValidate(t *testing.T) {
	t.Run("user without id", func(t *testing.T) {
		err := User(uuid.Nil).Validate()
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("guest without session key", func(t *testing.T) {
		err := Guest("").Validate()
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("unknown kind", func(t *testing.T) {
		err := Identity{Kind: "robot"}.Validate()
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})
}
