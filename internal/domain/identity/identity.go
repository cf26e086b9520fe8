package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind distinguishes authenticated shoppers from anonymous sessions
type Kind string

const (
	KindUser  Kind = "user"
	KindGuest Kind = "guest"
)

var (
	ErrInvalidIdentity = errors.New("identity: invalid identity")
)

// Identity identifies the owner of a cart, payment, or order.
// Exactly one of UserID or SessionKey is set, depending on Kind.
type Identity struct {
	Kind       Kind
	UserID     uuid.UUID
	SessionKey string
}

// User returns an identity for an authenticated shopper
func User(userID uuid.UUID) Identity {
	return Identity{Kind: KindUser, UserID: userID}
}

// Guest returns an identity for an anonymous session
func Guest(sessionKey string) Identity {
	return Identity{Kind: KindGuest, SessionKey: sessionKey}
}

// IsUser returns true for authenticated identities
func (i Identity) IsUser() bool {
	return i.Kind == KindUser
}

// IsGuest returns true for anonymous identities
func (i Identity) IsGuest() bool {
	return i.Kind == KindGuest
}

// Validate checks that the identity carries the field its kind requires
func (i Identity) Validate() error {
	switch i.Kind {
	case KindUser:
		if i.UserID == uuid.Nil {
			return fmt.Errorf("%w: user identity requires a user id", ErrInvalidIdentity)
		}
	case KindGuest:
		if i.SessionKey == "" {
			return fmt.Errorf("%w: guest identity requires a session key", ErrInvalidIdentity)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIdentity, i.Kind)
	}
	return nil
}

// Key returns a stable string key for this identity, suitable for
// cache keys and log fields.
func (i Identity) Key() string {
	if i.IsUser() {
		return "user:" + i.UserID.String()
	}
	return "guest:" + i.SessionKey
}

// String implements fmt.Stringer
func (i Identity) String() string {
	return i.Key()
}
