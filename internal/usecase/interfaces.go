package usecase

import (
	"context"

	"servicemarket/internal/domain/entity"
)

// Identity is who a bearer token belongs to.
type Identity struct {
	UserID string
	Role   entity.Role
}

// IdentityProvider issues and verifies bearer tokens. Implementations live
// in infrastructure/token (local HS256) and infrastructure/firebase.
type IdentityProvider interface {
	// CreateIdentity registers the user with the provider and returns the id
	// the user record must be stored under.
	CreateIdentity(ctx context.Context, user *entity.User, password string) (string, error)
	DeleteIdentity(ctx context.Context, userID string) error
	IssueToken(ctx context.Context, userID string, role entity.Role) (string, error)
	VerifyToken(ctx context.Context, token string) (*Identity, error)
}

// Broadcaster fans a persisted message out to live listeners.
// Publish must not block on slow listeners.
type Broadcaster interface {
	Publish(message *entity.Message) error
}

type MessageLimiter interface {
	Allow(userID string) bool
}
