package storage

import (
	"context"

	"github.com/poiesic/dashboard/core"
)

// Repository is the lifecycle shared by every repository. Each method of
// the repositories below runs in its own transaction.
type Repository interface {
	// Close closes the repository and releases resources.
	Close() error
}

type UserRepository interface {
	Repository
	// AddUsers adds one or more users to storage in a single transaction.
	// Generates IDs from a sequence and sets InsertedAt/UpdatedAt.
	// Returns ErrDuplicateKey if an email or username is already taken,
	// including by another user in the same call.
	AddUsers(ctx context.Context, users ...*core.User) ([]*core.User, error)

	// UpdateUsers updates existing users, moving their email and username
	// indices when those change. InsertedAt is kept and UpdatedAt is set.
	// Returns ErrNotFound if any user doesn't exist and ErrDuplicateKey if
	// a new email or username is already taken.
	UpdateUsers(ctx context.Context, users ...*core.User) ([]*core.User, error)

	// DeleteUsers removes users by their IDs, along with their indices.
	// Returns ErrNotFound if any user doesn't exist.
	DeleteUsers(ctx context.Context, ids ...core.ID) error

	// GetUser retrieves a single user by ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetUser(ctx context.Context, id core.ID) (*core.User, error)

	// ListUsers returns every user ordered by ID.
	ListUsers(ctx context.Context) ([]*core.User, error)

	// FindUserByEmail looks up a user by email, ignoring case.
	// Returns ErrNotFound if no user has that email.
	FindUserByEmail(ctx context.Context, email string) (*core.User, error)

	// FindUserByUsername looks up a user by exact username.
	// Returns ErrNotFound if no user has that username.
	FindUserByUsername(ctx context.Context, username string) (*core.User, error)
}

type SessionRepository interface {
	Repository
	// SaveSession stores a session until its ExpiresAt.
	SaveSession(ctx context.Context, session *core.Session) error

	// GetSession retrieves a session by token.
	// Returns ErrNotFound if the token is unknown or has expired in storage.
	GetSession(ctx context.Context, token string) (*core.Session, error)

	// DeleteSession removes a session. Unknown tokens are not an error.
	DeleteSession(ctx context.Context, token string) error
}
