package users

import "errors"

var (
	// ErrUserRepositoryRequired is returned when a user repository is not provided.
	ErrUserRepositoryRequired = errors.New("user repository required")

	// ErrInvalidHashCost is returned for a bcrypt cost outside the supported range.
	ErrInvalidHashCost = errors.New("invalid hash cost")
)

const (
	// EmailTakenMessage is reported on the email field for a duplicate email.
	EmailTakenMessage = "Email already exists!"
	// UsernameTakenMessage is reported on the username field for a duplicate username.
	UsernameTakenMessage = "Username already exists!"
)
