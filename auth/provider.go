// Package auth implements the login, logout and current-user operations the
// dashboard UI authenticates against.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/storage"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultSessionTTL is how long a plain login lasts.
	DefaultSessionTTL = 24 * time.Hour
	// DefaultRememberTTL is how long a "remember me" login lasts.
	DefaultRememberTTL = 30 * 24 * time.Hour

	// InvalidCredentialsMessage is reported on the email field when the
	// email is unknown or the password is wrong.
	InvalidCredentialsMessage = "Email or Password is invalid"
)

// Provider authenticates users and tracks their sessions.
type Provider struct {
	users       storage.UserRepository
	sessions    storage.SessionRepository
	sessionTTL  time.Duration
	rememberTTL time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSessionTTL sets the lifetime of a plain login.
// Default is DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(p *Provider) error {
		if ttl <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
		}
		p.sessionTTL = ttl
		return nil
	}
}

// WithRememberTTL sets the lifetime of a "remember me" login.
// Default is DefaultRememberTTL.
func WithRememberTTL(ttl time.Duration) Option {
	return func(p *Provider) error {
		if ttl <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidTTL, ttl)
		}
		p.rememberTTL = ttl
		return nil
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) error {
		if now == nil {
			now = time.Now
		}
		p.now = now
		return nil
	}
}

// NewProvider creates a new authentication provider.
func NewProvider(users storage.UserRepository, sessions storage.SessionRepository, opts ...Option) (*Provider, error) {
	if users == nil {
		return nil, ErrUserRepositoryRequired
	}
	if sessions == nil {
		return nil, ErrSessionRepositoryRequired
	}

	p := &Provider{
		users:       users,
		sessions:    sessions,
		sessionTTL:  DefaultSessionTTL,
		rememberTTL: DefaultRememberTTL,
		now:         time.Now,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Login checks creds and opens a session.
//
// Malformed credentials return the core.FieldErrors from
// core.ValidateCredentials. An unknown email or a wrong password returns
// ErrInvalidCredentials wrapping a core.FieldErrors for the email field.
func (p *Provider) Login(ctx context.Context, creds core.Credentials) (*core.Session, *core.User, error) {
	if err := core.ValidateCredentials(creds); err != nil {
		return nil, nil, err
	}

	user, err := p.users.FindUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			p.logger.Debug("login for unknown email")
			return nil, nil, invalidCredentials()
		}
		return nil, nil, err
	}

	if !CheckPassword(user.PasswordHash, creds.Password) {
		p.logger.Debug("login with wrong password", "user_id", user.Id)
		return nil, nil, invalidCredentials()
	}

	ttl := p.sessionTTL
	if creds.RememberMe {
		ttl = p.rememberTTL
	}
	now := p.now().UTC()
	session := &core.Session{
		Token:     uuid.NewString(),
		UserId:    user.Id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := p.sessions.SaveSession(ctx, session); err != nil {
		p.logger.Error("error saving session", "user_id", user.Id, "err", err)
		return nil, nil, err
	}

	p.logger.Info("user logged in", "user_id", user.Id, "expires_at", session.ExpiresAt)
	return session, user, nil
}

// Logout ends the session for token. Unknown tokens are ignored.
func (p *Provider) Logout(ctx context.Context, token string) error {
	return p.sessions.DeleteSession(ctx, token)
}

// CurrentUser returns the user owning token's session.
// Returns ErrUnauthenticated if the session is missing or expired, or its
// user no longer exists.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*core.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	session, err := p.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if session.Expired(p.now()) {
		if err := p.sessions.DeleteSession(ctx, token); err != nil {
			p.logger.Warn("error deleting expired session", "err", err)
		}
		return nil, ErrUnauthenticated
	}

	user, err := p.users.GetUser(ctx, session.UserId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// HashPassword hashes password with bcrypt at the given cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches a bcrypt hash.
// An empty hash never matches.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func invalidCredentials() error {
	return fmt.Errorf("%w: %w", ErrInvalidCredentials, core.FieldErrors{"email": InvalidCredentialsMessage})
}
