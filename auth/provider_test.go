package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/storage"
	"github.com/poiesic/dashboard/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	provider *Provider
	users    storage.UserRepository
	sessions storage.SessionRepository
	admin    *core.User
	clock    *time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	userRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sessionRepo.Close()
		userRepo.Close()
		backend.Close()
	})

	hash, err := HashPassword("admin", bcrypt.MinCost)
	require.NoError(t, err)
	added, err := userRepo.AddUsers(context.Background(), &core.User{
		FullName:     "John Doe",
		Username:     "johndoe",
		Email:        "admin@vuexy.com",
		Role:         core.RoleAdmin,
		PasswordHash: hash,
	})
	require.NoError(t, err)

	clock := time.Now()
	f := &fixture{users: userRepo, sessions: sessionRepo, admin: added[0], clock: &clock}
	opts = append([]Option{WithClock(func() time.Time { return *f.clock })}, opts...)
	f.provider, err = NewProvider(userRepo, sessionRepo, opts...)
	require.NoError(t, err)
	return f
}

func TestNewProvider(t *testing.T) {
	userRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); userRepo.Close(); backend.Close() }()

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewProvider(userRepo, sessionRepo)
		require.NoError(t, err)
		assert.Equal(t, DefaultSessionTTL, p.sessionTTL)
		assert.Equal(t, DefaultRememberTTL, p.rememberTTL)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		p, err := NewProvider(userRepo, sessionRepo, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, p.logger)
	})

	t.Run("nil user repository", func(t *testing.T) {
		_, err := NewProvider(nil, sessionRepo)
		assert.Equal(t, ErrUserRepositoryRequired, err)
	})

	t.Run("nil session repository", func(t *testing.T) {
		_, err := NewProvider(userRepo, nil)
		assert.Equal(t, ErrSessionRepositoryRequired, err)
	})

	t.Run("invalid ttl", func(t *testing.T) {
		_, err := NewProvider(userRepo, sessionRepo, WithSessionTTL(0))
		assert.ErrorIs(t, err, ErrInvalidTTL)
		_, err = NewProvider(userRepo, sessionRepo, WithRememberTTL(-time.Hour))
		assert.ErrorIs(t, err, ErrInvalidTTL)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, user, err := f.provider.Login(ctx, core.Credentials{Email: "admin@vuexy.com", Password: "admin"})
	require.NoError(t, err)
	assert.Equal(t, f.admin.Id, user.Id)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, DefaultSessionTTL, session.ExpiresAt.Sub(session.CreatedAt))

	current, err := f.provider.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", current.FullName)
}

func TestLogin_RememberMe(t *testing.T) {
	f := newFixture(t, WithRememberTTL(48*time.Hour))

	session, _, err := f.provider.Login(context.Background(), core.Credentials{
		Email:      "ADMIN@vuexy.com",
		Password:   "admin",
		RememberMe: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 48*time.Hour, session.ExpiresAt.Sub(session.CreatedAt))
}

func TestLogin_Failures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		creds  core.Credentials
		field  string
		msg    string
		badPwd bool
	}{
		{"empty form", core.Credentials{}, "email", "email is a required field", false},
		{"malformed email", core.Credentials{Email: "admin", Password: "admin"}, "email", "email must be a valid email", false},
		{"short password", core.Credentials{Email: "admin@vuexy.com", Password: "adm"}, "password", "password must be at least 5 characters", false},
		{"unknown email", core.Credentials{Email: "nobody@vuexy.com", Password: "admin"}, "email", InvalidCredentialsMessage, true},
		{"wrong password", core.Credentials{Email: "admin@vuexy.com", Password: "wrong-one"}, "email", InvalidCredentialsMessage, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, user, err := f.provider.Login(ctx, tt.creds)
			require.Error(t, err)
			assert.Nil(t, session)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, core.ErrValidation)
			assert.Equal(t, tt.badPwd, errors.Is(err, ErrInvalidCredentials))

			var fields core.FieldErrors
			require.True(t, errors.As(err, &fields))
			assert.Equal(t, tt.msg, fields[tt.field])
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, _, err := f.provider.Login(ctx, core.Credentials{Email: "admin@vuexy.com", Password: "admin"})
	require.NoError(t, err)

	require.NoError(t, f.provider.Logout(ctx, session.Token))

	_, err = f.provider.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Logging out twice is harmless
	assert.NoError(t, f.provider.Logout(ctx, session.Token))
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.provider.CurrentUser(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.provider.CurrentUser(ctx, "not-a-session")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired session", func(t *testing.T) {
		f := newFixture(t)
		session, _, err := f.provider.Login(ctx, core.Credentials{Email: "admin@vuexy.com", Password: "admin"})
		require.NoError(t, err)

		*f.clock = f.clock.Add(DefaultSessionTTL)

		_, err = f.provider.CurrentUser(ctx, session.Token)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		// Expired sessions are removed on sight
		_, err = f.sessions.GetSession(ctx, session.Token)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newFixture(t)
		session, _, err := f.provider.Login(ctx, core.Credentials{Email: "admin@vuexy.com", Password: "admin"})
		require.NoError(t, err)
		require.NoError(t, f.users.DeleteUsers(ctx, f.admin.Id))

		_, err = f.provider.CurrentUser(ctx, session.Token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "S3cret"))
	assert.False(t, CheckPassword("", ""))
	assert.False(t, CheckPassword("not-a-hash", "s3cret"))
}
