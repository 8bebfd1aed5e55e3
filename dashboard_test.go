package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		// Verify components are initialized
		assert.NotNil(t, db.UserRepository())
		assert.NotNil(t, db.SessionRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("in memory", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemory())
		require.NoError(t, err)
		defer db.Close()
		assert.NotNil(t, db.UserRepository())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	tmpDir := t.TempDir()
	db, err := NewDatabase(tmpDir)
	require.NoError(t, err)
	require.NotNil(t, db)

	// Close the database
	err = db.Close()
	assert.NoError(t, err)
}

func TestDatabase_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := NewDatabase(dir)
	require.NoError(t, err)
	svc, err := db.NewUserService(users.WithHashCost(bcrypt.MinCost))
	require.NoError(t, err)
	created, err := svc.SeedDefaultAdmin(ctx)
	require.NoError(t, err)
	require.True(t, created)
	svc.Release()
	require.NoError(t, db.Close())

	db, err = NewDatabase(dir)
	require.NoError(t, err)
	defer db.Close()

	admin, err := db.UserRepository().FindUserByEmail(ctx, "admin@vuexy.com")
	require.NoError(t, err)
	assert.Equal(t, core.RoleAdmin, admin.Role)

	// The ID sequence continues past persisted users
	added, err := db.UserRepository().AddUsers(ctx, &core.User{Username: "second", Email: "second@example.com"})
	require.NoError(t, err)
	assert.Greater(t, added[0].Id, admin.Id)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create auth provider", func(t *testing.T) {
		provider, err := db.NewAuthProvider()
		require.NoError(t, err)
		require.NotNil(t, provider)
	})

	t.Run("can create user service", func(t *testing.T) {
		svc, err := db.NewUserService()
		require.NoError(t, err)
		require.NotNil(t, svc)
		svc.Release()
	})

	t.Run("login round trip", func(t *testing.T) {
		ctx := context.Background()
		svc, err := db.NewUserService(users.WithHashCost(bcrypt.MinCost))
		require.NoError(t, err)
		defer svc.Release()
		_, err = svc.SeedDefaultAdmin(ctx)
		require.NoError(t, err)

		provider, err := db.NewAuthProvider()
		require.NoError(t, err)
		session, user, err := provider.Login(ctx, core.Credentials{Email: "admin@vuexy.com", Password: "admin"})
		require.NoError(t, err)
		assert.Equal(t, "John Doe", user.DisplayName())

		current, err := provider.CurrentUser(ctx, session.Token)
		require.NoError(t, err)
		assert.Equal(t, user.Id, current.Id)
	})
}

func TestNewRanker(t *testing.T) {
	t.Run("built-in catalog", func(t *testing.T) {
		ranker, err := NewRanker("")
		require.NoError(t, err)
		assert.Equal(t, 7, ranker.Len())
	})

	t.Run("catalog file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- {id: 1, title: Analytics, url: /dashboards/analytics, category: dashboards}\n"), 0o644))

		ranker, err := NewRanker(path)
		require.NoError(t, err)
		assert.Equal(t, 1, ranker.Len())
		assert.Len(t, ranker.Search("ana"), 1)
	})

	t.Run("missing catalog file", func(t *testing.T) {
		_, err := NewRanker(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
