package users

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/dashboard/auth"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/storage"
	"github.com/poiesic/dashboard/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T, opts ...Option) (*Service, storage.UserRepository) {
	t.Helper()

	userRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	opts = append([]Option{WithHashCost(bcrypt.MinCost)}, opts...)
	svc, err := NewService(userRepo, opts...)
	require.NoError(t, err)

	t.Cleanup(func() {
		svc.Release()
		sessionRepo.Close()
		userRepo.Close()
		backend.Close()
	})
	return svc, userRepo
}

func validNewUser(name string) core.NewUser {
	return core.NewUser{
		FullName: "Test " + name,
		Username: name,
		Email:    name + "@example.com",
		Company:  "Acme",
		Billing:  "Auto Debit",
		Country:  "Turkey",
		Contact:  "5551234567",
	}
}

func fieldErrors(t *testing.T, err error) core.FieldErrors {
	t.Helper()
	var fe core.FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestNewService(t *testing.T) {
	userRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { sessionRepo.Close(); userRepo.Close(); backend.Close() }()

	t.Run("valid configuration", func(t *testing.T) {
		svc, err := NewService(userRepo)
		require.NoError(t, err)
		defer svc.Release()
		assert.Equal(t, bcrypt.DefaultCost, svc.hashCost)
	})

	t.Run("with pool size", func(t *testing.T) {
		svc, err := NewService(userRepo, WithPoolSize(3))
		require.NoError(t, err)
		defer svc.Release()
		assert.Equal(t, 3, svc.hashPool.Cap())
	})

	t.Run("pool size floors at one", func(t *testing.T) {
		svc, err := NewService(userRepo, WithPoolSize(0))
		require.NoError(t, err)
		defer svc.Release()
		assert.Equal(t, 1, svc.hashPool.Cap())
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewService(nil)
		assert.Equal(t, ErrUserRepositoryRequired, err)
	})

	t.Run("bad hash cost", func(t *testing.T) {
		_, err := NewService(userRepo, WithHashCost(bcrypt.MaxCost+1))
		assert.ErrorIs(t, err, ErrInvalidHashCost)
	})
}

func TestAddUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, core.NewUser{
		FullName: "  Jane Roe ",
		Username: "janeroe",
		Email:    "jane@example.com",
		Company:  "Acme",
		Billing:  "Manual Paypal",
		Contact:  "5551234567",
		Country:  "Turkey",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.Id)
	assert.Equal(t, "Jane Roe", user.FullName)
	assert.Equal(t, core.DefaultRole, user.Role)
	assert.Equal(t, core.DefaultPlan, user.CurrentPlan)
	assert.Equal(t, core.DefaultStatus, user.Status)
	assert.Empty(t, user.PasswordHash)

	got, err := svc.GetUser(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, "Turkey", got.Country)
}

func TestAddUser_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddUser(context.Background(), core.NewUser{
		FullName: "Jo",
		Username: "",
		Email:    "not-an-email",
		Contact:  "12345",
	})
	require.ErrorIs(t, err, core.ErrValidation)

	fe := fieldErrors(t, err)
	assert.Equal(t, "First Name must be at least 3 characters", fe["fullName"])
	assert.Equal(t, "Username field is required", fe["username"])
	assert.Equal(t, "email must be a valid email", fe["email"])
	assert.Equal(t, "Contact Number must be at least 10 characters", fe["contact"])
	assert.Equal(t, "company is a required field", fe["company"])
}

func TestAddUser_RequiresCompanyBillingCountry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := validNewUser("nocompany")
	in.Company, in.Billing, in.Country = "", "", "  "

	_, err := svc.AddUser(ctx, in)
	fe := fieldErrors(t, err)
	assert.Equal(t, core.FieldErrors{
		"company": "company is a required field",
		"billing": "billing is a required field",
		"country": "country is a required field",
	}, fe)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddUser_Duplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddUser(ctx, validNewUser("alice"))
	require.NoError(t, err)

	t.Run("email", func(t *testing.T) {
		in := validNewUser("alice2")
		in.Email = "Alice@Example.com"
		_, err := svc.AddUser(ctx, in)
		fe := fieldErrors(t, err)
		assert.Equal(t, core.FieldErrors{"email": EmailTakenMessage}, fe)
	})

	t.Run("username", func(t *testing.T) {
		in := validNewUser("alice")
		in.Email = "someone@example.com"
		_, err := svc.AddUser(ctx, in)
		fe := fieldErrors(t, err)
		assert.Equal(t, core.FieldErrors{"username": UsernameTakenMessage}, fe)
	})

	t.Run("both", func(t *testing.T) {
		_, err := svc.AddUser(ctx, validNewUser("alice"))
		fe := fieldErrors(t, err)
		assert.Equal(t, EmailTakenMessage, fe["email"])
		assert.Equal(t, UsernameTakenMessage, fe["username"])
	})
}

func TestUpdateUser(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	row := validNewUser("alice")
	row.Password = "secret123"
	row.Avatar = "/images/avatars/1.png"
	imported, err := svc.Import(ctx, []core.NewUser{row})
	require.NoError(t, err)
	alice := imported[0]

	bob, err := svc.AddUser(ctx, validNewUser("bob"))
	require.NoError(t, err)

	t.Run("replaces fields and keeps the password", func(t *testing.T) {
		in := validNewUser("alice")
		in.FullName = "Alice Liddell"
		in.Email = "liddell@example.com"
		in.Company = "Wonderland"
		in.Role = core.RoleEditor

		updated, err := svc.UpdateUser(ctx, alice.Id, in)
		require.NoError(t, err)
		assert.Equal(t, alice.Id, updated.Id)
		assert.Equal(t, "Alice Liddell", updated.FullName)
		assert.Equal(t, core.RoleEditor, updated.Role)
		assert.Equal(t, "/images/avatars/1.png", updated.Avatar)

		stored, err := repo.GetUser(ctx, alice.Id)
		require.NoError(t, err)
		assert.Equal(t, "Wonderland", stored.Company)
		assert.Equal(t, alice.Status, stored.Status)
		assert.True(t, stored.InsertedAt.Equal(alice.InsertedAt))
		assert.True(t, auth.CheckPassword(stored.PasswordHash, "secret123"))

		// The email index follows the change
		found, err := repo.FindUserByEmail(ctx, "liddell@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.Id, found.Id)
		_, err = repo.FindUserByEmail(ctx, "alice@example.com")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("keeping its own email and username", func(t *testing.T) {
		in := validNewUser("bob")
		in.Country = "Canada"
		updated, err := svc.UpdateUser(ctx, bob.Id, in)
		require.NoError(t, err)
		assert.Equal(t, "Canada", updated.Country)
	})

	t.Run("taken by another user", func(t *testing.T) {
		in := validNewUser("bob")
		_, err := svc.UpdateUser(ctx, alice.Id, in)
		fe := fieldErrors(t, err)
		assert.Equal(t, core.FieldErrors{"email": EmailTakenMessage, "username": UsernameTakenMessage}, fe)

		stored, err := repo.GetUser(ctx, alice.Id)
		require.NoError(t, err)
		assert.Equal(t, "alice", stored.Username)
	})

	t.Run("validation", func(t *testing.T) {
		in := validNewUser("alice")
		in.Billing = ""
		_, err := svc.UpdateUser(ctx, alice.Id, in)
		fe := fieldErrors(t, err)
		assert.Equal(t, "billing is a required field", fe["billing"])
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, 9999, validNewUser("carol"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestListAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"aaa", "bbb", "ccc"} {
		_, err := svc.AddUser(ctx, validNewUser(name))
		require.NoError(t, err)
	}

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "aaa", list[0].Username)

	require.NoError(t, svc.DeleteUser(ctx, list[1].Id))
	assert.ErrorIs(t, svc.DeleteUser(ctx, list[1].Id), storage.ErrNotFound)

	list, err = svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImport(t *testing.T) {
	svc, repo := newTestService(t, WithPoolSize(4))
	ctx := context.Background()

	rows := make([]core.NewUser, 0, 6)
	for i := range 6 {
		row := validNewUser(fmt.Sprintf("imported%d", i))
		row.Password = fmt.Sprintf("secret-%d", i)
		rows = append(rows, row)
	}
	rows[0].Role = core.RoleEditor

	added, err := svc.Import(ctx, rows)
	require.NoError(t, err)
	require.Len(t, added, 6)
	assert.Equal(t, core.RoleEditor, added[0].Role)

	for i, user := range added {
		stored, err := repo.GetUser(ctx, user.Id)
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(stored.PasswordHash, fmt.Sprintf("secret-%d", i)), "row %d", i)
	}
}

func TestImport_RejectsWholeBatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddUser(ctx, validNewUser("taken"))
	require.NoError(t, err)

	good := validNewUser("fresh")
	good.Password = "password"
	noPassword := validNewUser("nopass")
	existing := validNewUser("taken")
	existing.Password = "password"
	twin := validNewUser("fresh")
	twin.Username = "fresh2"
	twin.Password = "password"

	_, err = svc.Import(ctx, []core.NewUser{good, noPassword, existing, twin})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.NotContains(t, err.Error(), "row 1:")
	assert.Contains(t, err.Error(), "row 2: ")
	assert.Contains(t, err.Error(), "password is a required field")
	assert.Contains(t, err.Error(), "row 3: ")
	assert.Contains(t, err.Error(), "row 4: ")
	assert.Contains(t, err.Error(), EmailTakenMessage+" (row 1)")

	// Nothing was written
	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestImport_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	added, err := svc.Import(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, added)
}

func TestImport_CanceledContext(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	row := validNewUser("late")
	row.Password = "password"

	// Hashing stops on a canceled context
	cancel()
	_, err := svc.Import(ctx, []core.NewUser{row})
	assert.Error(t, err)
}

func TestFilterExisting(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddUser(ctx, validNewUser("old"))
	require.NoError(t, err)

	byName := validNewUser("old")
	byName.Email = "different@example.com"

	kept, skipped, err := svc.FilterExisting(ctx, []core.NewUser{
		validNewUser("old"),
		byName,
		validNewUser("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, kept, 1)
	assert.Equal(t, "new", kept[0].Username)
}

func TestSeedDefaultAdmin(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	created, err := svc.SeedDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	admin, err := repo.FindUserByEmail(ctx, "admin@vuexy.com")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "admin"))

	created, err = svc.SeedDefaultAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDefaultAdmin(t *testing.T) {
	admin := DefaultAdmin()
	assert.NoError(t, core.ValidateImportUser(admin))
	assert.Equal(t, "admin@vuexy.com", admin.Email)
	assert.Equal(t, core.RoleAdmin, admin.Role)
}
