package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/storage"
)

type UserRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new UserRepository.
func NewUserRepository(backend *Backend) (*UserRepository, error) {
	idSeq, err := backend.GetSequence(userIDSeq)
	if err != nil {
		return nil, err
	}

	return &UserRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *UserRepository) Close() error {
	return r.idSeq.Release()
}

// AddUsers adds one or more users to storage.
func (r *UserRepository) AddUsers(ctx context.Context, users ...*core.User) ([]*core.User, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, user := range users {
			// Reads see earlier writes of this transaction, so duplicates
			// inside the batch are caught here too
			if err := ensureAbsent(tx, "email", user.Email, makeUserEmailKey); err != nil {
				return err
			}
			if err := ensureAbsent(tx, "username", user.Username, makeUserNameKey); err != nil {
				return err
			}

			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			user.Id = core.ID(nextID)

			user.InsertedAt = time.Now().UTC()
			user.UpdatedAt = user.InsertedAt

			if err := tx.Set(makeUserKey(user.Id), storage.MarshalUser(user)); err != nil {
				return err
			}
			if err := setIndex(tx, user.Email, makeUserEmailKey, user.Id); err != nil {
				return err
			}
			if err := setIndex(tx, user.Username, makeUserNameKey, user.Id); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return users, err
}

// UpdateUsers updates existing users.
func (r *UserRepository) UpdateUsers(ctx context.Context, users ...*core.User) ([]*core.User, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, user := range users {
			key := makeUserKey(user.Id)

			// Read old user to detect index changes
			old, err := readUser(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			if !strings.EqualFold(old.Email, user.Email) {
				if err := ensureAbsent(tx, "email", user.Email, makeUserEmailKey); err != nil {
					return err
				}
				if err := deleteIndex(tx, old.Email, makeUserEmailKey); err != nil {
					return err
				}
				if err := setIndex(tx, user.Email, makeUserEmailKey, user.Id); err != nil {
					return err
				}
			}
			if old.Username != user.Username {
				if err := ensureAbsent(tx, "username", user.Username, makeUserNameKey); err != nil {
					return err
				}
				if err := deleteIndex(tx, old.Username, makeUserNameKey); err != nil {
					return err
				}
				if err := setIndex(tx, user.Username, makeUserNameKey, user.Id); err != nil {
					return err
				}
			}

			user.InsertedAt = old.InsertedAt
			user.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalUser(user)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return users, err
}

// DeleteUsers removes users by their IDs.
func (r *UserRepository) DeleteUsers(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeUserKey(id)

			// Read user to get index values for cleanup
			user, err := readUser(tx, key)
			if err != nil {
				return err
			}
			if user == nil {
				return storage.ErrNotFound
			}

			if err := deleteIndex(tx, user.Email, makeUserEmailKey); err != nil {
				return err
			}
			if err := deleteIndex(tx, user.Username, makeUserNameKey); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetUser retrieves a single user by ID.
func (r *UserRepository) GetUser(ctx context.Context, id core.ID) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readUser(tx, makeUserKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListUsers returns every user ordered by ID.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*core.User, error) {
	var result []*core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = userScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				user, err := storage.UnmarshalUser(val)
				if err != nil {
					return err
				}
				result = append(result, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys sort as strings, so "usrrec:10" precedes "usrrec:2"
	slices.SortFunc(result, func(a, b *core.User) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
	return result, nil
}

// FindUserByEmail looks up a user through the email index.
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*core.User, error) {
	return r.findByIndex(makeUserEmailKey(email))
}

// FindUserByUsername looks up a user through the username index.
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*core.User, error) {
	return r.findByIndex(makeUserNameKey(username))
}

func (r *UserRepository) findByIndex(indexKey []byte) (*core.User, error) {
	var result *core.User
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(indexKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		var userID core.ID
		err = item.Value(func(val []byte) error {
			userID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readUser(tx, makeUserKey(userID))
		if err != nil {
			return err
		}
		if result == nil {
			// Dangling index entry
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// readUser returns nil, nil when the key does not exist.
func readUser(tx *badger.Txn, key []byte) (*core.User, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var user *core.User
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		user, unmarshalErr = storage.UnmarshalUser(val)
		return unmarshalErr
	})
	return user, err
}

// ensureAbsent fails with storage.ErrDuplicateKey when value is already
// indexed. Empty values are never indexed.
func ensureAbsent(tx *badger.Txn, field, value string, makeKey func(string) []byte) error {
	if value == "" {
		return nil
	}
	_, err := tx.Get(makeKey(value))
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s %q", storage.ErrDuplicateKey, field, value)
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil
	default:
		return err
	}
}

func setIndex(tx *badger.Txn, value string, makeKey func(string) []byte, id core.ID) error {
	if value == "" {
		return nil
	}
	return tx.Set(makeKey(value), storage.MarshalID(id))
}

func deleteIndex(tx *badger.Txn, value string, makeKey func(string) []byte) error {
	if value == "" {
		return nil
	}
	return tx.Delete(makeKey(value))
}
