// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
// Sessions are written with a TTL so expired tokens disappear on their own.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) *SessionRepository {
	return &SessionRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend owns the database.
func (r *SessionRepository) Close() error {
	return nil
}

// SaveSession persists a session until its ExpiresAt. Only the token's
// digest is written; session.Token is left untouched for the caller.
func (r *SessionRepository) SaveSession(ctx context.Context, session *core.Session) error {
	if err := core.ValidateSession(session); err != nil {
		return err
	}
	stored := *session
	stored.Token = ""
	stored.TokenDigest = core.DigestToken(session.Token)

	return r.backend.WithTx(func(tx *badger.Txn) error {
		entry := badger.NewEntry(makeSessionKey(session.Token), storage.MarshalSession(&stored)).
			WithTTL(session.ExpiresAt.Sub(session.CreatedAt))
		if err := tx.SetEntry(entry); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSession retrieves a session by token.
func (r *SessionRepository) GetSession(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, storage.ErrNotFound
	}

	var session *core.Session
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionKey(token))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			session, unmarshalErr = storage.UnmarshalSession(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys are 64-bit token hashes; a collision must not leak another session
	if !session.Matches(token) {
		return nil, storage.ErrNotFound
	}
	session.Token = token
	return session, nil
}

// DeleteSession removes a session by token.
func (r *SessionRepository) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(token)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
