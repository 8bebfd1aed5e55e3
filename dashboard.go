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

// Package dashboard wires storage, search, authentication and user
// management for the admin dashboard backend.
package dashboard

import (
	"log/slog"

	"github.com/poiesic/dashboard/auth"
	"github.com/poiesic/dashboard/catalog"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/search"
	"github.com/poiesic/dashboard/storage"
	"github.com/poiesic/dashboard/storage/badger"
	"github.com/poiesic/dashboard/users"
)

type Database struct {
	backend     *badger.Backend
	userRepo    storage.UserRepository
	sessionRepo storage.SessionRepository
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	inMemory bool
	logger   *slog.Logger
}

// WithInMemory keeps the database in memory. The file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory, badger.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	// Create user repository
	userRepo, err := badger.NewUserRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create session repository
	sessionRepo := badger.NewSessionRepository(backend)

	return &Database{
		backend:     backend,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		logger:      options.logger,
	}, nil
}

func (db *Database) Close() error {
	// Close repositories
	if err := db.sessionRepo.Close(); err != nil {
		db.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := db.userRepo.Close(); err != nil {
		db.logger.Error("error closing user repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) UserRepository() storage.UserRepository {
	return db.userRepo
}

func (db *Database) SessionRepository() storage.SessionRepository {
	return db.sessionRepo
}

func (db *Database) NewAuthProvider(opts ...auth.Option) (*auth.Provider, error) {
	opts = append([]auth.Option{auth.WithLogger(db.logger)}, opts...)
	return auth.NewProvider(db.userRepo, db.sessionRepo, opts...)
}

func (db *Database) NewUserService(opts ...users.Option) (*users.Service, error) {
	opts = append([]users.Option{users.WithLogger(db.logger)}, opts...)
	return users.NewService(db.userRepo, opts...)
}

// NewRanker builds a search ranker over the catalog at catalogPath, or over
// the built-in catalog when catalogPath is empty.
func NewRanker(catalogPath string, opts ...search.Option) (*search.Ranker, error) {
	var entries []core.Entry
	if catalogPath == "" {
		entries = catalog.Default()
	} else {
		var err error
		entries, err = catalog.Load(catalogPath)
		if err != nil {
			return nil, err
		}
	}
	return search.NewRanker(entries, opts...)
}
