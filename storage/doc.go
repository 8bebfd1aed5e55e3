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

// Package storage provides the storage abstraction layer for the dashboard.
//
// This package defines repository interfaces that decouple storage from the
// auth and user-management services, so the BadgerDB backend can be swapped
// for an in-memory one in tests.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: transaction support and Close
//   - UserRepository: dashboard accounts, unique by email and username
//   - SessionRepository: login sessions, looked up by token
//
// Values are encoded with the MUS serializers in package core; see
// serialization.go.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	users, sessions, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer func() { sessions.Close(); users.Close(); backend.Close() }()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
