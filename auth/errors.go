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

package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. It always wraps a core.FieldErrors.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a token has no live session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrUserRepositoryRequired is returned when a user repository is not provided.
	ErrUserRepositoryRequired = errors.New("user repository required")

	// ErrSessionRepositoryRequired is returned when a session repository is not provided.
	ErrSessionRepositoryRequired = errors.New("session repository required")

	// ErrInvalidTTL is returned for a non-positive session lifetime.
	ErrInvalidTTL = errors.New("session ttl must be positive")
)
