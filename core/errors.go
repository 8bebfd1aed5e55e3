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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates a catalog Entry failed validation.
	ErrInvalidEntry = errors.New("invalid catalog entry")

	// ErrEmptyTitle indicates the entry Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrUnknownCategory indicates a category outside the fixed five.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrDuplicateEntryID indicates two catalog entries share an id.
	ErrDuplicateEntryID = errors.New("duplicate entry id")

	// ErrValidation is matched by every FieldErrors value.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidRole indicates a Role outside the known set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidSession indicates a Session failed validation.
	ErrInvalidSession = errors.New("invalid session")
)
