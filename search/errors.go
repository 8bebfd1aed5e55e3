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

package search

import "errors"

var (
	// ErrInvalidCatalog is returned when the catalog fails validation.
	ErrInvalidCatalog = errors.New("invalid catalog")

	// ErrInvalidBucketSize is returned for a non-positive bucket size.
	ErrInvalidBucketSize = errors.New("bucket size must be positive")

	// ErrInvalidBudget is returned for a non-positive result budget.
	ErrInvalidBudget = errors.New("budget must be positive")
)
