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

// Package search ranks app-bar queries against a fixed catalog.
//
// The Ranker splits matching entries into two tiers:
//   - Exact: the lower-cased title starts with the lower-cased query
//   - Include: the title contains the query anywhere else
//
// Each tier keeps at most five entries per category, in catalog order.
// Every category then contributes its exact entries followed by its include
// entries, truncated to a per-category budget: five when a single category
// matched, three otherwise. Categories are emitted in the fixed order of
// core.Categories.
//
// An empty query is a prefix of every title, so it returns the head of the
// catalog rather than nothing.
package search
