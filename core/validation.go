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

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinPasswordLength is the shortest password the login form accepts.
	MinPasswordLength = 5
	// MinNameLength applies to full names and usernames.
	MinNameLength = 3
	// MinContactDigits is the shortest accepted contact number.
	MinContactDigits = 10
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEntry validates a catalog Entry according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Category must be one of the five known categories
//
// URL and Icon are not validated.
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidEntry, entry.Id, ErrEmptyTitle)
	}

	if !entry.Category.Valid() {
		return fmt.Errorf("%w: id %d: %w", ErrInvalidEntry, entry.Id, ErrUnknownCategory)
	}

	return nil
}

// ValidateCatalog validates every entry and rejects duplicate ids.
func ValidateCatalog(entries []Entry) error {
	seen := make(map[int]struct{}, len(entries))
	for i := range entries {
		if err := ValidateEntry(&entries[i]); err != nil {
			return err
		}
		if _, ok := seen[entries[i].Id]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateEntryID, entries[i].Id)
		}
		seen[entries[i].Id] = struct{}{}
	}
	return nil
}

// ValidateRole validates that a Role has a known value.
func ValidateRole(role Role) error {
	switch role {
	case RoleAdmin, RoleAuthor, RoleEditor, RoleMaintainer, RoleSubscriber:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
}

// IsValidEmail checks that s looks like an email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateCredentials validates the login form.
//
// Validation rules:
//   - email is required and must look like an address
//   - password is required and at least MinPasswordLength characters
//
// The returned error, if any, is a FieldErrors.
func ValidateCredentials(creds Credentials) error {
	errs := FieldErrors{}

	switch {
	case creds.Email == "":
		errs.Add("email", "email is a required field")
	case !IsValidEmail(creds.Email):
		errs.Add("email", "email must be a valid email")
	}

	switch {
	case creds.Password == "":
		errs.Add("password", "password is a required field")
	case utf8.RuneCountInString(creds.Password) < MinPasswordLength:
		errs.Add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	return errs.Err()
}

// ValidateNewUser validates the add-user form.
//
// Validation rules:
//   - fullName and username are required, at least MinNameLength characters
//   - email is required and must look like an address
//   - contact is required, digits only, at least MinContactDigits long
//   - role, when set, must be known
//   - company, billing and country are required free text
//   - approval, when set, must be yes or no
//
// The returned error, if any, is a FieldErrors.
func ValidateNewUser(user NewUser) error {
	errs := FieldErrors{}

	checkLength(errs, "fullName", "First Name", user.FullName, MinNameLength)
	checkLength(errs, "username", "Username", user.Username, MinNameLength)

	switch {
	case user.Email == "":
		errs.Add("email", "email is a required field")
	case !IsValidEmail(user.Email):
		errs.Add("email", "email must be a valid email")
	}

	for _, field := range []struct{ name, value string }{
		{"company", user.Company},
		{"billing", user.Billing},
		{"country", user.Country},
	} {
		if strings.TrimSpace(field.value) == "" {
			errs.Add(field.name, field.name+" is a required field")
		}
	}

	contact := strings.TrimSpace(user.Contact)
	switch {
	case contact == "" || !isDigits(contact):
		errs.Add("contact", "Contact Number field is required")
	case len(contact) < MinContactDigits:
		errs.Add("contact", fmt.Sprintf("Contact Number must be at least %d characters", MinContactDigits))
	}

	if user.Role != "" {
		if err := ValidateRole(user.Role); err != nil {
			errs.Add("role", "role must be one of admin, author, editor, maintainer, subscriber")
		}
	}

	if user.Approval != ApprovalUnset && user.Approval != ApprovalYes && user.Approval != ApprovalNo {
		errs.Add("approval", "approval must be yes or no")
	}

	return errs.Err()
}

// ValidateImportUser validates a bulk import row: the add-user rules plus a
// password the account can log in with.
func ValidateImportUser(user NewUser) error {
	errs := FieldErrors{}
	if err := ValidateNewUser(user); err != nil {
		errs = err.(FieldErrors)
	}
	switch {
	case user.Password == "":
		errs.Add("password", "password is a required field")
	case utf8.RuneCountInString(user.Password) < MinPasswordLength:
		errs.Add("password", fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return errs.Err()
}

// ValidateSession validates a Session before it is stored.
func ValidateSession(session *Session) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", ErrInvalidSession)
	}
	if session.Token == "" {
		return fmt.Errorf("%w: token is empty", ErrInvalidSession)
	}
	if session.UserId == 0 {
		return fmt.Errorf("%w: user id is zero", ErrInvalidSession)
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		return fmt.Errorf("%w: expires before it is created", ErrInvalidSession)
	}
	return nil
}

func checkLength(errs FieldErrors, field, label, value string, minLen int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n == 0:
		errs.Add(field, label+" field is required")
	case n < minLen:
		errs.Add(field, fmt.Sprintf("%s must be at least %d characters", label, minLen))
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
