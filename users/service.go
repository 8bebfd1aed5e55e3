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

// Package users manages dashboard accounts: the add-user drawer, edits,
// listing, deletion and bulk imports.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/dashboard/auth"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/storage"
	"golang.org/x/crypto/bcrypt"
)

// Service validates and stores users.
type Service struct {
	repo     storage.UserRepository
	hashPool *ants.Pool
	hashCost int
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithPoolSize sets the worker pool size for password hashing during imports.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if s.hashPool != nil {
			s.hashPool.Release()
		}

		hashPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.hashPool = hashPool
		return nil
	}
}

// WithHashCost sets the bcrypt cost for imported passwords.
// Default is bcrypt.DefaultCost.
func WithHashCost(cost int) Option {
	return func(s *Service) error {
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			return fmt.Errorf("%w: %d", ErrInvalidHashCost, cost)
		}
		s.hashCost = cost
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a new user service.
func NewService(repo storage.UserRepository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrUserRepositoryRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	hashPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		repo:     repo,
		hashPool: hashPool,
		hashCost: bcrypt.DefaultCost,
		logger:   slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// Release releases the hashing pool.
// The service should not be used after calling Release.
func (s *Service) Release() {
	if s.hashPool != nil {
		s.hashPool.Release()
	}
}

// AddUser validates and stores a user submitted from the add-user drawer.
// Validation failures and duplicate emails or usernames are returned as a
// core.FieldErrors. Accounts created this way have no password.
func (s *Service) AddUser(ctx context.Context, in core.NewUser) (*core.User, error) {
	in = normalize(in)
	if err := core.ValidateNewUser(in); err != nil {
		return nil, err
	}
	if err := s.checkTaken(ctx, in, 0); err != nil {
		return nil, err
	}

	added, err := s.repo.AddUsers(ctx, newUser(in, ""))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Lost a race with a concurrent insert
			if fieldErr := s.checkTaken(ctx, in, 0); fieldErr != nil {
				return nil, fieldErr
			}
		}
		return nil, err
	}

	s.logger.Info("user added", "user_id", added[0].Id, "role", added[0].Role)
	return added[0], nil
}

// UpdateUser replaces the editable fields of an existing user with in.
// The password, status and creation time are kept, and so is the avatar
// when in has none. Errors match AddUser, plus storage.ErrNotFound for an
// unknown id.
func (s *Service) UpdateUser(ctx context.Context, id core.ID, in core.NewUser) (*core.User, error) {
	in = normalize(in)
	if err := core.ValidateNewUser(in); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTaken(ctx, in, id); err != nil {
		return nil, err
	}

	user := newUser(in, existing.PasswordHash)
	user.Id = existing.Id
	user.Status = existing.Status
	if user.Avatar == "" {
		user.Avatar = existing.Avatar
	}

	updated, err := s.repo.UpdateUsers(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			if fieldErr := s.checkTaken(ctx, in, id); fieldErr != nil {
				return nil, fieldErr
			}
		}
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "role", updated[0].Role)
	return updated[0], nil
}

// ListUsers returns every user ordered by ID.
func (s *Service) ListUsers(ctx context.Context) ([]*core.User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns a user by ID, or storage.ErrNotFound.
func (s *Service) GetUser(ctx context.Context, id core.ID) (*core.User, error) {
	return s.repo.GetUser(ctx, id)
}

// DeleteUser removes a user by ID, or returns storage.ErrNotFound.
func (s *Service) DeleteUser(ctx context.Context, id core.ID) error {
	if err := s.repo.DeleteUsers(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}

// Import validates, hashes and stores users in one transaction.
//
// Every row is checked before anything is written: rules from
// core.ValidateImportUser, duplicates against storage and duplicates within
// rows. Failing rows are reported together, each error prefixed with its
// 1-based row number, and nothing is stored.
func (s *Service) Import(ctx context.Context, rows []core.NewUser) ([]*core.User, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	normalized := make([]core.NewUser, len(rows))
	for i, row := range rows {
		normalized[i] = normalize(row)
	}

	if err := s.validateImport(ctx, normalized); err != nil {
		return nil, err
	}

	hashes, err := s.hashPasswords(ctx, normalized)
	if err != nil {
		return nil, err
	}

	users := make([]*core.User, len(normalized))
	for i, row := range normalized {
		users[i] = newUser(row, hashes[i])
	}

	added, err := s.repo.AddUsers(ctx, users...)
	if err != nil {
		return nil, err
	}

	s.logger.Info("users imported", "count", len(added))
	return added, nil
}

// FilterExisting drops rows whose email or username is already stored.
// It returns the remaining rows and how many were dropped.
func (s *Service) FilterExisting(ctx context.Context, rows []core.NewUser) ([]core.NewUser, int, error) {
	kept := make([]core.NewUser, 0, len(rows))
	for _, row := range rows {
		row = normalize(row)
		err := s.checkTaken(ctx, row, 0)
		if err == nil {
			kept = append(kept, row)
			continue
		}
		if !errors.Is(err, core.ErrValidation) {
			return nil, 0, err
		}
		s.logger.Debug("skipping existing user", "email", row.Email, "username", row.Username)
	}
	return kept, len(rows) - len(kept), nil
}

func (s *Service) validateImport(ctx context.Context, rows []core.NewUser) error {
	var errs []error
	seenEmails := make(map[string]int, len(rows))
	seenNames := make(map[string]int, len(rows))

	for i, row := range rows {
		fields := core.FieldErrors{}
		if err := core.ValidateImportUser(row); err != nil {
			var fe core.FieldErrors
			if !errors.As(err, &fe) {
				return err
			}
			fields = fe
		}

		if err := s.checkTaken(ctx, row, 0); err != nil {
			var fe core.FieldErrors
			if !errors.As(err, &fe) {
				return err
			}
			for field, msg := range fe {
				fields.Add(field, msg)
			}
		}

		email := strings.ToLower(row.Email)
		if prev, ok := seenEmails[email]; ok && email != "" {
			fields.Add("email", fmt.Sprintf("%s (row %d)", EmailTakenMessage, prev+1))
		} else {
			seenEmails[email] = i
		}
		if prev, ok := seenNames[row.Username]; ok && row.Username != "" {
			fields.Add("username", fmt.Sprintf("%s (row %d)", UsernameTakenMessage, prev+1))
		} else {
			seenNames[row.Username] = i
		}

		if err := fields.Err(); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// hashPasswords hashes every row's password on the worker pool.
func (s *Service) hashPasswords(ctx context.Context, rows []core.NewUser) ([]string, error) {
	hashes := make([]string, len(rows))
	errs := make([]error, len(rows))

	var wg sync.WaitGroup
	for i := range rows {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}

		wg.Add(1)
		submitErr := s.hashPool.Submit(func() {
			defer wg.Done()
			hashes[i], errs[i] = auth.HashPassword(rows[i].Password, s.hashCost)
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
			break
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		s.logger.Error("error hashing passwords", "err", err)
		return nil, err
	}
	return hashes, nil
}

// checkTaken reports emails and usernames held by a user other than self
// as a core.FieldErrors. A zero self matches nobody.
func (s *Service) checkTaken(ctx context.Context, in core.NewUser, self core.ID) error {
	errs := core.FieldErrors{}

	if in.Email != "" {
		holder, err := s.repo.FindUserByEmail(ctx, in.Email)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return err
		case holder.Id != self:
			errs.Add("email", EmailTakenMessage)
		}
	}

	if in.Username != "" {
		holder, err := s.repo.FindUserByUsername(ctx, in.Username)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			return err
		case holder.Id != self:
			errs.Add("username", UsernameTakenMessage)
		}
	}

	return errs.Err()
}

func normalize(in core.NewUser) core.NewUser {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Company = strings.TrimSpace(in.Company)
	in.Country = strings.TrimSpace(in.Country)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Billing = strings.TrimSpace(in.Billing)
	in.CurrentPlan = strings.TrimSpace(in.CurrentPlan)
	return in
}

func newUser(in core.NewUser, passwordHash string) *core.User {
	user := &core.User{
		FullName:     in.FullName,
		Username:     in.Username,
		Email:        in.Email,
		Company:      in.Company,
		Country:      in.Country,
		Contact:      in.Contact,
		Billing:      in.Billing,
		Role:         in.Role,
		CurrentPlan:  in.CurrentPlan,
		Approval:     in.Approval,
		Status:       core.DefaultStatus,
		Avatar:       in.Avatar,
		PasswordHash: passwordHash,
	}
	if user.Role == "" {
		user.Role = core.DefaultRole
	}
	if user.CurrentPlan == "" {
		user.CurrentPlan = core.DefaultPlan
	}
	return user
}

// SeedDefaultAdmin imports DefaultAdmin when no users exist yet.
// It reports whether the account was created.
func (s *Service) SeedDefaultAdmin(ctx context.Context) (bool, error) {
	existing, err := s.repo.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if _, err := s.Import(ctx, []core.NewUser{DefaultAdmin()}); err != nil {
		return false, err
	}
	return true, nil
}

// DefaultAdmin is the account the login form is pre-filled with.
func DefaultAdmin() core.NewUser {
	return core.NewUser{
		FullName:    "John Doe",
		Username:    "johndoe",
		Email:       "admin@vuexy.com",
		Company:     "Pixinvent",
		Country:     "USA",
		Billing:     "Auto Debit",
		Contact:     "5550000000",
		Role:        core.RoleAdmin,
		CurrentPlan: "enterprise",
		Approval:    core.ApprovalYes,
		Password:    "admin",
	}
}
