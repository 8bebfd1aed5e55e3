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

// Package server exposes the dashboard backend over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/poiesic/dashboard/auth"
	"github.com/poiesic/dashboard/search"
	"github.com/poiesic/dashboard/users"
	"github.com/rs/cors"
)

// DefaultShutdownTimeout bounds how long Run waits for open requests.
const DefaultShutdownTimeout = 10 * time.Second

// Server serves the app-bar search, authentication, navigation and user
// management endpoints.
type Server struct {
	router          *mux.Router
	handler         http.Handler
	search          search.Func
	auth            *auth.Provider
	users           *users.Service
	allowedOrigins  []string
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the origins CORS accepts.
// Default is none, which rejects cross-origin requests.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithShutdownTimeout sets how long Run waits for open requests on shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Server. The search function is usually (*search.Ranker).Func.
func New(searchFn search.Func, provider *auth.Provider, svc *users.Service, opts ...Option) *Server {
	s := &Server{
		router:          mux.NewRouter(),
		search:          searchFn,
		auth:            provider,
		users:           svc,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerRoutes()

	// Wrap the router rather than using router.Use: mux answers preflight
	// requests with 405 before middleware runs.
	c := cors.New(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.handler = c.Handler(s.router)
	return s
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/app-bar/search", s.handleSearch).Methods(http.MethodGet)

	// Auth
	s.router.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	s.router.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	s.router.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	// Navigation
	s.router.HandleFunc("/navigation/vertical", s.handleVerticalNav).Methods(http.MethodGet)
	s.router.HandleFunc("/navigation/horizontal", s.handleHorizontalNav).Methods(http.MethodGet)
	s.router.HandleFunc("/navigation/user-menu", s.handleUserMenu).Methods(http.MethodGet)

	// Users
	s.router.HandleFunc("/apps/users", s.handleListUsers).Methods(http.MethodGet)
	s.router.HandleFunc("/apps/users", s.handleAddUser).Methods(http.MethodPost)
	s.router.HandleFunc("/apps/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	s.router.HandleFunc("/apps/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)
	s.router.HandleFunc("/apps/users/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down", "err", err)
		return err
	}
	return nil
}
