package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/poiesic/dashboard/auth"
	"github.com/poiesic/dashboard/core"
	"github.com/poiesic/dashboard/navigation"
	"github.com/poiesic/dashboard/storage"
)

// userData is the account shape the UI stores after login.
type userData struct {
	Id          core.ID       `json:"id"`
	FullName    string        `json:"fullName"`
	Username    string        `json:"username"`
	Email       string        `json:"email"`
	Role        core.Role     `json:"role"`
	Avatar      string        `json:"avatar"`
	CurrentPlan string        `json:"currentPlan"`
	Status      string        `json:"status"`
	Company     string        `json:"company"`
	Country     string        `json:"country"`
	Contact     string        `json:"contact"`
	Billing     string        `json:"billing"`
	Approval    core.Approval `json:"approval"`
	DisplayName string        `json:"displayName"`
	Initials    string        `json:"initials"`
}

func toUserData(u *core.User) userData {
	name := u.DisplayName()
	return userData{
		Id:          u.Id,
		FullName:    u.FullName,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Avatar:      u.Avatar,
		CurrentPlan: u.CurrentPlan,
		Status:      u.Status,
		Company:     u.Company,
		Country:     u.Country,
		Contact:     u.Contact,
		Billing:     u.Billing,
		Approval:    u.Approval,
		DisplayName: name,
		Initials:    core.Initials(name),
	}
}

type loginResponse struct {
	AccessToken string   `json:"accessToken"`
	UserData    userData `json:"userData"`
}

type meResponse struct {
	UserData userData `json:"userData"`
}

type errorResponse struct {
	Error  string           `json:"error,omitempty"`
	Errors core.FieldErrors `json:"errors,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	results := s.search(r.Context(), r.URL.Query().Get("q"))
	if results == nil {
		results = []core.Entry{}
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds core.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, user, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: session.Token,
		UserData:    toUserData(user),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.CurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, meResponse{UserData: toUserData(user)})
}

func (s *Server) handleVerticalNav(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, navigation.Vertical())
}

func (s *Server) handleHorizontalNav(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, navigation.Horizontal())
}

func (s *Server) handleUserMenu(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, navigation.UserMenu())
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]userData, len(list))
	for i, user := range list {
		out[i] = toUserData(user)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var in core.NewUser
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	// The drawer never sets a password
	in.Password = ""

	user, err := s.users.AddUser(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toUserData(user))
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}
	user, err := s.users.GetUser(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserData(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}
	var in core.NewUser
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	in.Password = ""

	user, err := s.users.UpdateUser(r.Context(), id, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toUserData(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		return
	}
	if err := s.users.DeleteUser(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps service errors onto status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var fields core.FieldErrors
	switch {
	case errors.As(err, &fields):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Errors: fields})
	case errors.Is(err, auth.ErrUnauthenticated):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
	case errors.Is(err, storage.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
	default:
		s.logger.Error("request failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("error writing response", "err", err)
	}
}

func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func pathID(r *http.Request) (core.ID, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return core.ID(id), true
}
