package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/safar/go-shop-api/internal/auth"
	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/store"
)

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || !strings.Contains(req.Email, "@") {
		s.respondError(w, http.StatusBadRequest, "Username and a valid email are required")
		return
	}
	if len(req.Password) < 6 {
		s.respondError(w, http.StatusBadRequest, "Password should be at least 6 characters long")
		return
	}

	hash, err := auth.HashPassword(req.Password, s.cfg.Auth.BcryptCost)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	user, err := store.CreateUser(r.Context(), s.db, req.Username, req.Email, hash, req.IsAdmin)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful.",
		"user":    user,
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.db, req.Username)
	if err != nil {
		// Do not reveal whether the username exists.
		if errors.Is(err, database.ErrUserNotFound) {
			s.respondStoreError(w, database.ErrInvalidCredentials)
			return
		}
		s.respondStoreError(w, err)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.respondStoreError(w, database.ErrInvalidCredentials)
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}

func (s *server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	caller, err := s.authenticate(r)
	if err != nil {
		s.respondStoreError(w, err)
		return
	}

	idStr := r.URL.Path[len("/users/"):]
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	// Profiles are self-service only; the admin flag grants no access here.
	if caller.UserID != id {
		s.respondStoreError(w, database.ErrForbidden)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := store.GetUser(r.Context(), s.db, id)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})

	case http.MethodPut:
		var req struct {
			Username *string `json:"username"`
			Email    *string `json:"email"`
			Password *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		update := store.UpdateUserRequest{
			Username: req.Username,
			Email:    req.Email,
		}
		if req.Password != nil {
			if len(*req.Password) < 6 {
				s.respondError(w, http.StatusBadRequest, "Password should be at least 6 characters long")
				return
			}
			hash, err := auth.HashPassword(*req.Password, s.cfg.Auth.BcryptCost)
			if err != nil {
				s.respondStoreError(w, err)
				return
			}
			update.PasswordHash = &hash
		}

		user, err := store.UpdateUser(r.Context(), s.db, id, update)
		if err != nil {
			s.respondStoreError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Profile updated successfully",
			"user":    user,
		})

	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
