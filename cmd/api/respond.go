package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safar/go-shop-api/internal/auth"
	"github.com/safar/go-shop-api/internal/database"
	"github.com/safar/go-shop-api/internal/inventory"
	"go.uber.org/zap"
)

func (s *server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Encode JSON response", zap.Error(err))
	}
}

func (s *server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps the store's error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is a storage fault: logged with detail,
// returned opaque.
func (s *server) respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrEmptyOrder),
		errors.Is(err, database.ErrInvalidQuantity),
		errors.Is(err, database.ErrInvalidTransition),
		errors.Is(err, database.ErrEmailTaken),
		errors.Is(err, database.ErrDuplicateProduct),
		errors.Is(err, inventory.ErrNonPositivePrice),
		errors.Is(err, inventory.ErrNegativeStock):
		s.respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, database.ErrInvalidCredentials),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrTokenInvalid),
		errors.Is(err, errMissingToken):
		s.respondError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, database.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrProductNotFound),
		errors.Is(err, database.ErrOrderNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, database.ErrInsufficientStock):
		s.respondError(w, http.StatusConflict, err.Error())

	default:
		s.logger.Error("Internal error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
