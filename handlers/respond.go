package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cafedesk/pos-backend/database/dbhelper"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondStoreError maps the store error taxonomy onto HTTP statuses.
// Unexpected failures are logged and surfaced as a generic 500.
func respondStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dbhelper.ErrOrderNotFound),
		errors.Is(err, dbhelper.ErrProductNotFound),
		errors.Is(err, dbhelper.ErrCategoryNotFound),
		errors.Is(err, dbhelper.ErrTableNotFound),
		errors.Is(err, dbhelper.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dbhelper.ErrEmailExists):
		respondMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, dbhelper.ErrOrderNotCompleted),
		errors.Is(err, dbhelper.ErrNothingToUpdate):
		respondMessage(w, http.StatusBadRequest, err.Error())
	default:
		var illegal dbhelper.IllegalTransitionError
		if errors.As(err, &illegal) {
			respondMessage(w, http.StatusConflict, illegal.Error())
			return
		}
		logrus.WithError(err).Error("storage operation failed")
		respondMessage(w, http.StatusInternalServerError, "server error")
	}
}
