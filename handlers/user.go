package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/utils"
)

// StaffDirectory is the account surface for admin user management.
type StaffDirectory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string, role models.Role, language string) (*models.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
}

type UserHandler struct {
	Users StaffDirectory
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// CreateStaff registers an employee or admin account.
func (h *UserHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Name     string      `json:"name"`
		Email    string      `json:"email"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "missing required fields")
		return
	}
	if req.Role == "" {
		req.Role = models.RoleStaff
	}
	if !req.Role.IsValid() {
		respondMessage(w, http.StatusBadRequest, "unknown role")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.Users.CreateUser(r.Context(), req.Name, req.Email, hashedPassword, req.Role, "en")
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var patch models.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Role != nil && !patch.Role.IsValid() {
		respondMessage(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := h.Users.UpdateUser(r.Context(), id, patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
