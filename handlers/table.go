package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cafedesk/pos-backend/models"
)

type TableDirectory interface {
	ListTables(ctx context.Context) ([]models.Table, error)
	UpdateTableStatus(ctx context.Context, id uuid.UUID, status string) (*models.Table, error)
}

type TableHandler struct {
	Tables TableDirectory
}

func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Tables.ListTables(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if tables == nil {
		tables = []models.Table{}
	}
	respondJSON(w, http.StatusOK, tables)
}

func (h *TableHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid table id")
		return
	}

	type request struct {
		Status string `json:"status"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		respondMessage(w, http.StatusBadRequest, "status is required")
		return
	}

	table, err := h.Tables.UpdateTableStatus(r.Context(), id, req.Status)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, table)
}
