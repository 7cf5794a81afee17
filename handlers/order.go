package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"

	"github.com/cafedesk/pos-backend/authz"
	"github.com/cafedesk/pos-backend/database/dbhelper"
	"github.com/cafedesk/pos-backend/middlewares"
	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/pricing"
)

// Quoter prices a cart against live catalog data.
type Quoter interface {
	Quote(ctx context.Context, items []models.CartItem) (*pricing.Quote, error)
}

// OrderLedger is the persistence surface the order handler needs.
type OrderLedger interface {
	CreateOrder(ctx context.Context, params dbhelper.CreateOrderParams) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListActive(ctx context.Context) ([]models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error)
	RateOrder(ctx context.Context, id uuid.UUID, rating int, comment *string) (*models.Order, error)
}

type OrderHandler struct {
	Ledger OrderLedger
	Pricer Quoter
}

// Create prices the cart and persists the order with its snapshots. All
// validation happens before the first write; on any failure nothing is
// persisted and resubmission is safe.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Items         []models.CartItem `json:"items"`
		Type          string            `json:"type"`
		PaymentMethod *string           `json:"payment_method"`
		Note          *string           `json:"note"`
		TableID       *uuid.UUID        `json:"table_id"`
		CashierID     *uuid.UUID        `json:"cashier_id"`
		UserID        *uuid.UUID        `json:"user_id"`
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = "PICKUP"
	}

	quote, err := h.Pricer.Quote(r.Context(), req.Items)
	if err != nil {
		if isPricingValidation(err) {
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		respondStoreError(w, err)
		return
	}

	// Orders submitted by a customer without a cashier wait for staff
	// approval; cashier-placed orders enter the queue directly.
	status := models.StatusPending
	if req.CashierID == nil {
		status = models.StatusPendingApproval
	}

	order, err := h.Ledger.CreateOrder(r.Context(), dbhelper.CreateOrderParams{
		UserID:        req.UserID,
		CashierID:     req.CashierID,
		TableID:       req.TableID,
		Type:          req.Type,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		Status:        status,
		Quote:         quote,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.Total,
	})
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Ledger.GetOrder(r.Context(), orderID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actor := authz.Actor{ID: claims.UserID, Role: claims.Role}
	if !authz.Can(actor, authz.ActionViewOrder, order.UserID) {
		respondMessage(w, http.StatusForbidden, "forbidden")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// Active lists the staff/kitchen queue: every order not yet terminal,
// newest first.
func (h *OrderHandler) Active(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Ledger.ListActive(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) MyHistory(w http.ResponseWriter, r *http.Request) {
	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orders, err := h.Ledger.ListByUser(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	type request struct {
		Status models.OrderStatus `json:"status"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.IsValid() {
		respondMessage(w, http.StatusBadRequest, "unknown status")
		return
	}

	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actor := authz.Actor{ID: claims.UserID, Role: claims.Role}
	if !authz.Can(actor, authz.ActionSetOrderStatus, nil) {
		respondMessage(w, http.StatusForbidden, "forbidden")
		return
	}

	order, err := h.Ledger.SetStatus(r.Context(), orderID, req.Status)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Rate lets the owning customer score a completed order 1-5; rating again
// overwrites the previous score.
func (h *OrderHandler) Rate(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}

	type request struct {
		Rating  int     `json:"rating"`
		Comment *string `json:"rating_comment"`
	}
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondMessage(w, http.StatusBadRequest, "rating must be between 1 and 5")
		return
	}

	order, err := h.Ledger.GetOrder(r.Context(), orderID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	claims, err := middlewares.GetAuthenticatedUser(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	actor := authz.Actor{ID: claims.UserID, Role: claims.Role}
	if !authz.Can(actor, authz.ActionRateOrder, order.UserID) {
		respondMessage(w, http.StatusForbidden, "only the order's customer may rate it")
		return
	}

	rated, err := h.Ledger.RateOrder(r.Context(), orderID, req.Rating, req.Comment)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rated)
}

func isPricingValidation(err error) bool {
	if errors.Is(err, pricing.ErrEmptyCart) {
		return true
	}
	var invalidProduct pricing.InvalidProductError
	var invalidQuantity pricing.InvalidQuantityError
	if errors.As(err, &invalidProduct) || errors.As(err, &invalidQuantity) {
		return true
	}
	var merr *multierror.Error
	return errors.As(err, &merr)
}
