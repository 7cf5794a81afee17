package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafedesk/pos-backend/database/dbhelper"
	"github.com/cafedesk/pos-backend/middlewares"
	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/pricing"
)

type fakeQuoter struct {
	quote *pricing.Quote
	err   error
}

func (f *fakeQuoter) Quote(context.Context, []models.CartItem) (*pricing.Quote, error) {
	return f.quote, f.err
}

// fakeLedger implements OrderLedger; it records the params it was called
// with and replays canned results.
type fakeLedger struct {
	created      *dbhelper.CreateOrderParams
	order        *models.Order
	orders       []models.Order
	err          error
	rateErr      error
	statusCalled *models.OrderStatus
}

func (f *fakeLedger) CreateOrder(_ context.Context, params dbhelper.CreateOrderParams) (*models.Order, error) {
	f.created = &params
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeLedger) GetOrder(context.Context, uuid.UUID) (*models.Order, error) {
	return f.order, f.err
}

func (f *fakeLedger) ListActive(context.Context) ([]models.Order, error) {
	return f.orders, f.err
}

func (f *fakeLedger) ListByUser(context.Context, uuid.UUID) ([]models.Order, error) {
	return f.orders, f.err
}

func (f *fakeLedger) SetStatus(_ context.Context, _ uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	f.statusCalled = &next
	return f.order, f.err
}

func (f *fakeLedger) RateOrder(context.Context, uuid.UUID, int, *string) (*models.Order, error) {
	if f.rateErr != nil {
		return nil, f.rateErr
	}
	return f.order, f.err
}

func sampleQuote() *pricing.Quote {
	return &pricing.Quote{
		Subtotal: decimal.RequireFromString("9.00"),
		VAT:      decimal.RequireFromString("1.35"),
		Total:    decimal.RequireFromString("10.35"),
		Lines: []pricing.Line{{
			ProductID:   uuid.New(),
			ProductName: "Latte",
			BasePrice:   decimal.RequireFromString("4.00"),
			Quantity:    2,
			FinalPrice:  decimal.RequireFromString("4.50"),
		}},
	}
}

func asUser(r *http.Request, id uuid.UUID, role models.Role) *http.Request {
	claims := &middlewares.Claims{UserID: id, Role: role}
	return r.WithContext(middlewares.ContextWithUser(r.Context(), claims))
}

func TestCreateOrder_CustomerStartsPendingApproval(t *testing.T) {
	ledger := &fakeLedger{order: &models.Order{
		ID:     uuid.New(),
		Status: models.StatusPendingApproval,
		Total:  decimal.RequireFromString("10.35"),
	}}
	h := &OrderHandler{Ledger: ledger, Pricer: &fakeQuoter{quote: sampleQuote()}}

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":2}]}`
	r := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, ledger.created)
	assert.Equal(t, models.StatusPendingApproval, ledger.created.Status)
	assert.Equal(t, "PICKUP", ledger.created.Type)
}

func TestCreateOrder_CashierStartsPending(t *testing.T) {
	ledger := &fakeLedger{order: &models.Order{ID: uuid.New(), Status: models.StatusPending}}
	h := &OrderHandler{Ledger: ledger, Pricer: &fakeQuoter{quote: sampleQuote()}}

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],` +
		`"cashier_id":"` + uuid.NewString() + `","type":"DINE-IN"}`
	r := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, ledger.created)
	assert.Equal(t, models.StatusPending, ledger.created.Status)
	assert.Equal(t, "DINE-IN", ledger.created.Type)
}

func TestCreateOrder_EmptyCartRejected(t *testing.T) {
	ledger := &fakeLedger{}
	h := &OrderHandler{Ledger: ledger, Pricer: &fakeQuoter{err: pricing.ErrEmptyCart}}

	r := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, ledger.created, "nothing may be persisted")
}

func TestCreateOrder_InvalidProductRejected(t *testing.T) {
	badID := uuid.New()
	ledger := &fakeLedger{}
	h := &OrderHandler{Ledger: ledger, Pricer: &fakeQuoter{err: pricing.InvalidProductError{ProductID: badID}}}

	body := `{"items":[{"product_id":"` + badID.String() + `","quantity":1}]}`
	r := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), badID.String())
	assert.Nil(t, ledger.created)
}

func TestCreateOrder_NonIntegerQuantityRejected(t *testing.T) {
	h := &OrderHandler{Ledger: &fakeLedger{}, Pricer: &fakeQuoter{quote: sampleQuote()}}

	body := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1.5}]}`
	r := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	staffID := uuid.New()

	tests := []struct {
		name     string
		ledger   *fakeLedger
		status   string
		as       models.Role
		wantCode int
	}{
		{
			name:     "legal transition",
			ledger:   &fakeLedger{order: &models.Order{ID: uuid.New(), Status: models.StatusAccepted}},
			status:   "ACCEPTED",
			as:       models.RoleStaff,
			wantCode: http.StatusOK,
		},
		{
			name:     "order not found",
			ledger:   &fakeLedger{err: dbhelper.ErrOrderNotFound},
			status:   "ACCEPTED",
			as:       models.RoleStaff,
			wantCode: http.StatusNotFound,
		},
		{
			name: "illegal transition",
			ledger: &fakeLedger{err: dbhelper.IllegalTransitionError{
				From: models.StatusCompleted, To: models.StatusPreparing,
			}},
			status:   "PREPARING",
			as:       models.RoleStaff,
			wantCode: http.StatusConflict,
		},
		{
			name:     "unknown status",
			ledger:   &fakeLedger{},
			status:   "SHIPPED",
			as:       models.RoleStaff,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "customer forbidden",
			ledger:   &fakeLedger{},
			status:   "ACCEPTED",
			as:       models.RoleCustomer,
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &OrderHandler{Ledger: tt.ledger, Pricer: &fakeQuoter{}}

			orderID := uuid.New()
			body := `{"status":"` + tt.status + `"}`
			r := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/status", strings.NewReader(body))
			r = mux.SetURLVars(r, map[string]string{"id": orderID.String()})
			r = asUser(r, staffID, tt.as)

			w := httptest.NewRecorder()
			h.UpdateStatus(w, r)
			assert.Equal(t, tt.wantCode, w.Code)

			if tt.wantCode == http.StatusOK {
				require.NotNil(t, tt.ledger.statusCalled)
				assert.Equal(t, models.OrderStatus(tt.status), *tt.ledger.statusCalled)
			}
		})
	}
}

func TestRateOrder_OnlyOwner(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	orderID := uuid.New()
	completed := &models.Order{ID: orderID, UserID: &owner, Status: models.StatusCompleted}

	h := &OrderHandler{Ledger: &fakeLedger{order: completed}, Pricer: &fakeQuoter{}}

	makeReq := func(actor uuid.UUID) *http.Request {
		r := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/rating",
			strings.NewReader(`{"rating":5,"rating_comment":"great latte"}`))
		r = mux.SetURLVars(r, map[string]string{"id": orderID.String()})
		return asUser(r, actor, models.RoleCustomer)
	}

	w := httptest.NewRecorder()
	h.Rate(w, makeReq(owner))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Rate(w, makeReq(stranger))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateOrder_RejectedBeforeCompletion(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	ledger := &fakeLedger{order: &models.Order{ID: orderID, UserID: &owner, Status: models.StatusPreparing}}
	// the store enforces the completed-only rule under its row lock
	ledger.rateErr = dbhelper.ErrOrderNotCompleted

	h := &OrderHandler{Ledger: ledger, Pricer: &fakeQuoter{}}

	r := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/rating",
		strings.NewReader(`{"rating":4}`))
	r = mux.SetURLVars(r, map[string]string{"id": orderID.String()})
	r = asUser(r, owner, models.RoleCustomer)

	w := httptest.NewRecorder()
	h.Rate(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateOrder_BoundsChecked(t *testing.T) {
	h := &OrderHandler{Ledger: &fakeLedger{}, Pricer: &fakeQuoter{}}
	orderID := uuid.New()

	for _, rating := range []string{"0", "6", "-1"} {
		r := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID.String()+"/rating",
			strings.NewReader(`{"rating":`+rating+`}`))
		r = mux.SetURLVars(r, map[string]string{"id": orderID.String()})
		r = asUser(r, uuid.New(), models.RoleCustomer)

		w := httptest.NewRecorder()
		h.Rate(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %s", rating)
	}
}

func TestGetOrder_OwnerAndStaffOnly(t *testing.T) {
	owner := uuid.New()
	orderID := uuid.New()
	order := &models.Order{ID: orderID, UserID: &owner, Status: models.StatusReady}
	h := &OrderHandler{Ledger: &fakeLedger{order: order}, Pricer: &fakeQuoter{}}

	cases := []struct {
		actor    uuid.UUID
		role     models.Role
		wantCode int
	}{
		{owner, models.RoleCustomer, http.StatusOK},
		{uuid.New(), models.RoleCustomer, http.StatusForbidden},
		{uuid.New(), models.RoleStaff, http.StatusOK},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil)
		r = mux.SetURLVars(r, map[string]string{"id": orderID.String()})
		r = asUser(r, tc.actor, tc.role)

		w := httptest.NewRecorder()
		h.Get(w, r)
		assert.Equal(t, tc.wantCode, w.Code)
	}
}

func TestActiveOrders_EmptyListNotNull(t *testing.T) {
	h := &OrderHandler{Ledger: &fakeLedger{}, Pricer: &fakeQuoter{}}

	r := httptest.NewRequest(http.MethodGet, "/api/orders/active", nil)
	w := httptest.NewRecorder()
	h.Active(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	var orders []models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orders))
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}
