package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPending         OrderStatus = "PENDING"
	StatusPendingApproval OrderStatus = "PENDING_APPROVAL"
	StatusAccepted        OrderStatus = "ACCEPTED"
	StatusPreparing       OrderStatus = "PREPARING"
	StatusReady           OrderStatus = "READY"
	StatusCompleted       OrderStatus = "COMPLETED"
	StatusRejected        OrderStatus = "REJECTED"
)

// transitions is the closed adjacency table; REJECTED is reachable from every
// non-terminal state, COMPLETED and REJECTED have no outgoing edges.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:         {StatusAccepted, StatusRejected},
	StatusPendingApproval: {StatusAccepted, StatusRejected},
	StatusAccepted:        {StatusPreparing, StatusRejected},
	StatusPreparing:       {StatusReady, StatusRejected},
	StatusReady:           {StatusCompleted, StatusRejected},
	StatusCompleted:       {},
	StatusRejected:        {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	UserID        *uuid.UUID      `db:"user_id" json:"user_id,omitempty"`
	CashierID     *uuid.UUID      `db:"cashier_id" json:"cashier_id,omitempty"`
	TableID       *uuid.UUID      `db:"table_id" json:"table_id,omitempty"`
	Status        OrderStatus     `db:"status" json:"status"`
	Type          string          `db:"type" json:"type"`
	PaymentMethod *string         `db:"payment_method" json:"payment_method,omitempty"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	VAT           decimal.Decimal `db:"vat" json:"vat"`
	Total         decimal.Decimal `db:"total" json:"total"`
	Note          *string         `db:"note" json:"note,omitempty"`
	Rating        *int            `db:"rating" json:"rating,omitempty"`
	RatingComment *string         `db:"rating_comment" json:"rating_comment,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	AcceptedAt    *time.Time      `db:"accepted_at" json:"accepted_at,omitempty"`
	PreparedAt    *time.Time      `db:"prepared_at" json:"prepared_at,omitempty"`
	ReadyAt       *time.Time      `db:"ready_at" json:"ready_at,omitempty"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	Items         []OrderItem     `db:"-" json:"items,omitempty"`
}

// OrderItem snapshots the product name, base price and chosen extras at the
// moment the order was placed. The snapshot never changes afterwards, even if
// the product or its extras do.
type OrderItem struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	OrderID     uuid.UUID       `db:"order_id" json:"order_id"`
	ProductID   uuid.UUID       `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name_snapshot" json:"product_name"`
	BasePrice   decimal.Decimal `db:"base_price_snapshot" json:"base_price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Extras      []ExtraSnapshot `db:"extras_snapshot" json:"extras"`
	FinalPrice  decimal.Decimal `db:"final_price" json:"final_price"`
	Note        *string         `db:"item_notes" json:"note,omitempty"`
}

// ExtraSnapshot captures an extra's id, name and price at order time.
type ExtraSnapshot struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
