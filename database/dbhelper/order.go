package dbhelper

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cafedesk/pos-backend/database"
	"github.com/cafedesk/pos-backend/models"
	"github.com/cafedesk/pos-backend/pricing"
)

const orderColumns = `id, user_id, cashier_id, table_id, status, type, payment_method,
	subtotal, vat, total, note, rating, rating_comment,
	created_at, accepted_at, prepared_at, ready_at, completed_at`

// statusTimestamps maps an arrival status to the column stamped on entry.
var statusTimestamps = map[models.OrderStatus]string{
	models.StatusAccepted:  "accepted_at",
	models.StatusPreparing: "prepared_at",
	models.StatusReady:     "ready_at",
	models.StatusCompleted: "completed_at",
}

// OrderStore is the order ledger. Orders are created atomically with their
// item snapshots and afterwards mutated only through SetStatus and RateOrder;
// they are never deleted.
type OrderStore struct {
	db *database.DB
}

func NewOrderStore(db *database.DB) *OrderStore {
	return &OrderStore{db: db}
}

type CreateOrderParams struct {
	UserID        *uuid.UUID
	CashierID     *uuid.UUID
	TableID       *uuid.UUID
	Type          string
	PaymentMethod *string
	Note          *string
	Status        models.OrderStatus
	Quote         *pricing.Quote
}

// CreateOrder persists the header and its item snapshots in one transaction;
// a half-written order is never observable.
func (s *OrderStore) CreateOrder(ctx context.Context, params CreateOrderParams) (*models.Order, error) {
	order := models.Order{
		UserID:        params.UserID,
		CashierID:     params.CashierID,
		TableID:       params.TableID,
		Status:        params.Status,
		Type:          params.Type,
		PaymentMethod: params.PaymentMethod,
		Subtotal:      params.Quote.Subtotal,
		VAT:           params.Quote.VAT,
		Total:         params.Quote.Total,
		Note:          params.Note,
	}

	txErr := s.db.Tx(func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders
				(user_id, cashier_id, table_id, status, type, payment_method, subtotal, vat, total, note)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING id, created_at`,
			order.UserID, order.CashierID, order.TableID, order.Status, order.Type,
			order.PaymentMethod, order.Subtotal, order.VAT, order.Total, order.Note).
			Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, line := range params.Quote.Lines {
			extrasJSON, err := json.Marshal(line.Extras)
			if err != nil {
				return fmt.Errorf("marshal extras snapshot: %w", err)
			}

			item := models.OrderItem{
				OrderID:     order.ID,
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				BasePrice:   line.BasePrice,
				Quantity:    line.Quantity,
				Extras:      line.Extras,
				FinalPrice:  line.FinalPrice,
				Note:        line.Note,
			}
			err = tx.QueryRowContext(ctx, `
				INSERT INTO order_items
					(order_id, product_id, product_name_snapshot, base_price_snapshot,
					 quantity, extras_snapshot, final_price, item_notes)
				VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
				RETURNING id`,
				item.OrderID, item.ProductID, item.ProductName, item.BasePrice,
				item.Quantity, extrasJSON, item.FinalPrice, item.Note).
				Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1`, id)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := s.itemsByOrder(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	return order, nil
}

// ListActive returns every order still in flight, newest first.
func (s *OrderStore) ListActive(ctx context.Context) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status NOT IN ($1, $2)
		ORDER BY created_at DESC`,
		models.StatusCompleted, models.StatusRejected)
	if err != nil {
		return nil, fmt.Errorf("query active orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

// ListByUser returns a customer's order history, newest first, items attached.
func (s *OrderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := s.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

// SetStatus moves an order along the lifecycle. The read-modify-write runs
// under a row lock so concurrent transitions on the same order serialize and
// cannot corrupt the timestamp trail.
func (s *OrderStore) SetStatus(ctx context.Context, id uuid.UUID, next models.OrderStatus) (*models.Order, error) {
	var order *models.Order
	txErr := s.db.Tx(func(tx *sql.Tx) error {
		var current models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).
			Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if !current.CanTransition(next) {
			return IllegalTransitionError{From: current, To: next}
		}

		query := `UPDATE orders SET status = $1 WHERE id = $2 RETURNING ` + orderColumns
		if col, ok := statusTimestamps[next]; ok {
			query = `UPDATE orders SET status = $1, ` + col + ` = NOW() WHERE id = $2 RETURNING ` + orderColumns
		}
		order, err = scanOrder(tx.QueryRowContext(ctx, query, next, id))
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// RateOrder attaches a 1-5 rating to a completed order. A second rating
// overwrites the first. Ownership is checked by the caller's policy layer;
// the completed-only rule is enforced here under the same row lock.
func (s *OrderStore) RateOrder(ctx context.Context, id uuid.UUID, rating int, comment *string) (*models.Order, error) {
	var order *models.Order
	txErr := s.db.Tx(func(tx *sql.Tx) error {
		var status models.OrderStatus
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).
			Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if status != models.StatusCompleted {
			return ErrOrderNotCompleted
		}

		order, err = scanOrder(tx.QueryRowContext(ctx, `
			UPDATE orders SET rating = $1, rating_comment = $2
			WHERE id = $3
			RETURNING `+orderColumns, rating, comment, id))
		if err != nil {
			return fmt.Errorf("update order rating: %w", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

func (s *OrderStore) itemsByOrder(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name_snapshot, base_price_snapshot,
			quantity, extras_snapshot, final_price, item_notes
		FROM order_items
		WHERE order_id = ANY($1)`, uuidArray(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		var extrasJSON []byte
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.BasePrice, &item.Quantity, &extrasJSON, &item.FinalPrice, &item.Note)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if err := json.Unmarshal(extrasJSON, &item.Extras); err != nil {
			return nil, fmt.Errorf("unmarshal extras snapshot: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}
	return items, rows.Err()
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.UserID, &o.CashierID, &o.TableID, &o.Status, &o.Type,
		&o.PaymentMethod, &o.Subtotal, &o.VAT, &o.Total, &o.Note, &o.Rating, &o.RatingComment,
		&o.CreatedAt, &o.AcceptedAt, &o.PreparedAt, &o.ReadyAt, &o.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}
