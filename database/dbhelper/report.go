package dbhelper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cafedesk/pos-backend/database"
	"github.com/cafedesk/pos-backend/models"
)

// revenueBuckets whitelists the TO_CHAR formats; anything else falls back
// to per-day grouping.
var revenueBuckets = map[string]string{
	"day":   "YYYY-MM-DD",
	"month": "YYYY-MM",
	"year":  "YYYY",
}

type ReportStore struct {
	db *database.DB
}

func NewReportStore(db *database.DB) *ReportStore {
	return &ReportStore{db: db}
}

type DashboardStats struct {
	TodayRevenue decimal.Decimal `json:"today_revenue"`
	ActiveOrders int             `json:"active_orders"`
}

type RevenueBucket struct {
	Bucket  string          `json:"bucket"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type StaffSales struct {
	CashierID   uuid.UUID       `json:"cashier_id"`
	OrdersCount int64           `json:"orders_count"`
	Revenue     decimal.Decimal `json:"revenue"`
}

func (s *ReportStore) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = $1 AND DATE(created_at) = CURRENT_DATE`,
		models.StatusCompleted).Scan(&stats.TodayRevenue)
	if err != nil {
		return nil, fmt.Errorf("query today revenue: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM orders
		WHERE status NOT IN ($1, $2)`,
		models.StatusCompleted, models.StatusRejected).Scan(&stats.ActiveOrders)
	if err != nil {
		return nil, fmt.Errorf("query active count: %w", err)
	}
	return &stats, nil
}

func (s *ReportStore) Revenue(ctx context.Context, start, end time.Time, groupBy string) ([]RevenueBucket, error) {
	format, ok := revenueBuckets[groupBy]
	if !ok {
		format = revenueBuckets["day"]
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT TO_CHAR(created_at, $1::text) AS bucket, SUM(total)
		FROM orders
		WHERE status = $2 AND created_at BETWEEN $3 AND $4
		GROUP BY bucket
		ORDER BY bucket`,
		format, models.StatusCompleted, start, end)
	if err != nil {
		return nil, fmt.Errorf("query revenue: %w", err)
	}
	defer rows.Close()

	var buckets []RevenueBucket
	for rows.Next() {
		var b RevenueBucket
		if err := rows.Scan(&b.Bucket, &b.Revenue); err != nil {
			return nil, fmt.Errorf("scan revenue bucket: %w", err)
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

// ProductSales aggregates from the item snapshots, so renamed or disabled
// products report under the name they sold as.
func (s *ReportStore) ProductSales(ctx context.Context, start, end time.Time) ([]ProductSales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.product_id, oi.product_name_snapshot,
			SUM(oi.quantity), SUM(oi.final_price * oi.quantity)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.status = $1 AND o.created_at BETWEEN $2 AND $3
		GROUP BY oi.product_id, oi.product_name_snapshot
		ORDER BY SUM(oi.quantity) DESC`,
		models.StatusCompleted, start, end)
	if err != nil {
		return nil, fmt.Errorf("query product sales: %w", err)
	}
	defer rows.Close()

	var sales []ProductSales
	for rows.Next() {
		var p ProductSales
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Quantity, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan product sales: %w", err)
		}
		sales = append(sales, p)
	}
	return sales, rows.Err()
}

func (s *ReportStore) StaffSales(ctx context.Context, start, end time.Time) ([]StaffSales, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cashier_id, COUNT(*), SUM(total)
		FROM orders
		WHERE status = $1 AND cashier_id IS NOT NULL AND created_at BETWEEN $2 AND $3
		GROUP BY cashier_id`,
		models.StatusCompleted, start, end)
	if err != nil {
		return nil, fmt.Errorf("query staff sales: %w", err)
	}
	defer rows.Close()

	var sales []StaffSales
	for rows.Next() {
		var st StaffSales
		if err := rows.Scan(&st.CashierID, &st.OrdersCount, &st.Revenue); err != nil {
			return nil, fmt.Errorf("scan staff sales: %w", err)
		}
		sales = append(sales, st)
	}
	return sales, rows.Err()
}
