package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cafedesk/pos-backend/database"
	"github.com/cafedesk/pos-backend/models"
)

type TableStore struct {
	db *database.DB
}

func NewTableStore(db *database.DB) *TableStore {
	return &TableStore{db: db}
}

func (s *TableStore) ListTables(ctx context.Context) ([]models.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, seats, status, created_at
		FROM tables
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []models.Table
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// UpdateTableStatus sets the free-text table status (FREE, OCCUPIED, ...).
func (s *TableStore) UpdateTableStatus(ctx context.Context, id uuid.UUID, status string) (*models.Table, error) {
	var t models.Table
	err := s.db.QueryRowContext(ctx, `
		UPDATE tables SET status = $1
		WHERE id = $2
		RETURNING id, name, seats, status, created_at`, status, id).
		Scan(&t.ID, &t.Name, &t.Seats, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update table: %w", err)
	}
	return &t, nil
}
