package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/logistix/logistix/internal/model"
)

// CreateWarehouse creates a warehouse for a user. Marking the new warehouse
// as default clears the default flag on the user's other warehouses.
func CreateWarehouse(ctx context.Context, db *sql.DB, userID, name string, isDefault bool) (*model.Warehouse, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE warehouses SET is_default = 0 WHERE user_id = ?`, userID,
		); err != nil {
			return nil, fmt.Errorf("clearing default warehouse: %w", err)
		}
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO warehouses (id, user_id, name, is_default) VALUES (?, ?, ?, ?)`,
		id, userID, name, isDefault,
	)
	if err != nil {
		return nil, fmt.Errorf("creating warehouse: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing warehouse creation: %w", err)
	}

	return GetWarehouse(ctx, db, id)
}

// GetWarehouse returns a warehouse by ID.
func GetWarehouse(ctx context.Context, db *sql.DB, id string) (*model.Warehouse, error) {
	w := &model.Warehouse{}
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, name, is_default, created_at FROM warehouses WHERE id = ?`, id,
	).Scan(&w.ID, &w.UserID, &w.Name, &w.IsDefault, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting warehouse: %w", err)
	}
	return w, nil
}

// ListWarehouses returns a user's warehouses ordered by name.
func ListWarehouses(ctx context.Context, db *sql.DB, userID string) ([]model.Warehouse, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, name, is_default, created_at
		 FROM warehouses WHERE user_id = ? ORDER BY name`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []model.Warehouse
	for rows.Next() {
		var w model.Warehouse
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.IsDefault, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, rows.Err()
}

// DeleteWarehouse removes an empty warehouse. Warehouses with stock cannot
// be deleted.
func DeleteWarehouse(ctx context.Context, db *sql.DB, id string) error {
	var stocked int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items WHERE warehouse_id = ? AND quantity > 0`, id,
	).Scan(&stocked)
	if err != nil {
		return fmt.Errorf("checking warehouse stock: %w", err)
	}
	if stocked > 0 {
		return fmt.Errorf("warehouse still holds stock")
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM warehouses WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting warehouse: %w", err)
	}
	return nil
}
