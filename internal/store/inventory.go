package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/logistix/logistix/internal/ledger"
	"github.com/logistix/logistix/internal/model"
)

// ErrBadReference marks a quantity change whose version or warehouse does not
// resolve, or whose version belongs to a different item. No mutation happens.
var ErrBadReference = errors.New("invalid reference")

// ApplyQuantityChange applies a validated manual quantity change to the
// (item, version, warehouse) triple. The inventory row is created lazily on
// first change; the row update and the history append happen in one
// transaction, so a failure on either side leaves the quantity untouched.
func ApplyQuantityChange(ctx context.Context, db *sql.DB, itemID string, ch ledger.Change) (*model.InventoryItem, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkReferences(ctx, tx, itemID, ch.VersionID, ch.WarehouseID); err != nil {
		return nil, err
	}

	inv, err := findInventoryItem(ctx, tx, itemID, ch.VersionID, ch.WarehouseID)
	if err != nil {
		return nil, err
	}
	oldQuantity := 0
	if inv != nil {
		oldQuantity = inv.Quantity
	}

	outcome := ledger.Plan(ch.Operation, ch.Magnitude, oldQuantity)

	invID, err := upsertInventoryItem(ctx, tx, inv, itemID, ch.VersionID, ch.WarehouseID, outcome.NewQuantity)
	if err != nil {
		return nil, err
	}

	if err := appendHistory(ctx, tx, invID, outcome.HistoryQuantity, outcome.HistoryAction, "", ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing quantity change: %w", err)
	}

	return GetInventoryItem(ctx, db, invID)
}

// RecordArrival books newly arrived stock onto a triple and logs an ARRIVED
// history entry. Used by seeding and external intake processes.
func RecordArrival(ctx context.Context, db *sql.DB, itemID, versionID, warehouseID string, quantity int) (*model.InventoryItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("arrival quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkReferences(ctx, tx, itemID, versionID, warehouseID); err != nil {
		return nil, err
	}

	inv, err := findInventoryItem(ctx, tx, itemID, versionID, warehouseID)
	if err != nil {
		return nil, err
	}
	oldQuantity := 0
	if inv != nil {
		oldQuantity = inv.Quantity
	}

	invID, err := upsertInventoryItem(ctx, tx, inv, itemID, versionID, warehouseID, oldQuantity+quantity)
	if err != nil {
		return nil, err
	}

	if err := appendHistory(ctx, tx, invID, quantity, model.ActionArrived, "", ""); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing arrival: %w", err)
	}

	return GetInventoryItem(ctx, db, invID)
}

// MoveStock moves quantity of one version between two warehouses. The move is
// logged as a single WAREHOUSE_MOVE entry against the source row, carrying
// both warehouse ids.
func MoveStock(ctx context.Context, db *sql.DB, itemID, versionID, fromWarehouseID, toWarehouseID string, quantity int) error {
	if fromWarehouseID == toWarehouseID {
		return fmt.Errorf("cannot move stock to the same warehouse")
	}
	if quantity <= 0 {
		return fmt.Errorf("move quantity must be positive")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := checkReferences(ctx, tx, itemID, versionID, fromWarehouseID); err != nil {
		return err
	}
	if err := checkReferences(ctx, tx, itemID, versionID, toWarehouseID); err != nil {
		return err
	}

	source, err := findInventoryItem(ctx, tx, itemID, versionID, fromWarehouseID)
	if err != nil {
		return err
	}
	if source == nil || source.Quantity < quantity {
		have := 0
		if source != nil {
			have = source.Quantity
		}
		return fmt.Errorf("insufficient quantity: have %d, need %d", have, quantity)
	}

	if _, err := upsertInventoryItem(ctx, tx, source, itemID, versionID, fromWarehouseID, source.Quantity-quantity); err != nil {
		return err
	}

	dest, err := findInventoryItem(ctx, tx, itemID, versionID, toWarehouseID)
	if err != nil {
		return err
	}
	destQuantity := quantity
	if dest != nil {
		destQuantity += dest.Quantity
	}
	if _, err := upsertInventoryItem(ctx, tx, dest, itemID, versionID, toWarehouseID, destQuantity); err != nil {
		return err
	}

	if err := appendHistory(ctx, tx, source.ID, quantity, model.ActionWarehouseMove, fromWarehouseID, toWarehouseID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing stock move: %w", err)
	}
	return nil
}

// GetInventoryItem returns an inventory row by ID.
func GetInventoryItem(ctx context.Context, db *sql.DB, id string) (*model.InventoryItem, error) {
	inv := &model.InventoryItem{}
	err := db.QueryRowContext(ctx,
		`SELECT id, item_id, item_version_id, warehouse_id, quantity, created_at, updated_at
		 FROM inventory_items WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.ItemID, &inv.ItemVersionID, &inv.WarehouseID,
		&inv.Quantity, &inv.CreatedAt, &inv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inventory item: %w", err)
	}
	return inv, nil
}

// GetItemHistory returns the full audit history for an item, oldest first,
// with version numbers and warehouse names joined in for display.
func GetItemHistory(ctx context.Context, db *sql.DB, itemID string) ([]model.InventoryHistory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT h.id, h.inventory_item_id, h.quantity, h.action,
		        COALESCE(h.from_warehouse_id, ''), COALESCE(h.to_warehouse_id, ''), h.created_at,
		        v.version, w.name AS warehouse_name
		 FROM inventory_history h
		 JOIN inventory_items inv ON inv.id = h.inventory_item_id
		 JOIN item_versions v ON v.id = inv.item_version_id
		 JOIN warehouses w ON w.id = inv.warehouse_id
		 WHERE inv.item_id = ?
		 ORDER BY h.created_at, h.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting item history: %w", err)
	}
	defer rows.Close()

	var history []model.InventoryHistory
	for rows.Next() {
		var h model.InventoryHistory
		if err := rows.Scan(&h.ID, &h.InventoryItemID, &h.Quantity, &h.Action,
			&h.FromWarehouseID, &h.ToWarehouseID, &h.CreatedAt,
			&h.Version, &h.WarehouseName); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// checkReferences verifies that the version exists and belongs to the item,
// and that the warehouse exists and belongs to the item's owner. Stock can
// never land in another user's warehouse.
func checkReferences(ctx context.Context, tx *sql.Tx, itemID, versionID, warehouseID string) error {
	var ownerItemID string
	err := tx.QueryRowContext(ctx,
		`SELECT item_id FROM item_versions WHERE id = ?`, versionID,
	).Scan(&ownerItemID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: version %s not found", ErrBadReference, versionID)
	}
	if err != nil {
		return fmt.Errorf("checking version: %w", err)
	}
	if ownerItemID != itemID {
		return fmt.Errorf("%w: version %s does not belong to item %s", ErrBadReference, versionID, itemID)
	}

	var itemOwner string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM items WHERE id = ?`, itemID,
	).Scan(&itemOwner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: item %s not found", ErrBadReference, itemID)
	}
	if err != nil {
		return fmt.Errorf("checking item: %w", err)
	}

	var warehouseOwner string
	err = tx.QueryRowContext(ctx,
		`SELECT user_id FROM warehouses WHERE id = ?`, warehouseID,
	).Scan(&warehouseOwner)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: warehouse %s not found", ErrBadReference, warehouseID)
	}
	if err != nil {
		return fmt.Errorf("checking warehouse: %w", err)
	}
	if warehouseOwner != itemOwner {
		return fmt.Errorf("%w: warehouse %s does not belong to the item's owner", ErrBadReference, warehouseID)
	}
	return nil
}

// findInventoryItem looks up the row for a triple inside a transaction.
func findInventoryItem(ctx context.Context, tx *sql.Tx, itemID, versionID, warehouseID string) (*model.InventoryItem, error) {
	inv := &model.InventoryItem{}
	err := tx.QueryRowContext(ctx,
		`SELECT id, item_id, item_version_id, warehouse_id, quantity, created_at, updated_at
		 FROM inventory_items
		 WHERE item_id = ? AND item_version_id = ? AND warehouse_id = ?`,
		itemID, versionID, warehouseID,
	).Scan(&inv.ID, &inv.ItemID, &inv.ItemVersionID, &inv.WarehouseID,
		&inv.Quantity, &inv.CreatedAt, &inv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding inventory item: %w", err)
	}
	return inv, nil
}

// upsertInventoryItem writes the new quantity, inserting the row if the
// triple has never held stock before. Returns the row id.
func upsertInventoryItem(ctx context.Context, tx *sql.Tx, existing *model.InventoryItem, itemID, versionID, warehouseID string, quantity int) (string, error) {
	if existing == nil {
		id := uuid.NewString()
		_, err := tx.ExecContext(ctx,
			`INSERT INTO inventory_items (id, item_id, item_version_id, warehouse_id, quantity)
			 VALUES (?, ?, ?, ?, ?)`,
			id, itemID, versionID, warehouseID, quantity,
		)
		if err != nil {
			return "", fmt.Errorf("creating inventory item: %w", err)
		}
		return id, nil
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE inventory_items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		quantity, existing.ID,
	)
	if err != nil {
		return "", fmt.Errorf("updating inventory item: %w", err)
	}
	return existing.ID, nil
}

// appendHistory writes one immutable audit row.
func appendHistory(ctx context.Context, tx *sql.Tx, inventoryItemID string, quantity int, action, fromWarehouseID, toWarehouseID string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO inventory_history (id, inventory_item_id, quantity, action, from_warehouse_id, to_warehouse_id)
		 VALUES (?, ?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))`,
		uuid.NewString(), inventoryItemID, quantity, action, fromWarehouseID, toWarehouseID,
	)
	if err != nil {
		return fmt.Errorf("appending history: %w", err)
	}
	return nil
}
