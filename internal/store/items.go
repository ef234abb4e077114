package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/logistix/logistix/internal/model"
)

// CreateItem creates a new item for a user.
func CreateItem(ctx context.Context, db *sql.DB, userID, name string) (*model.Item, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO items (id, user_id, name) VALUES (?, ?, ?)`,
		id, userID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item := &model.Item{}
	err := db.QueryRowContext(ctx,
		`SELECT id, user_id, name, created_at FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.UserID, &item.Name, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns a user's items, newest first, optionally filtered by a
// case-insensitive name search.
func ListItems(ctx context.Context, db *sql.DB, userID, search string) ([]model.Item, error) {
	query := `SELECT id, user_id, name, created_at FROM items WHERE user_id = ?`
	args := []any{userID}

	if search != "" {
		query += ` AND name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// VersionInput carries the cost attributes of a new item version.
type VersionInput struct {
	UnitPrice         string
	ServiceCost       string
	TaxCost           string
	DeductibleTaxCost string
	Volume            string
	Weight            string
	Currency          string
	Supplier          string
	Note              string
}

// CreateItemVersion appends the next version to an item. Version numbers
// start at 1 and increase by one; once written a version is never edited.
func CreateItemVersion(ctx context.Context, db *sql.DB, itemID string, in VersionInput) (*model.ItemVersion, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM item_versions WHERE item_id = ?`, itemID,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("determining next version: %w", err)
	}

	if in.Currency == "" {
		in.Currency = "USD"
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_versions
		     (id, item_id, version, unit_price, service_cost, tax_cost, deductible_tax_cost,
		      volume, weight, currency, supplier, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, itemID, next,
		zeroIfEmpty(in.UnitPrice), zeroIfEmpty(in.ServiceCost), zeroIfEmpty(in.TaxCost),
		zeroIfEmpty(in.DeductibleTaxCost), zeroIfEmpty(in.Volume), zeroIfEmpty(in.Weight),
		in.Currency, in.Supplier, in.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing item version: %w", err)
	}

	return GetItemVersion(ctx, db, id)
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// GetItemVersion returns a version by ID.
func GetItemVersion(ctx context.Context, db *sql.DB, id string) (*model.ItemVersion, error) {
	v := &model.ItemVersion{}
	var supplier, note sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, item_id, version, unit_price, service_cost, tax_cost, deductible_tax_cost,
		        volume, weight, currency, supplier, note, created_at
		 FROM item_versions WHERE id = ?`, id,
	).Scan(&v.ID, &v.ItemID, &v.Version, &v.UnitPrice, &v.ServiceCost, &v.TaxCost,
		&v.DeductibleTaxCost, &v.Volume, &v.Weight, &v.Currency, &supplier, &note, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item version: %w", err)
	}
	v.Supplier = supplier.String
	v.Note = note.String
	return v, nil
}

// ListItemVersions returns an item's versions ordered by version number.
func ListItemVersions(ctx context.Context, db *sql.DB, itemID string) ([]model.ItemVersion, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, item_id, version, unit_price, service_cost, tax_cost, deductible_tax_cost,
		        volume, weight, currency, supplier, note, created_at
		 FROM item_versions WHERE item_id = ? ORDER BY version`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item versions: %w", err)
	}
	defer rows.Close()

	var versions []model.ItemVersion
	for rows.Next() {
		var v model.ItemVersion
		var supplier, note sql.NullString
		if err := rows.Scan(&v.ID, &v.ItemID, &v.Version, &v.UnitPrice, &v.ServiceCost, &v.TaxCost,
			&v.DeductibleTaxCost, &v.Volume, &v.Weight, &v.Currency, &supplier, &note, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning item version: %w", err)
		}
		v.Supplier = supplier.String
		v.Note = note.String
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// LoadItemDetail returns an item with its versions and each version's
// inventory rows (with warehouse names) attached, ready for valuation.
func LoadItemDetail(ctx context.Context, db *sql.DB, id string) (*model.Item, error) {
	item, err := GetItem(ctx, db, id)
	if err != nil || item == nil {
		return item, err
	}

	item.Versions, err = ListItemVersions(ctx, db, id)
	if err != nil {
		return nil, err
	}

	inventory, err := listItemInventory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	byVersion := make(map[string][]model.InventoryItem)
	for _, inv := range inventory {
		byVersion[inv.ItemVersionID] = append(byVersion[inv.ItemVersionID], inv)
	}
	for i := range item.Versions {
		item.Versions[i].InventoryItems = byVersion[item.Versions[i].ID]
	}

	return item, nil
}

// ListItemsWithVersions loads all of a user's items with versions and
// inventory attached, for the stats listing.
func ListItemsWithVersions(ctx context.Context, db *sql.DB, userID, search string) ([]model.Item, error) {
	items, err := ListItems(ctx, db, userID, search)
	if err != nil {
		return nil, err
	}

	for i := range items {
		detail, err := LoadItemDetail(ctx, db, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i] = *detail
	}
	return items, nil
}

// listItemInventory returns every inventory row for an item with the
// warehouse name joined in, ordered by creation so that distribution
// bucketing is stable.
func listItemInventory(ctx context.Context, db *sql.DB, itemID string) ([]model.InventoryItem, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT inv.id, inv.item_id, inv.item_version_id, inv.warehouse_id, inv.quantity,
		        inv.created_at, inv.updated_at, w.name AS warehouse_name
		 FROM inventory_items inv
		 JOIN warehouses w ON w.id = inv.warehouse_id
		 WHERE inv.item_id = ?
		 ORDER BY inv.created_at, inv.id`, itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing item inventory: %w", err)
	}
	defer rows.Close()

	var inventory []model.InventoryItem
	for rows.Next() {
		var inv model.InventoryItem
		if err := rows.Scan(&inv.ID, &inv.ItemID, &inv.ItemVersionID, &inv.WarehouseID,
			&inv.Quantity, &inv.CreatedAt, &inv.UpdatedAt, &inv.WarehouseName); err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		inventory = append(inventory, inv)
	}
	return inventory, rows.Err()
}
