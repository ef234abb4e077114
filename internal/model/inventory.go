package model

import "time"

// InventoryItem is the current quantity of one item version at one warehouse.
// Exactly one row exists per (item, version, warehouse) triple; rows are
// created lazily on the first quantity change for a triple.
type InventoryItem struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"item_id"`
	ItemVersionID string    `json:"item_version_id"`
	WarehouseID   string    `json:"warehouse_id"`
	Quantity      int       `json:"quantity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	WarehouseName string `json:"warehouse_name,omitempty"`
}

// History actions. Only MANUAL_ADD and MANUAL_DEDUCT are produced by manual
// quantity changes; ARRIVED and WAREHOUSE_MOVE come from arrivals and stock
// moves. Each history row is a terminal, immutable fact.
const (
	ActionArrived       = "ARRIVED"
	ActionManualAdd     = "MANUAL_ADD"
	ActionManualDeduct  = "MANUAL_DEDUCT"
	ActionWarehouseMove = "WAREHOUSE_MOVE"
)

// InventoryHistory is an append-only audit record of a single quantity
// change. Quantity is the magnitude of the change, never the resulting total.
type InventoryHistory struct {
	ID              string    `json:"id"`
	InventoryItemID string    `json:"inventory_item_id"`
	Quantity        int       `json:"quantity"`
	Action          string    `json:"action"`
	FromWarehouseID string    `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string    `json:"to_warehouse_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`

	// Joined fields (not always populated).
	Version       int    `json:"version,omitempty"`
	WarehouseName string `json:"warehouse_name,omitempty"`
}
