package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a product definition owned by a user. Cost attributes live on its
// versions, never on the item itself.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Populated by detail/stats queries.
	Versions []ItemVersion `json:"versions,omitempty"`
}

// ItemVersion is an immutable cost snapshot of an item. Version numbers are
// unique per item and increase from 1; versions are superseded, never edited.
type ItemVersion struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"item_id"`
	Version           int             `json:"version"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	ServiceCost       decimal.Decimal `json:"service_cost"`
	TaxCost           decimal.Decimal `json:"tax_cost"`
	DeductibleTaxCost decimal.Decimal `json:"deductible_tax_cost"`
	Volume            decimal.Decimal `json:"volume"`
	Weight            decimal.Decimal `json:"weight"`
	Currency          string          `json:"currency"`
	Supplier          string          `json:"supplier,omitempty"`
	Note              string          `json:"note,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`

	// Populated by detail/stats queries.
	InventoryItems []InventoryItem `json:"inventory_items,omitempty"`
}
