package ledger

import (
	"slices"
	"strconv"

	"github.com/logistix/logistix/internal/model"
	"github.com/shopspring/decimal"
)

// UnitCost is the landed cost of one unit of a version:
// unit price + service cost + tax cost - deductible tax cost.
// It can go negative when the deductible tax exceeds the rest; that is
// treated as valid (if unusual) input.
func UnitCost(v model.ItemVersion) decimal.Decimal {
	return v.UnitPrice.Add(v.ServiceCost).Add(v.TaxCost).Sub(v.DeductibleTaxCost)
}

// WarehouseValue is the share of an item's total value held at one warehouse.
type WarehouseValue struct {
	WarehouseID   string          `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	Value         decimal.Decimal `json:"value"`
}

// Valuation aggregates stock quantity and value across versions and
// warehouses.
type Valuation struct {
	TotalUnits int              `json:"total_units"`
	TotalValue decimal.Decimal  `json:"total_value"`
	Warehouses []WarehouseValue `json:"warehouse_distribution"`
}

// ComputeValuation folds an item's versions (with their inventory rows
// attached) into totals and a per-warehouse distribution. The filter holds
// version numbers as strings; an empty filter includes every version.
// Warehouses appear in the distribution in first-seen row order.
func ComputeValuation(versions []model.ItemVersion, filter []string) Valuation {
	val := Valuation{TotalValue: decimal.Zero}
	index := make(map[string]int)

	for _, version := range versions {
		if len(filter) > 0 && !slices.Contains(filter, strconv.Itoa(version.Version)) {
			continue
		}
		unitCost := UnitCost(version)
		for _, inv := range version.InventoryItems {
			rowValue := unitCost.Mul(decimal.NewFromInt(int64(inv.Quantity)))
			val.TotalUnits += inv.Quantity
			val.TotalValue = val.TotalValue.Add(rowValue)

			i, ok := index[inv.WarehouseID]
			if !ok {
				index[inv.WarehouseID] = len(val.Warehouses)
				val.Warehouses = append(val.Warehouses, WarehouseValue{
					WarehouseID:   inv.WarehouseID,
					WarehouseName: inv.WarehouseName,
					Value:         rowValue,
				})
				continue
			}
			val.Warehouses[i].Value = val.Warehouses[i].Value.Add(rowValue)
		}
	}

	return val
}

// Stats is the listing-view summary of one item.
type Stats struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	TotalUnits int             `json:"total_units"`
	TotalValue decimal.Decimal `json:"total_value"`
}

// ItemStats computes the unfiltered valuation summary for each item.
func ItemStats(items []model.Item) []Stats {
	stats := make([]Stats, 0, len(items))
	for _, item := range items {
		val := ComputeValuation(item.Versions, nil)
		stats = append(stats, Stats{
			ID:         item.ID,
			Name:       item.Name,
			TotalUnits: val.TotalUnits,
			TotalValue: val.TotalValue,
		})
	}
	return stats
}
