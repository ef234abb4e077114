package ledger

import (
	"strconv"
	"testing"

	"github.com/logistix/logistix/internal/model"
	"github.com/shopspring/decimal"
)

func version(number int, unitPrice, serviceCost, taxCost, deductible string, rows ...model.InventoryItem) model.ItemVersion {
	return model.ItemVersion{
		ID:                "v" + strconv.Itoa(number),
		Version:           number,
		UnitPrice:         decimal.RequireFromString(unitPrice),
		ServiceCost:       decimal.RequireFromString(serviceCost),
		TaxCost:           decimal.RequireFromString(taxCost),
		DeductibleTaxCost: decimal.RequireFromString(deductible),
		InventoryItems:    rows,
	}
}

func TestUnitCost(t *testing.T) {
	v := version(1, "5.50", "0.30", "0.50", "0.20")
	if got := UnitCost(v); !got.Equal(decimal.RequireFromString("6.10")) {
		t.Errorf("expected unit cost 6.10, got %s", got)
	}
}

func TestUnitCostCanGoNegative(t *testing.T) {
	v := version(1, "1.00", "0", "0", "5.00")
	if got := UnitCost(v); !got.Equal(decimal.RequireFromString("-4.00")) {
		t.Errorf("expected unit cost -4.00, got %s", got)
	}
}

func TestComputeValuation(t *testing.T) {
	versions := []model.ItemVersion{
		version(1, "5.50", "0.30", "0.50", "0.20", // unit cost 6.10
			model.InventoryItem{WarehouseID: "main", WarehouseName: "Main", Quantity: 100},
		),
		version(2, "6.20", "0.35", "0.55", "0.25", // unit cost 6.85
			model.InventoryItem{WarehouseID: "main", WarehouseName: "Main", Quantity: 40},
			model.InventoryItem{WarehouseID: "second", WarehouseName: "Second", Quantity: 10},
		),
	}

	val := ComputeValuation(versions, nil)

	if val.TotalUnits != 150 {
		t.Errorf("expected 150 total units, got %d", val.TotalUnits)
	}
	// 100*6.10 + 50*6.85 = 610 + 342.50
	if want := decimal.RequireFromString("952.50"); !val.TotalValue.Equal(want) {
		t.Errorf("expected total value %s, got %s", want, val.TotalValue)
	}

	if len(val.Warehouses) != 2 {
		t.Fatalf("expected 2 warehouses in distribution, got %d", len(val.Warehouses))
	}
	// First-seen order: main before second.
	if val.Warehouses[0].WarehouseID != "main" || val.Warehouses[1].WarehouseID != "second" {
		t.Errorf("unexpected warehouse order: %+v", val.Warehouses)
	}
	// Main holds 100*6.10 + 40*6.85 = 884.
	if want := decimal.RequireFromString("884.00"); !val.Warehouses[0].Value.Equal(want) {
		t.Errorf("expected main value %s, got %s", want, val.Warehouses[0].Value)
	}
	if want := decimal.RequireFromString("68.50"); !val.Warehouses[1].Value.Equal(want) {
		t.Errorf("expected second value %s, got %s", want, val.Warehouses[1].Value)
	}
}

func TestComputeValuationVersionFilter(t *testing.T) {
	versions := []model.ItemVersion{
		version(1, "10", "0", "0", "0",
			model.InventoryItem{WarehouseID: "main", Quantity: 5},
		),
		version(2, "20", "0", "0", "0",
			model.InventoryItem{WarehouseID: "main", Quantity: 3},
		),
	}

	val := ComputeValuation(versions, []string{"2"})
	if val.TotalUnits != 3 {
		t.Errorf("expected 3 units for filtered valuation, got %d", val.TotalUnits)
	}
	if want := decimal.RequireFromString("60"); !val.TotalValue.Equal(want) {
		t.Errorf("expected total value %s, got %s", want, val.TotalValue)
	}

	// Per-version valuations add up to the unfiltered total.
	v1 := ComputeValuation(versions, []string{"1"})
	all := ComputeValuation(versions, nil)
	if sum := v1.TotalValue.Add(val.TotalValue); !sum.Equal(all.TotalValue) {
		t.Errorf("filtered valuations sum to %s, unfiltered total is %s", sum, all.TotalValue)
	}
}

func TestComputeValuationEmpty(t *testing.T) {
	val := ComputeValuation(nil, nil)
	if val.TotalUnits != 0 || !val.TotalValue.IsZero() || len(val.Warehouses) != 0 {
		t.Errorf("expected empty valuation, got %+v", val)
	}
}

func TestItemStats(t *testing.T) {
	items := []model.Item{
		{ID: "a", Name: "Mops", Versions: []model.ItemVersion{
			version(1, "6.10", "0", "0", "0",
				model.InventoryItem{WarehouseID: "main", Quantity: 10},
			),
		}},
		{ID: "b", Name: "Buckets"},
	}

	stats := ItemStats(items)
	if len(stats) != 2 {
		t.Fatalf("expected 2 stats entries, got %d", len(stats))
	}
	if stats[0].TotalUnits != 10 {
		t.Errorf("expected 10 units for first item, got %d", stats[0].TotalUnits)
	}
	if want := decimal.RequireFromString("61"); !stats[0].TotalValue.Equal(want) {
		t.Errorf("expected value %s, got %s", want, stats[0].TotalValue)
	}
	if stats[1].TotalUnits != 0 || !stats[1].TotalValue.IsZero() {
		t.Errorf("expected zero stats for versionless item, got %+v", stats[1])
	}
}
