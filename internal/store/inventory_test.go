package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/logistix/logistix/internal/db"
	"github.com/logistix/logistix/internal/ledger"
	"github.com/logistix/logistix/internal/model"
)

type fixture struct {
	user      *model.User
	item      *model.Item
	version   *model.ItemVersion
	warehouse *model.Warehouse
}

func newFixture(t *testing.T, database *sql.DB) fixture {
	t.Helper()
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "test@example.com", "hash", "Test", "User")
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	item, err := CreateItem(ctx, database, user.ID, "Widget")
	if err != nil {
		t.Fatalf("creating item: %v", err)
	}
	version, err := CreateItemVersion(ctx, database, item.ID, VersionInput{UnitPrice: "10"})
	if err != nil {
		t.Fatalf("creating version: %v", err)
	}
	warehouse, err := CreateWarehouse(ctx, database, user.ID, "Main", true)
	if err != nil {
		t.Fatalf("creating warehouse: %v", err)
	}

	return fixture{user: user, item: item, version: version, warehouse: warehouse}
}

func change(op ledger.Operation, magnitude int, versionID, warehouseID string) ledger.Change {
	return ledger.Change{Operation: op, Magnitude: magnitude, VersionID: versionID, WarehouseID: warehouseID}
}

func TestApplyQuantityChangeCreatesRowLazily(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	inv, err := ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 60, f.version.ID, f.warehouse.ID))
	if err != nil {
		t.Fatalf("ApplyQuantityChange: %v", err)
	}
	if inv.Quantity != 60 {
		t.Errorf("expected quantity 60, got %d", inv.Quantity)
	}

	history, _ := GetItemHistory(ctx, database, f.item.ID)
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].Action != model.ActionManualAdd || history[0].Quantity != 60 {
		t.Errorf("expected MANUAL_ADD of 60, got %s of %d", history[0].Action, history[0].Quantity)
	}
}

func TestApplyQuantityChangeAdjust(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 100, f.version.ID, f.warehouse.ID))

	inv, err := ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpAdjust, -30, f.version.ID, f.warehouse.ID))
	if err != nil {
		t.Fatalf("ApplyQuantityChange: %v", err)
	}
	if inv.Quantity != 70 {
		t.Errorf("expected quantity 70, got %d", inv.Quantity)
	}

	history, _ := GetItemHistory(ctx, database, f.item.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	last := history[1]
	if last.Action != model.ActionManualDeduct || last.Quantity != 30 {
		t.Errorf("expected MANUAL_DEDUCT of 30, got %s of %d", last.Action, last.Quantity)
	}
}

func TestApplyQuantityChangeFloorsAtZero(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 100, f.version.ID, f.warehouse.ID))

	inv, err := ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpAdjust, -150, f.version.ID, f.warehouse.ID))
	if err != nil {
		t.Fatalf("ApplyQuantityChange: %v", err)
	}
	if inv.Quantity != 0 {
		t.Errorf("expected quantity floored at 0, got %d", inv.Quantity)
	}

	// The history magnitude records the requested delta, not the clipped one.
	history, _ := GetItemHistory(ctx, database, f.item.ID)
	last := history[len(history)-1]
	if last.Quantity != 150 {
		t.Errorf("expected history magnitude 150, got %d", last.Quantity)
	}
}

func TestApplyQuantityChangeSetSameValueStillLogs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 50, f.version.ID, f.warehouse.ID))
	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 50, f.version.ID, f.warehouse.ID))

	history, _ := GetItemHistory(ctx, database, f.item.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	last := history[1]
	if last.Action != model.ActionManualDeduct || last.Quantity != 0 {
		t.Errorf("expected MANUAL_DEDUCT of 0 for idempotent set, got %s of %d", last.Action, last.Quantity)
	}
}

func TestApplyQuantityChangeBadReferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	_, err := ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 10, "missing-version", f.warehouse.ID))
	if !errors.Is(err, ErrBadReference) {
		t.Errorf("expected ErrBadReference for unknown version, got %v", err)
	}

	_, err = ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 10, f.version.ID, "missing-warehouse"))
	if !errors.Is(err, ErrBadReference) {
		t.Errorf("expected ErrBadReference for unknown warehouse, got %v", err)
	}

	// A version from another item must not be usable.
	other, _ := CreateItem(ctx, database, f.user.ID, "Other")
	otherVersion, _ := CreateItemVersion(ctx, database, other.ID, VersionInput{})
	_, err = ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 10, otherVersion.ID, f.warehouse.ID))
	if !errors.Is(err, ErrBadReference) {
		t.Errorf("expected ErrBadReference for foreign version, got %v", err)
	}

	// Failed changes leave no trace.
	history, _ := GetItemHistory(ctx, database, f.item.ID)
	if len(history) != 0 {
		t.Errorf("expected no history after rejected changes, got %d entries", len(history))
	}
}

func TestApplyQuantityChangeForeignWarehouse(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	// Another tenant's warehouse must not be usable even with a valid id.
	other, _ := CreateUser(ctx, database, "other@example.com", "hash", "", "")
	foreign, _ := CreateWarehouse(ctx, database, other.ID, "Foreign", true)

	_, err := ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 10, f.version.ID, foreign.ID))
	if !errors.Is(err, ErrBadReference) {
		t.Errorf("expected ErrBadReference for foreign warehouse, got %v", err)
	}

	if _, err := RecordArrival(ctx, database, f.item.ID, f.version.ID, foreign.ID, 10); !errors.Is(err, ErrBadReference) {
		t.Errorf("expected ErrBadReference for arrival into foreign warehouse, got %v", err)
	}

	RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 10)
	if err := MoveStock(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, foreign.ID, 5); !errors.Is(err, ErrBadReference) {
		t.Errorf("expected ErrBadReference for move into foreign warehouse, got %v", err)
	}
}

func TestApplyQuantityChangeRollsBackOnHistoryFailure(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	inv, err := ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 100, f.version.ID, f.warehouse.ID))
	if err != nil {
		t.Fatalf("ApplyQuantityChange: %v", err)
	}

	// Make the history append fail mid-transaction.
	if _, err := database.ExecContext(ctx, `DROP TABLE inventory_history`); err != nil {
		t.Fatalf("dropping history table: %v", err)
	}

	_, err = ApplyQuantityChange(ctx, database, f.item.ID,
		change(ledger.OpSet, 40, f.version.ID, f.warehouse.ID))
	if err == nil {
		t.Fatal("expected error when history cannot be written")
	}

	// The quantity update rolled back with it.
	got, err := GetInventoryItem(ctx, database, inv.ID)
	if err != nil {
		t.Fatalf("GetInventoryItem: %v", err)
	}
	if got.Quantity != 100 {
		t.Errorf("expected quantity unchanged at 100, got %d", got.Quantity)
	}
}

func TestSeparateRowsPerWarehouse(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	second, _ := CreateWarehouse(ctx, database, f.user.ID, "Second", false)

	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 10, f.version.ID, f.warehouse.ID))
	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 20, f.version.ID, second.ID))

	detail, err := LoadItemDetail(ctx, database, f.item.ID)
	if err != nil {
		t.Fatalf("LoadItemDetail: %v", err)
	}
	rows := detail.Versions[0].InventoryItems
	if len(rows) != 2 {
		t.Fatalf("expected 2 inventory rows, got %d", len(rows))
	}
	if rows[0].Quantity+rows[1].Quantity != 30 {
		t.Errorf("expected 30 units across rows, got %d and %d", rows[0].Quantity, rows[1].Quantity)
	}
}

func TestRecordArrival(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	inv, err := RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 100)
	if err != nil {
		t.Fatalf("RecordArrival: %v", err)
	}
	if inv.Quantity != 100 {
		t.Errorf("expected quantity 100, got %d", inv.Quantity)
	}

	// Arrivals accumulate.
	inv, err = RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 50)
	if err != nil {
		t.Fatalf("RecordArrival: %v", err)
	}
	if inv.Quantity != 150 {
		t.Errorf("expected quantity 150, got %d", inv.Quantity)
	}

	history, _ := GetItemHistory(ctx, database, f.item.ID)
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	for _, h := range history {
		if h.Action != model.ActionArrived {
			t.Errorf("expected ARRIVED action, got %s", h.Action)
		}
	}
}

func TestRecordArrivalRejectsNonPositive(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	if _, err := RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 0); err == nil {
		t.Error("expected error for zero arrival quantity")
	}
	if _, err := RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, -5); err == nil {
		t.Error("expected error for negative arrival quantity")
	}
}

func TestMoveStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	second, _ := CreateWarehouse(ctx, database, f.user.ID, "Second", false)
	RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 100)

	if err := MoveStock(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, second.ID, 25); err != nil {
		t.Fatalf("MoveStock: %v", err)
	}

	detail, _ := LoadItemDetail(ctx, database, f.item.ID)
	byWarehouse := make(map[string]int)
	for _, inv := range detail.Versions[0].InventoryItems {
		byWarehouse[inv.WarehouseID] = inv.Quantity
	}
	if byWarehouse[f.warehouse.ID] != 75 {
		t.Errorf("expected 75 at source, got %d", byWarehouse[f.warehouse.ID])
	}
	if byWarehouse[second.ID] != 25 {
		t.Errorf("expected 25 at destination, got %d", byWarehouse[second.ID])
	}

	// One move entry against the source row, carrying both warehouses.
	history, _ := GetItemHistory(ctx, database, f.item.ID)
	var moves []model.InventoryHistory
	for _, h := range history {
		if h.Action == model.ActionWarehouseMove {
			moves = append(moves, h)
		}
	}
	if len(moves) != 1 {
		t.Fatalf("expected 1 move entry, got %d", len(moves))
	}
	if moves[0].FromWarehouseID != f.warehouse.ID || moves[0].ToWarehouseID != second.ID {
		t.Errorf("unexpected move endpoints: %+v", moves[0])
	}
	if moves[0].Quantity != 25 {
		t.Errorf("expected move quantity 25, got %d", moves[0].Quantity)
	}
}

func TestMoveStockInsufficientQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	second, _ := CreateWarehouse(ctx, database, f.user.ID, "Second", false)
	RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 10)

	if err := MoveStock(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, second.ID, 25); err == nil {
		t.Error("expected error moving more than available")
	}
	if err := MoveStock(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, f.warehouse.ID, 5); err == nil {
		t.Error("expected error moving to the same warehouse")
	}
}

func TestHistoryIsOrderedOldestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	f := newFixture(t, database)

	RecordArrival(ctx, database, f.item.ID, f.version.ID, f.warehouse.ID, 100)
	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpAdjust, -10, f.version.ID, f.warehouse.ID))
	ApplyQuantityChange(ctx, database, f.item.ID, change(ledger.OpSet, 95, f.version.ID, f.warehouse.ID))

	history, err := GetItemHistory(ctx, database, f.item.ID)
	if err != nil {
		t.Fatalf("GetItemHistory: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history entries, got %d", len(history))
	}
	want := []string{model.ActionArrived, model.ActionManualDeduct, model.ActionManualAdd}
	for i, action := range want {
		if history[i].Action != action {
			t.Errorf("entry %d: expected %s, got %s", i, action, history[i].Action)
		}
	}
	if history[1].Version != 1 || history[1].WarehouseName != "Main" {
		t.Errorf("expected joined version and warehouse name, got %+v", history[1])
	}
}
