// Package ledger holds the pure inventory rules: how a manual quantity
// change maps onto a new quantity plus an audit-history entry, and how stock
// is valued across versions and warehouses. It performs no I/O; the store
// package runs these rules inside a transaction.
package ledger

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/logistix/logistix/internal/model"
)

// Operation selects how a quantity change is interpreted.
type Operation string

const (
	// OpAdjust applies a signed delta to the current quantity.
	OpAdjust Operation = "add"
	// OpSet replaces the current quantity with an absolute value.
	OpSet Operation = "set"
)

// ErrInvalidChange marks client input that must be rejected before any
// storage is touched.
var ErrInvalidChange = errors.New("invalid inventory change")

// Change is a validated quantity-change request. Construct it with
// ParseChange so that all field parsing happens in one place.
type Change struct {
	Operation   Operation
	Magnitude   int
	VersionID   string
	WarehouseID string
}

// ParseChange builds a Change from raw form values. Quantity, versionId and
// warehouseId are all required; an explicit "0" quantity is valid (it is a
// supplied value, not an absent one) even though it cannot move the needle.
func ParseChange(operation, quantity, versionID, warehouseID string) (Change, error) {
	var op Operation
	switch operation {
	case string(OpAdjust), "":
		// The adjust field is the default on the change-inventory form.
		op = OpAdjust
	case string(OpSet):
		op = OpSet
	default:
		return Change{}, fmt.Errorf("%w: unknown operation %q", ErrInvalidChange, operation)
	}

	if quantity == "" {
		return Change{}, fmt.Errorf("%w: quantity required", ErrInvalidChange)
	}
	magnitude, err := strconv.Atoi(quantity)
	if err != nil {
		return Change{}, fmt.Errorf("%w: quantity %q is not an integer", ErrInvalidChange, quantity)
	}

	if versionID == "" {
		return Change{}, fmt.Errorf("%w: versionId required", ErrInvalidChange)
	}
	if warehouseID == "" {
		return Change{}, fmt.Errorf("%w: warehouseId required", ErrInvalidChange)
	}

	return Change{
		Operation:   op,
		Magnitude:   magnitude,
		VersionID:   versionID,
		WarehouseID: warehouseID,
	}, nil
}

// Outcome is the planned result of applying a Change to a current quantity.
type Outcome struct {
	NewQuantity     int
	HistoryQuantity int
	HistoryAction   string
}

// Plan computes the quantity transition and the history entry it produces.
//
// Two long-standing behaviors are kept on purpose, because downstream reports
// depend on them:
//   - a set equal to the current quantity still logs a MANUAL_DEDUCT with
//     magnitude 0;
//   - an adjust that would go below zero is floored at 0, but the history
//     magnitude stays |delta|, so it can overstate the actual change.
func Plan(op Operation, magnitude, oldQuantity int) Outcome {
	if op == OpSet {
		newQuantity := max(0, magnitude)
		action := model.ActionManualDeduct
		if newQuantity > oldQuantity {
			action = model.ActionManualAdd
		}
		return Outcome{
			NewQuantity:     newQuantity,
			HistoryQuantity: abs(newQuantity - oldQuantity),
			HistoryAction:   action,
		}
	}

	action := model.ActionManualDeduct
	if magnitude > 0 {
		action = model.ActionManualAdd
	}
	return Outcome{
		NewQuantity:     max(0, oldQuantity+magnitude),
		HistoryQuantity: abs(magnitude),
		HistoryAction:   action,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
