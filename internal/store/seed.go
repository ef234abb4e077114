package store

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/logistix/logistix/internal/ledger"
)

// Seed loads a small demo tenant: two items with two cost versions each,
// stock across two warehouses and a mixed audit history (arrivals, a manual
// deduction and a warehouse move). Returns the demo user's email.
func Seed(ctx context.Context, db *sql.DB) (string, error) {
	const email = "demo@example.com"

	if existing, err := GetUserByEmail(ctx, db, email); err != nil {
		return "", err
	} else if existing != nil {
		return "", fmt.Errorf("demo user %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo"), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing demo password: %w", err)
	}

	user, err := CreateUser(ctx, db, email, string(hash), "Demo", "User")
	if err != nil {
		return "", err
	}
	if err := SetUserShop(ctx, db, user.ID, "test-shop.myshopify.com"); err != nil {
		return "", err
	}

	main, err := CreateWarehouse(ctx, db, user.ID, "Main Warehouse", true)
	if err != nil {
		return "", err
	}
	second, err := CreateWarehouse(ctx, db, user.ID, "Secondary Warehouse", false)
	if err != nil {
		return "", err
	}

	// Blue Mops: two versions, stock only at the main warehouse.
	blueMops, err := CreateItem(ctx, db, user.ID, "Blue Mops")
	if err != nil {
		return "", err
	}
	mopsV1, err := CreateItemVersion(ctx, db, blueMops.ID, VersionInput{
		UnitPrice: "5.50", ServiceCost: "0.30", TaxCost: "0.50", DeductibleTaxCost: "0.20",
		Volume: "0.05", Weight: "0.8", Currency: "USD",
		Supplier: "Cleaning Supplies Co", Note: "Standard blue color",
	})
	if err != nil {
		return "", err
	}
	mopsV2, err := CreateItemVersion(ctx, db, blueMops.ID, VersionInput{
		UnitPrice: "6.20", ServiceCost: "0.35", TaxCost: "0.55", DeductibleTaxCost: "0.25",
		Volume: "0.05", Weight: "0.8", Currency: "USD",
		Supplier: "Cleaning Supplies Co", Note: "Premium blue color",
	})
	if err != nil {
		return "", err
	}

	if _, err := RecordArrival(ctx, db, blueMops.ID, mopsV1.ID, main.ID, 100); err != nil {
		return "", err
	}
	if _, err := RecordArrival(ctx, db, blueMops.ID, mopsV2.ID, main.ID, 60); err != nil {
		return "", err
	}
	// 10 premium mops written off after a stock count.
	if _, err := ApplyQuantityChange(ctx, db, blueMops.ID, adjustChange(mopsV2.ID, main.ID, -10)); err != nil {
		return "", err
	}

	// Red Buckets: stock split across both warehouses, with a move between
	// them on record.
	redBuckets, err := CreateItem(ctx, db, user.ID, "Red Buckets")
	if err != nil {
		return "", err
	}
	bucketsV1, err := CreateItemVersion(ctx, db, redBuckets.ID, VersionInput{
		UnitPrice: "12.00", ServiceCost: "0.80", TaxCost: "1.20", DeductibleTaxCost: "0.50",
		Volume: "0.1", Weight: "1.5", Currency: "USD",
		Supplier: "Bucket World Inc", Note: "10L capacity",
	})
	if err != nil {
		return "", err
	}
	bucketsV2, err := CreateItemVersion(ctx, db, redBuckets.ID, VersionInput{
		UnitPrice: "11.50", ServiceCost: "0.75", TaxCost: "1.15", DeductibleTaxCost: "0.48",
		Volume: "0.1", Weight: "1.5", Currency: "USD",
		Supplier: "Bucket World Inc", Note: "10L capacity - improved design",
	})
	if err != nil {
		return "", err
	}

	if _, err := RecordArrival(ctx, db, redBuckets.ID, bucketsV1.ID, main.ID, 200); err != nil {
		return "", err
	}
	if _, err := RecordArrival(ctx, db, redBuckets.ID, bucketsV2.ID, second.ID, 100); err != nil {
		return "", err
	}
	if err := MoveStock(ctx, db, redBuckets.ID, bucketsV2.ID, second.ID, main.ID, 25); err != nil {
		return "", err
	}

	return email, nil
}

func adjustChange(versionID, warehouseID string, delta int) ledger.Change {
	return ledger.Change{
		Operation:   ledger.OpAdjust,
		Magnitude:   delta,
		VersionID:   versionID,
		WarehouseID: warehouseID,
	}
}
