package store

import (
	"context"
	"testing"

	"github.com/logistix/logistix/internal/db"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "alice@example.com", "hash", "Alice", "Smith")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Email != "alice@example.com" || user.FirstName != "Alice" {
		t.Errorf("unexpected user: %+v", user)
	}

	byEmail, _ := GetUserByEmail(ctx, database, "alice@example.com")
	if byEmail == nil || byEmail.ID != user.ID {
		t.Errorf("expected lookup by email to find the user")
	}

	missing, err := GetUser(ctx, database, "nope")
	if err != nil || missing != nil {
		t.Errorf("expected nil for missing user, got %v, %v", missing, err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "alice@example.com", "hash", "", "")
	if _, err := CreateUser(ctx, database, "alice@example.com", "hash", "", ""); err == nil {
		t.Error("expected error for duplicate email")
	}
}

func TestUpsertUserShopIsMonotonic(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := UpsertUser(ctx, database, "u1", "bob@example.com", "hash", "Bob", "", "shop-a.myshopify.com")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if user.Shop != "shop-a.myshopify.com" {
		t.Errorf("expected shop set, got %q", user.Shop)
	}

	// A sync without a shop must not clear the link.
	user, err = UpsertUser(ctx, database, "u1", "bob@example.com", "hash", "Bobby", "", "")
	if err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	if user.Shop != "shop-a.myshopify.com" {
		t.Errorf("expected shop preserved across upsert, got %q", user.Shop)
	}
	if user.FirstName != "Bobby" {
		t.Errorf("expected first name refreshed, got %q", user.FirstName)
	}

	// A new shop value replaces the old one.
	user, _ = UpsertUser(ctx, database, "u1", "bob@example.com", "hash", "Bobby", "", "shop-b.myshopify.com")
	if user.Shop != "shop-b.myshopify.com" {
		t.Errorf("expected shop replaced, got %q", user.Shop)
	}
}

func TestSetUserShopIgnoresEmpty(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "carol@example.com", "hash", "", "")
	SetUserShop(ctx, database, user.ID, "shop.myshopify.com")
	SetUserShop(ctx, database, user.ID, "")

	got, _ := GetUser(ctx, database, user.ID)
	if got.Shop != "shop.myshopify.com" {
		t.Errorf("expected shop preserved, got %q", got.Shop)
	}
}
