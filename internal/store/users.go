package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/logistix/logistix/internal/model"
)

// CreateUser creates a new user account.
func CreateUser(ctx context.Context, db *sql.DB, email, passwordHash, firstName, lastName string) (*model.User, error) {
	id := uuid.NewString()
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name) VALUES (?, ?, ?, ?, ?)`,
		id, email, passwordHash, firstName, lastName,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db *sql.DB, id string) (*model.User, error) {
	u := &model.User{}
	var firstName, lastName, shop sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, shop, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &shop, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.Shop = shop.String
	return u, nil
}

// GetUserByEmail returns a user by email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u := &model.User{}
	var firstName, lastName, shop sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, first_name, last_name, shop, created_at, updated_at
		 FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &firstName, &lastName, &shop, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	u.FirstName = firstName.String
	u.LastName = lastName.String
	u.Shop = shop.String
	return u, nil
}

// UpsertUser syncs a user's profile by ID, creating the row on first login.
// Email and names are always refreshed; the linked shop is only overwritten
// when the incoming value is non-empty, so a login without a shop never
// clears an existing link.
func UpsertUser(ctx context.Context, db *sql.DB, id, email, passwordHash, firstName, lastName, shop string) (*model.User, error) {
	_, err := db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, first_name, last_name, shop)
		 VALUES (?, ?, ?, ?, ?, NULLIF(?, ''))
		 ON CONFLICT (id) DO UPDATE SET
		     email = excluded.email,
		     first_name = excluded.first_name,
		     last_name = excluded.last_name,
		     shop = COALESCE(excluded.shop, users.shop),
		     updated_at = CURRENT_TIMESTAMP`,
		id, email, passwordHash, firstName, lastName, shop,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	return GetUser(ctx, db, id)
}

// SetUserShop links a shop domain to a user. Empty values are ignored to
// keep the shop field monotonic.
func SetUserShop(ctx context.Context, db *sql.DB, id, shop string) error {
	if shop == "" {
		return nil
	}
	_, err := db.ExecContext(ctx,
		`UPDATE users SET shop = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		shop, id,
	)
	if err != nil {
		return fmt.Errorf("setting user shop: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
