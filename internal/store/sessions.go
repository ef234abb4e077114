package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/logistix/logistix/internal/model"
)

// UpsertSession stores or refreshes a Shopify session row. Session ids are
// stable per shop ("offline_<shop>"), so reconnecting a shop replaces the
// previous token.
func UpsertSession(ctx context.Context, db *sql.DB, s *model.Session) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO sessions (id, shop, state, access_token, scope, expires, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     shop = excluded.shop,
		     state = excluded.state,
		     access_token = excluded.access_token,
		     scope = excluded.scope,
		     expires = excluded.expires,
		     user_id = excluded.user_id`,
		s.ID, s.Shop, s.State, s.AccessToken, s.Scope, s.Expires, s.UserID,
	)
	if err != nil {
		return fmt.Errorf("upserting session: %w", err)
	}
	return nil
}

// GetSession returns a session by ID.
func GetSession(ctx context.Context, db *sql.DB, id string) (*model.Session, error) {
	return scanSession(db.QueryRowContext(ctx,
		`SELECT id, shop, state, access_token, scope, expires, user_id, created_at
		 FROM sessions WHERE id = ?`, id,
	))
}

// GetUserSession returns a user's Shopify session. With a shop it looks for
// that shop's session; without one it falls back to the user's most recently
// expiring session.
func GetUserSession(ctx context.Context, db *sql.DB, userID, shop string) (*model.Session, error) {
	if shop == "" {
		return scanSession(db.QueryRowContext(ctx,
			`SELECT id, shop, state, access_token, scope, expires, user_id, created_at
			 FROM sessions WHERE user_id = ?
			 ORDER BY expires DESC LIMIT 1`, userID,
		))
	}

	return scanSession(db.QueryRowContext(ctx,
		`SELECT id, shop, state, access_token, scope, expires, user_id, created_at
		 FROM sessions WHERE user_id = ? AND shop = ? LIMIT 1`, userID, shop,
	))
}

// DeleteSession removes a session.
func DeleteSession(ctx context.Context, db *sql.DB, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func scanSession(row *sql.Row) (*model.Session, error) {
	s := &model.Session{}
	var state, token, scope sql.NullString
	var expires sql.NullTime
	err := row.Scan(&s.ID, &s.Shop, &state, &token, &scope, &expires, &s.UserID, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	s.State = state.String
	s.AccessToken = token.String
	s.Scope = scope.String
	if expires.Valid {
		t := expires.Time
		s.Expires = &t
	}
	return s, nil
}
