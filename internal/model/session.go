package model

import "time"

// Session is a Shopify store session linked to a user account. One user can
// hold sessions for multiple shops; the link is established by the OAuth
// callback via the correlation cookie.
type Session struct {
	ID          string     `json:"id"`
	Shop        string     `json:"shop"`
	State       string     `json:"-"`
	AccessToken string     `json:"-"`
	Scope       string     `json:"scope,omitempty"`
	Expires     *time.Time `json:"expires,omitempty"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
}
