package api

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/logistix/logistix/internal/config"
	"github.com/logistix/logistix/internal/model"
	"github.com/logistix/logistix/internal/store"
)

// oauthCookie is the short-lived cookie that correlates the external OAuth
// callback with the internal user who started the flow.
const oauthCookie = "shopify_oauth_user_id"

// oauthCookieMaxAge bounds how long a started OAuth flow stays valid.
const oauthCookieMaxAge = 600

// ShopifyHandler links tenant accounts to a Shopify store session.
type ShopifyHandler struct {
	DB     *sql.DB
	Config config.ShopifyConfig

	// HTTPClient performs the code-for-token exchange. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// TokenEndpoint returns the access-token URL for a shop. Overridable in
	// tests.
	TokenEndpoint func(shop string) string
}

type shopifyStatusResponse struct {
	Connected bool   `json:"connected"`
	Shop      string `json:"shop,omitempty"`
}

// Connect handles POST /api/shopify/connect. It requires the user to have a
// shop domain on file, stores a fresh state nonce on the pending session row,
// sets the correlation cookie and returns the authorize URL the client should
// redirect to.
func (h *ShopifyHandler) Connect(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user.Shop == "" {
		jsonError(w, http.StatusBadRequest, "no shop configured")
		return
	}

	state := uuid.NewString()
	session := &model.Session{
		ID:     sessionID(user.Shop),
		Shop:   user.Shop,
		State:  state,
		UserID: user.ID,
	}
	if err := store.UpsertSession(r.Context(), h.DB, session); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to start shopify auth")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthCookie,
		Value:    user.ID,
		Path:     "/",
		MaxAge:   oauthCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	authURL := fmt.Sprintf(
		"https://%s/admin/oauth/authorize?client_id=%s&scope=%s&redirect_uri=%s&state=%s",
		user.Shop,
		url.QueryEscape(h.Config.APIKey),
		url.QueryEscape(h.Config.Scopes),
		url.QueryEscape(h.Config.AppURL+"/api/shopify/callback"),
		state,
	)

	jsonResponse(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// Callback handles GET /api/shopify/callback. The state must match the
// pending session, the correlation cookie must identify the user who started
// the flow, and the authorization code is exchanged for an access token
// before the session is linked.
func (h *ShopifyHandler) Callback(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if shop == "" || state == "" || code == "" {
		jsonError(w, http.StatusBadRequest, "shop, state and code required")
		return
	}

	cookie, err := r.Cookie(oauthCookie)
	if err != nil || cookie.Value == "" {
		jsonError(w, http.StatusBadRequest, "missing or expired auth correlation cookie")
		return
	}
	userID := cookie.Value

	session, err := store.GetSession(r.Context(), h.DB, sessionID(shop))
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if session == nil || session.State == "" || session.State != state || session.UserID != userID {
		jsonError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	token, scope, err := h.exchangeToken(shop, code)
	if err != nil {
		slog.Error("shopify token exchange failed", "shop", shop, "error", err)
		jsonError(w, http.StatusBadGateway, "token exchange failed")
		return
	}

	expires := time.Now().Add(24 * time.Hour)
	session.State = ""
	session.AccessToken = token
	session.Scope = scope
	session.Expires = &expires
	if err := store.UpsertSession(r.Context(), h.DB, session); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to store session")
		return
	}

	// Shop assignment is monotonic; linking never clears an existing value.
	if err := store.SetUserShop(r.Context(), h.DB, userID, shop); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to link shop")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.Info("shopify store linked", "shop", shop, "user", userID)
	jsonResponse(w, http.StatusOK, map[string]any{"linked": true, "shop": shop})
}

// Status handles GET /api/shopify/status.
func (h *ShopifyHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	session, err := store.GetUserSession(r.Context(), h.DB, user.ID, user.Shop)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := shopifyStatusResponse{}
	if session != nil && session.AccessToken != "" {
		resp.Connected = true
		resp.Shop = session.Shop
	}
	jsonResponse(w, http.StatusOK, resp)
}

// exchangeToken trades the authorization code for an access token.
func (h *ShopifyHandler) exchangeToken(shop, code string) (token, scope string, err error) {
	endpoint := fmt.Sprintf("https://%s/admin/oauth/access_token", shop)
	if h.TokenEndpoint != nil {
		endpoint = h.TokenEndpoint(shop)
	}

	client := h.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(map[string]string{
		"client_id":     h.Config.APIKey,
		"client_secret": h.Config.APISecret,
		"code":          code,
	})
	if err != nil {
		return "", "", fmt.Errorf("encoding token request: %w", err)
	}

	resp, err := client.Post(endpoint, "application/json", strings.NewReader(string(body)))
	if err != nil {
		return "", "", fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", fmt.Errorf("decoding token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", "", fmt.Errorf("empty access token")
	}

	return result.AccessToken, result.Scope, nil
}

// sessionID is the stable offline session id for a shop.
func sessionID(shop string) string {
	return "offline_" + shop
}
