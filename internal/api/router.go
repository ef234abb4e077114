package api

import (
	"database/sql"
	"net/http"

	"github.com/logistix/logistix/internal/config"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, shopify config.ShopifyConfig) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	warehousesHandler := &WarehousesHandler{DB: db}
	shopifyHandler := &ShopifyHandler{DB: db, Config: shopify}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated account routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))

	// Items, versions and inventory.
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("POST /api/items/{id}/versions", authMW(http.HandlerFunc(itemsHandler.CreateVersion)))
	mux.Handle("POST /api/items/{id}/inventory", authMW(http.HandlerFunc(itemsHandler.ChangeInventory)))
	mux.Handle("GET /api/items/{id}/history", authMW(http.HandlerFunc(itemsHandler.GetHistory)))

	// Warehouses.
	mux.Handle("GET /api/warehouses", authMW(http.HandlerFunc(warehousesHandler.List)))
	mux.Handle("POST /api/warehouses", authMW(http.HandlerFunc(warehousesHandler.Create)))
	mux.Handle("GET /api/warehouses/{id}", authMW(http.HandlerFunc(warehousesHandler.Get)))
	mux.Handle("DELETE /api/warehouses/{id}", authMW(http.HandlerFunc(warehousesHandler.Delete)))

	// Shopify store linking. The callback is hit by the external redirect and
	// authenticates via state + correlation cookie instead of a bearer token.
	mux.Handle("POST /api/shopify/connect", authMW(http.HandlerFunc(shopifyHandler.Connect)))
	mux.HandleFunc("GET /api/shopify/callback", shopifyHandler.Callback)
	mux.Handle("GET /api/shopify/status", authMW(http.HandlerFunc(shopifyHandler.Status)))

	return mux
}
