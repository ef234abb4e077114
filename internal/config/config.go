// Package config loads server configuration from the environment, with an
// optional .env file for development.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all server configuration.
type Config struct {
	Server  ServerConfig
	Shopify ShopifyConfig
}

// ServerConfig holds HTTP server and database settings.
type ServerConfig struct {
	Addr    string
	DBPath  string
	LogPath string
}

// ShopifyConfig holds the credentials for linking tenant accounts to a
// Shopify store. AppURL is the public base URL the OAuth callback lands on.
type ShopifyConfig struct {
	APIKey    string
	APISecret string
	AppURL    string
	Scopes    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Addr:    getEnv("LOGISTIX_ADDR", ":8080"),
			DBPath:  getEnv("LOGISTIX_DB", "logistix.sqlite3"),
			LogPath: getEnv("LOGISTIX_LOG", ""),
		},
		Shopify: ShopifyConfig{
			APIKey:    getEnv("SHOPIFY_API_KEY", ""),
			APISecret: getEnv("SHOPIFY_API_SECRET", ""),
			AppURL:    getEnv("SHOPIFY_APP_URL", "http://localhost:8080"),
			Scopes:    getEnv("SCOPES", "read_products"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
