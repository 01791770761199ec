package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Optional audit-log database. When neither DATABASE_URL nor DB_HOST is
	// set, the server runs without persistence (every endpoint is a stateless
	// Shopify proxy; the audit log is the only thing stored).
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Shopify ShopifyConfig

	// AllowedOrigins is a comma-separated allowlist of origins allowed to call
	// the storefront-facing RFQ endpoints (the theme frontend). Example:
	//   https://your-store.myshopify.com,http://localhost:9292
	AllowedOrigins []string

	// AdminEmails is a comma-separated allowlist of emails permitted to call
	// admin endpoints (quote update, invoice send).
	AdminEmails []string

	// UploadMaxBytes caps the decoded size of an uploaded file.
	UploadMaxBytes int64
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type ShopifyConfig struct {
	// ShopDomain and AccessToken identify the single store this backend
	// proxies for (custom-app Admin API token, usually "shpat_...").
	ShopDomain  string
	AccessToken string

	APIKey    string
	APISecret string

	APIVersion string

	// UploadMetaobjectType is the metaobject definition used for fallback
	// file records when staged uploads are unavailable.
	UploadMetaobjectType string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	// Serverless/container platforms set PORT. Prefer it when HTTP_ADDR isn't
	// explicitly set.
	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "rfqapi"),
			User:     env("DB_USER", "rfqapi"),
			Password: os.Getenv("DB_PASSWORD"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			ShopDomain:           os.Getenv("SHOPIFY_SHOP_DOMAIN"),
			AccessToken:          os.Getenv("SHOPIFY_ACCESS_TOKEN"),
			APIKey:               os.Getenv("SHOPIFY_API_KEY"),
			APISecret:            os.Getenv("SHOPIFY_API_SECRET"),
			APIVersion:           env("SHOPIFY_API_VERSION", "2025-10"),
			UploadMetaobjectType: env("UPLOAD_METAOBJECT_TYPE", "rfq_file"),
		},

		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:9292"),
		AdminEmails:    envList("ADMIN_EMAILS", ""),

		UploadMaxBytes: 20 << 20,
	}
}

// HasDatabase reports whether an audit-log database is configured.
func (c Config) HasDatabase() bool {
	return c.DatabaseURL != "" || c.DB.Host != ""
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
