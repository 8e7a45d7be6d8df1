package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Environment     string
	LogLevel        string
	Shopify         ShopifyConfig
	Menu            MenuConfig
	Mailchimp       MailchimpConfig
	Strapi          StrapiConfig
	Database        DatabaseConfig
	AdminAPIKeyHash string // ADMIN_API_KEY_HASH: bcrypt hash guarding /internal endpoints; empty disables them
}

type ShopifyConfig struct {
	ShopDomain      string
	StorefrontToken string
	AdminToken      string // optional, only used by admin menu listing
	APIVersion      string
}

// MenuConfig selects the navigation menu the category tree is built from
type MenuConfig struct {
	Handle       string        // e.g. main-menu-1
	FetchTimeout time.Duration // failure or timeout degrades to an empty tree
}

// MailchimpConfig is used for newsletter signups; empty APIKey disables them
type MailchimpConfig struct {
	APIKey string // ends with -<datacenter>, e.g. ...-us21
	ListID string
}

// StrapiConfig is used to read CMS pages; empty BaseURL disables them
type StrapiConfig struct {
	BaseURL string
	Token   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Enabled reports whether persistence is configured
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// Enabled reports whether newsletter signups can reach Mailchimp
func (m MailchimpConfig) Enabled() bool {
	return m.APIKey != "" && m.ListID != ""
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(getEnvOrViper("MENU_FETCH_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MENU_FETCH_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Shopify: ShopifyConfig{
			ShopDomain:      strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			StorefrontToken: strings.TrimSpace(getEnvOrViper("SHOPIFY_STOREFRONT_TOKEN", "")),
			AdminToken:      strings.TrimSpace(getEnvOrViper("SHOPIFY_ADMIN_TOKEN", "")),
			APIVersion:      getEnvOrViper("SHOPIFY_API_VERSION", "2025-01"),
		},
		Menu: MenuConfig{
			Handle:       getEnvOrViper("MAIN_MENU_HANDLE", "main-menu-1"),
			FetchTimeout: timeout,
		},
		Mailchimp: MailchimpConfig{
			APIKey: strings.TrimSpace(getEnvOrViper("MAILCHIMP_API_KEY", "")),
			ListID: strings.TrimSpace(getEnvOrViper("MAILCHIMP_LIST_ID", "")),
		},
		Strapi: StrapiConfig{
			BaseURL: strings.TrimSpace(getEnvOrViper("STRAPI_URL", "")),
			Token:   strings.TrimSpace(getEnvOrViper("STRAPI_TOKEN", "")),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", ""),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		AdminAPIKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
	}

	// Validate required fields
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.Shopify.StorefrontToken == "" {
		return nil, fmt.Errorf("SHOPIFY_STOREFRONT_TOKEN is required")
	}
	if cfg.Menu.FetchTimeout <= 0 {
		return nil, fmt.Errorf("MENU_FETCH_TIMEOUT must be positive")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
