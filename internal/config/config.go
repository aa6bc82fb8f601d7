package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	APIKey          string
	WebhookURL      string
	AppName         string
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// HTTP
	APIPort int

	// Price / FX collaborators
	PriceCacheTTLMinutes int
	RateCacheTTLMinutes  int
	CoinGeckoIDs         map[string]string // extra symbol -> coingecko id

	// Snapshot job
	SnapshotIntervalHours int
	SnapshotOnBoot        bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:          envStr("API_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		AppName:         envStr("APP_NAME", "Coinfolio"),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "coinfolio"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		APIPort: envInt("API_PORT", 3001),

		PriceCacheTTLMinutes: envInt("PRICE_CACHE_TTL_MINUTES", 5),
		RateCacheTTLMinutes:  envInt("RATE_CACHE_TTL_MINUTES", 60),
		CoinGeckoIDs:         parseIDMap(envStr("COINGECKO_IDS", "")),

		SnapshotIntervalHours: envInt("SNAPSHOT_INTERVAL_HOURS", 24),
		SnapshotOnBoot:        envBool("SNAPSHOT_ON_BOOT", false),
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DBUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("API_PORT %d out of range", c.APIPort)
	}
	if c.SnapshotIntervalHours <= 0 {
		return fmt.Errorf("SNAPSHOT_INTERVAL_HOURS must be positive")
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("========== Configuration ==========")
	fmt.Printf("  App: %s\n", c.AppName)
	fmt.Printf("  Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	fmt.Printf("  API port: %d\n", c.APIPort)
	fmt.Printf("  API auth: %s\n", boolLabel(c.APIKey != "", "enabled", "disabled"))
	fmt.Printf("  Price cache TTL: %d min\n", c.PriceCacheTTLMinutes)
	fmt.Printf("  FX cache TTL: %d min\n", c.RateCacheTTLMinutes)
	fmt.Printf("  Snapshot interval: every %d hours\n", c.SnapshotIntervalHours)
	fmt.Printf("  Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("===================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// parseIDMap parses "SYM=coingecko-id,SYM2=id2" into a map.
func parseIDMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(parts[0]))
		id := strings.TrimSpace(parts[1])
		if sym != "" && id != "" {
			out[sym] = id
		}
	}
	return out
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
