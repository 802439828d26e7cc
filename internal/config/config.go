package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port string
	// Coordinator
	ScanInterval time.Duration
	CoinID       string
	Currency     string
	TradingPairs string
	SymbolMap    string
	// Provider
	Provider string
	APIBase  string
	// Redis (snapshot mirror)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration
	// Postgres (price history)
	DatabaseURL string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func clampSeconds(s string, def, min, max int) time.Duration {
	sec := atoiDef(s, def)
	if sec < min {
		sec = min
	}
	if sec > max {
		sec = max
	}
	return time.Duration(sec) * time.Second
}

// Load reads environment variables and applies defaults. The scan interval
// is clamped to the supported 60s..86400s range.
func Load() Config {
	return Config{
		Env:           getEnv("ENV", "local"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnv("PORT", "8080"),
		ScanInterval:  clampSeconds(getEnv("SCAN_INTERVAL_SECONDS", "900"), 900, 60, 86400),
		CoinID:        getEnv("COIN_ID", "bitcoin"),
		Currency:      getEnv("CURRENCY", "aud"),
		TradingPairs:  getEnv("TRADING_PAIRS", ""),
		SymbolMap:     getEnv("SYMBOL_MAP", ""),
		Provider:      getEnv("PROVIDER", "coingecko"),
		APIBase:       getEnv("COINGECKO_API_BASE", "https://api.coingecko.com/api/v3"),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       atoiDef(getEnv("REDIS_DB", "0"), 0),
		SnapshotTTL:   time.Duration(atoiDef(getEnv("SNAPSHOT_TTL_SECONDS", "3600"), 3600)) * time.Second,
		DatabaseURL:   getEnv("DATABASE_URL", ""),
	}
}
