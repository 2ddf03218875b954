package main

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBMaxOpen  int

	RedisAddr string

	Bind        string
	Port        string
	TLSCertFile string
	TLSKeyFile  string

	SessionKey string
}

// LoadConfig reads .env (if present) and the environment; real environment
// variables win over .env entries, which godotenv guarantees by not
// overriding existing keys.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := Config{
		DBHost:      envOr("DB_HOST", "localhost"),
		DBPort:      envOr("DB_PORT", "5432"),
		DBUser:      envOr("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      envOr("DB_NAME", "debtledger"),
		DBSSLMode:   envOr("DB_SSLMODE", "disable"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		Bind:        envOr("BIND", "127.0.0.1"),
		Port:        envOr("PORT", "8100"),
		TLSCertFile: os.Getenv("TLS_CERT_FILE"),
		TLSKeyFile:  os.Getenv("TLS_KEY_FILE"),
		SessionKey:  os.Getenv("SESSION_KEY"),
	}
	if p := os.Getenv("DB_MAX_OPEN"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			cfg.DBMaxOpen = n
		}
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
