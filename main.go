package main

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"time"
)

func generateSessionKey() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func main() {
	cfg := LoadConfig()

	var store Store
	if os.Getenv("STORE") == "memory" {
		log.Printf("Using in-memory store (data is not persisted)")
		store = NewMemoryStore()
	} else {
		pg, err := OpenPostgresStore(cfg)
		if err != nil {
			log.Fatal(err)
		}
		store = pg
	}

	var cache Cache = noopCache{}
	if cfg.RedisAddr != "" {
		cache = NewRedisCache(cfg.RedisAddr)
	}

	sessionKey := cfg.SessionKey
	if len(sessionKey) < 32 {
		if sessionKey != "" {
			log.Printf("Warning: SESSION_KEY is too short, generating a new one")
		}
		sessionKey = generateSessionKey()
	}

	app := NewApp(store, cache, sessionKey)
	mux := app.routes()

	addr := cfg.Bind + ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		log.Printf("Starting HTTPS server on %s", addr)
		log.Fatal(http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, mux))
	} else {
		log.Printf("Starting HTTP server on %s (set TLS_CERT_FILE and TLS_KEY_FILE for HTTPS)", addr)
		log.Fatal(http.ListenAndServe(addr, mux))
	}
}

func (app *App) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/signup", app.rateLimit(5, 15*time.Minute)(app.handleSignup))
	mux.HandleFunc("/login", app.rateLimit(5, 15*time.Minute)(app.handleLogin))
	mux.HandleFunc("/logout", app.handleLogout)
	mux.HandleFunc("/debts", app.requireAuth(app.handleDebts))
	mux.HandleFunc("/debts/create", app.requireAuth(app.handleDebtCreate))
	mux.HandleFunc("/debts/view", app.requireAuth(app.handleDebtView))
	mux.HandleFunc("/debts/update", app.requireAuth(app.handleDebtUpdate))
	mux.HandleFunc("/debts/delete", app.requireAuth(app.handleDebtDelete))
	mux.HandleFunc("/debts/project", app.requireAuth(app.handleProject))
	mux.HandleFunc("/payments", app.requireAuth(app.handlePayments))
	mux.HandleFunc("/payments/add", app.requireAuth(app.handlePaymentAdd))
	mux.HandleFunc("/payments/delete", app.requireAuth(app.handlePaymentDelete))
	mux.HandleFunc("/plan", app.requireAuth(app.handlePlan))
	return mux
}
