package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type App struct {
	store         Store
	ledger        *Ledger
	cache         Cache
	sessionKey    string
	rateLimiter   map[string][]time.Time
	rateLimiterMu sync.Mutex
}

func NewApp(store Store, cache Cache, sessionKey string) *App {
	return &App{
		store:       store,
		ledger:      NewLedger(store, cache),
		cache:       cache,
		sessionKey:  sessionKey,
		rateLimiter: make(map[string][]time.Time),
	}
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Invariant violations
// are logged loudly and reported as internal errors; the operation that hit
// one has already been rolled back.
func (a *App) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvariant):
		log.Printf("INVARIANT VIOLATION: %v", err)
		http.Error(w, "internal inconsistency", http.StatusInternalServerError)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *App) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		http.Error(w, "email is required", 400)
		return
	}
	if len(req.Password) < 8 {
		http.Error(w, "password must be at least 8 characters", 400)
		return
	}
	if _, err := a.store.GetUserByEmail(r.Context(), req.Email); err == nil {
		http.Error(w, "email already registered", 409)
		return
	}
	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		a.writeError(w, err)
		return
	}
	u, err := a.store.CreateUser(r.Context(), req.Email, passwordHash)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		http.Error(w, "could not create account", 500)
		return
	}
	a.setSessionCookie(w, u.ID)
	a.writeJSON(w, http.StatusCreated, u)
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", 405)
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", 400)
		return
	}
	u, err := a.store.GetUserByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil || !checkPasswordHash(req.Password, u.PasswordHash) {
		http.Error(w, "invalid email or password", 401)
		return
	}
	a.setSessionCookie(w, u.ID)
	a.writeJSON(w, http.StatusOK, u)
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) setSessionCookie(w http.ResponseWriter, userID uuid.UUID) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    userID.String() + ":" + a.sessionKey,
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

type contextKey string

const userIDKey contextKey = "userID"

func (a *App) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie("session")
		if err != nil {
			http.Error(w, "unauthorized", 401)
			return
		}
		parts := strings.SplitN(sessionCookie.Value, ":", 2)
		if len(parts) != 2 || parts[1] != a.sessionKey {
			http.Error(w, "unauthorized", 401)
			return
		}
		userID, err := uuid.Parse(parts[0])
		if err != nil {
			http.Error(w, "unauthorized", 401)
			return
		}
		if _, err := a.store.GetUserByID(r.Context(), userID); err != nil {
			http.Error(w, "unauthorized", 401)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func getUserID(r *http.Request) uuid.UUID {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func (a *App) rateLimit(maxAttempts int, window time.Duration) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			now := time.Now()

			a.rateLimiterMu.Lock()
			valid := a.rateLimiter[key][:0]
			for _, t := range a.rateLimiter[key] {
				if now.Sub(t) < window {
					valid = append(valid, t)
				}
			}
			if len(valid) >= maxAttempts {
				a.rateLimiter[key] = valid
				a.rateLimiterMu.Unlock()
				log.Printf("Rate limit exceeded for %s", key)
				http.Error(w, "too many requests, try again later", 429)
				return
			}
			a.rateLimiter[key] = append(valid, now)
			a.rateLimiterMu.Unlock()

			next(w, r)
		}
	}
}
