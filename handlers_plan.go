package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Cached projection/plan responses live this long unless a ledger mutation
// invalidates them first.
const planCacheTTL = time.Hour

// handleProject answers "what if I pay X a month against this debt" with a
// month-by-month amortization projection.
func (a *App) handleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	q := r.URL.Query()
	debtID, err := uuid.Parse(q.Get("id"))
	if err != nil {
		http.Error(w, "bad debt id", 400)
		return
	}
	monthly, err := ParseMoney(q.Get("monthly"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	extra := Money{}
	if s := q.Get("extra"); s != "" {
		if extra, err = ParseMoney(s); err != nil {
			a.writeError(w, err)
			return
		}
	}
	horizon := DefaultHorizonMonths
	if s := q.Get("horizon"); s != "" {
		if horizon, err = strconv.Atoi(s); err != nil || horizon <= 0 {
			http.Error(w, "bad horizon", 400)
			return
		}
	}

	// Ownership check comes before the cache lookup: cached bodies are keyed
	// by debt, not by caller, and must never leak past the owner scope.
	debt, err := a.store.GetDebt(r.Context(), debtID, getUserID(r))
	if err != nil {
		a.writeError(w, err)
		return
	}

	key := projectionCacheKey(debtID, monthly, extra, horizon)
	if cached, ok := a.cache.Get(r.Context(), key); ok {
		writeCachedJSON(w, cached)
		return
	}

	projection, err := Project(debt, monthly, extra, horizon)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondCached(w, r, key, projection)
}

// handlePlan returns both strategy orderings over the unpaid debts plus a
// month-by-month portfolio simulation for the given budget.
func (a *App) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", 405)
		return
	}
	q := r.URL.Query()
	budget := MoneyFromInt(500)
	if s := q.Get("budget"); s != "" {
		var err error
		if budget, err = ParseMoney(s); err != nil {
			a.writeError(w, err)
			return
		}
	}
	strategy := Strategy(q.Get("strategy"))
	if strategy != Snowball && strategy != Avalanche {
		strategy = Avalanche
	}
	months := 240 // up to 20 years
	if s := q.Get("months"); s != "" {
		var err error
		if months, err = strconv.Atoi(s); err != nil || months <= 0 {
			http.Error(w, "bad months", 400)
			return
		}
	}

	ownerID := getUserID(r)
	key := planCacheKey(ownerID, budget, strategy, months)
	if cached, ok := a.cache.Get(r.Context(), key); ok {
		writeCachedJSON(w, cached)
		return
	}

	debts, err := a.store.ListDebts(r.Context(), ownerID, DebtFilter{})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondCached(w, r, key, map[string]any{
		"strategies": PlanStrategies(debts),
		"budget":     budget,
		"strategy":   strategy,
		"plan":       GeneratePortfolioPlan(debts, budget, strategy, months),
	})
}

func (a *App) respondCached(w http.ResponseWriter, r *http.Request, key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("marshal response: %v", err)
		http.Error(w, "internal server error", 500)
		return
	}
	a.cache.Set(r.Context(), key, string(body), planCacheTTL)
	writeCachedJSON(w, string(body))
}

func writeCachedJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}
