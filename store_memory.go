package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory Store. Tests run against it, and
// the server falls back to it when no database is configured. The single
// mutex is a coarser serialization than the per-debt rule requires, which
// is correct, just not maximally parallel.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]User
	byEmail  map[string]uuid.UUID
	debts    map[uuid.UUID]Debt
	payments map[uuid.UUID]Payment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[uuid.UUID]User{},
		byEmail:  map[string]uuid.UUID{},
		debts:    map[uuid.UUID]Debt{},
		payments: map[uuid.UUID]Payment{},
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; ok {
		return User{}, fmt.Errorf("email already registered")
	}
	now := time.Now().UTC()
	u := User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) CreateDebt(ctx context.Context, d Debt) (Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Amount = d.Principal.Round2()
	d.Principal = d.Principal.Round2()
	d.PaidOff = d.Amount.IsZero()
	s.debts[d.ID] = d
	return d, nil
}

func (s *MemoryStore) GetDebt(ctx context.Context, id, ownerID uuid.UUID) (Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getDebtLocked(id, ownerID)
}

func (s *MemoryStore) getDebtLocked(id, ownerID uuid.UUID) (Debt, error) {
	d, ok := s.debts[id]
	if !ok || d.OwnerID != ownerID {
		return Debt{}, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) ListDebts(ctx context.Context, ownerID uuid.UUID, f DebtFilter) ([]Debt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Debt
	for _, d := range s.debts {
		if d.OwnerID != ownerID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(d.Creditor), strings.ToLower(f.Search)) {
			continue
		}
		if f.Kind != "" && d.Kind != f.Kind {
			continue
		}
		if f.Status == "open" && d.PaidOff {
			continue
		}
		if f.Status == "paid" && !d.PaidOff {
			continue
		}
		out = append(out, d)
	}
	sortDebts(out, f.Sort)
	return out, nil
}

func sortDebts(debts []Debt, key string) {
	less := func(i, j int) bool {
		// Default: open debts first, then creditor.
		if debts[i].PaidOff != debts[j].PaidOff {
			return !debts[i].PaidOff
		}
		return debts[i].Creditor < debts[j].Creditor
	}
	switch key {
	case "creditor_asc":
		less = func(i, j int) bool { return debts[i].Creditor < debts[j].Creditor }
	case "creditor_desc":
		less = func(i, j int) bool { return debts[i].Creditor > debts[j].Creditor }
	case "balance_asc":
		less = func(i, j int) bool { return debts[i].Amount.Cmp(debts[j].Amount) < 0 }
	case "balance_desc":
		less = func(i, j int) bool { return debts[i].Amount.Cmp(debts[j].Amount) > 0 }
	case "apr_asc":
		less = func(i, j int) bool { return debts[i].aprOrZero().Cmp(debts[j].aprOrZero()) < 0 }
	case "apr_desc":
		less = func(i, j int) bool { return debts[i].aprOrZero().Cmp(debts[j].aprOrZero()) > 0 }
	}
	sort.SliceStable(debts, less)
}

func (s *MemoryStore) UpdateDebtDetails(ctx context.Context, d Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.getDebtLocked(d.ID, d.OwnerID)
	if err != nil {
		return err
	}
	cur.Creditor = d.Creditor
	cur.Kind = d.Kind
	cur.APR = d.APR
	cur.MinPayment = d.MinPayment
	cur.DueDate = d.DueDate
	cur.Notes = d.Notes
	cur.UpdatedAt = time.Now().UTC()
	s.debts[cur.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteDebt(ctx context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getDebtLocked(id, ownerID); err != nil {
		return err
	}
	delete(s.debts, id)
	for pid, p := range s.payments {
		if p.DebtID == id {
			delete(s.payments, pid)
		}
	}
	return nil
}

func (s *MemoryStore) GetPayment(ctx context.Context, id, ownerID uuid.UUID) (Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if _, err := s.getDebtLocked(p.DebtID, ownerID); err != nil {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) ListPayments(ctx context.Context, debtID, ownerID uuid.UUID) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.getDebtLocked(debtID, ownerID); err != nil {
		return nil, err
	}
	return s.paymentsForDebtLocked(debtID), nil
}

// paymentsForDebtLocked returns the debt's payments newest first.
func (s *MemoryStore) paymentsForDebtLocked(debtID uuid.UUID) []Payment {
	var out []Payment
	for _, p := range s.payments {
		if p.DebtID == debtID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PaidOn.Equal(out[j].PaidOn) {
			return out[i].PaidOn.After(out[j].PaidOn)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *MemoryStore) AddPayment(ctx context.Context, ownerID uuid.UUID, p Payment) (Payment, Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.getDebtLocked(p.DebtID, ownerID)
	if err != nil {
		return Payment{}, Debt{}, err
	}
	existing := s.paymentsForDebtLocked(d.ID)
	amount, paidOff, err := settleAfterAdd(d, existing, p)
	if err != nil {
		return Payment{}, Debt{}, err
	}
	s.payments[p.ID] = p
	d.Amount = amount
	d.PaidOff = paidOff
	d.UpdatedAt = time.Now().UTC()
	s.debts[d.ID] = d
	return p, d, nil
}

func (s *MemoryStore) RemovePayment(ctx context.Context, paymentID, ownerID uuid.UUID) (Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return Debt{}, ErrNotFound
	}
	d, err := s.getDebtLocked(p.DebtID, ownerID)
	if err != nil {
		return Debt{}, ErrNotFound
	}
	delete(s.payments, paymentID)
	remaining := s.paymentsForDebtLocked(d.ID)
	amount, paidOff := settleAfterRemove(d, remaining)
	d.Amount = amount
	d.PaidOff = paidOff
	d.UpdatedAt = time.Now().UTC()
	s.debts[d.ID] = d
	return d, nil
}
