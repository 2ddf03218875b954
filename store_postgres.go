// Data layer: Postgres-backed Store. Ledger mutations run inside row-locked
// transactions so the payment write and the debt rewrite land together.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func OpenPostgresStore(cfg Config) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxOpen > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpen)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS debts (
  id UUID PRIMARY KEY,
  owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  creditor TEXT NOT NULL,
  kind TEXT NOT NULL,
  principal NUMERIC(14,2) NOT NULL CHECK (principal >= 0),
  amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
  apr NUMERIC(7,4) CHECK (apr IS NULL OR apr >= 0),
  min_payment NUMERIC(14,2) CHECK (min_payment IS NULL OR min_payment >= 0),
  due_date DATE,
  paid_off BOOLEAN NOT NULL DEFAULT FALSE,
  notes TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
  id UUID PRIMARY KEY,
  debt_id UUID NOT NULL REFERENCES debts(id) ON DELETE CASCADE,
  paid_on DATE NOT NULL,
  amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
  note TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_owner ON debts(owner_id);
CREATE INDEX IF NOT EXISTS idx_payments_debt ON payments(debt_id);
`
	_, err := s.db.Exec(schema)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash string) (User, error) {
	now := time.Now().UTC()
	u := User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users(id, email, password_hash, created_at, updated_at)
VALUES($1,$2,$3,$4,$4)`, u.ID, u.Email, u.PasswordHash, now)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

const debtColumns = `id, owner_id, creditor, kind, principal, amount, apr, min_payment, due_date, paid_off, notes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDebt(row rowScanner) (Debt, error) {
	var d Debt
	var due sql.NullTime
	err := row.Scan(&d.ID, &d.OwnerID, &d.Creditor, &d.Kind, &d.Principal, &d.Amount,
		&d.APR, &d.MinPayment, &due, &d.PaidOff, &d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return Debt{}, err
	}
	if due.Valid {
		t := due.Time
		d.DueDate = &t
	}
	return d, nil
}

func (s *PostgresStore) CreateDebt(ctx context.Context, d Debt) (Debt, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Principal = d.Principal.Round2()
	d.Amount = d.Principal
	d.PaidOff = d.Amount.IsZero()
	var due sql.NullTime
	if d.DueDate != nil {
		due = sql.NullTime{Time: *d.DueDate, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO debts(id, owner_id, creditor, kind, principal, amount, apr, min_payment, due_date, paid_off, notes, created_at, updated_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$12)`,
		d.ID, d.OwnerID, d.Creditor, d.Kind, d.Principal, d.Amount, d.APR, d.MinPayment, due, d.PaidOff, d.Notes, now)
	if err != nil {
		return Debt{}, err
	}
	return d, nil
}

func (s *PostgresStore) GetDebt(ctx context.Context, id, ownerID uuid.UUID) (Debt, error) {
	d, err := scanDebt(s.db.QueryRowContext(ctx, `
SELECT `+debtColumns+` FROM debts WHERE id = $1 AND owner_id = $2`, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return Debt{}, ErrNotFound
	}
	if err != nil {
		return Debt{}, err
	}
	return d, nil
}

func (s *PostgresStore) ListDebts(ctx context.Context, ownerID uuid.UUID, f DebtFilter) ([]Debt, error) {
	query := `SELECT ` + debtColumns + ` FROM debts WHERE owner_id = $1`
	args := []any{ownerID}
	n := 2

	if f.Search != "" {
		query += fmt.Sprintf(" AND creditor ILIKE $%d", n)
		args = append(args, "%"+f.Search+"%")
		n++
	}
	if f.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", n)
		args = append(args, f.Kind)
		n++
	}
	if f.Status == "open" {
		query += " AND paid_off = FALSE"
	} else if f.Status == "paid" {
		query += " AND paid_off = TRUE"
	}

	switch f.Sort {
	case "creditor_asc":
		query += " ORDER BY creditor ASC"
	case "creditor_desc":
		query += " ORDER BY creditor DESC"
	case "balance_asc":
		query += " ORDER BY amount ASC"
	case "balance_desc":
		query += " ORDER BY amount DESC"
	case "apr_asc":
		query += " ORDER BY apr ASC NULLS FIRST"
	case "apr_desc":
		query += " ORDER BY apr DESC NULLS LAST"
	default:
		query += " ORDER BY paid_off ASC, creditor ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpdateDebtDetails(ctx context.Context, d Debt) error {
	var due sql.NullTime
	if d.DueDate != nil {
		due = sql.NullTime{Time: *d.DueDate, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE debts
SET creditor = $1, kind = $2, apr = $3, min_payment = $4, due_date = $5, notes = $6, updated_at = $7
WHERE id = $8 AND owner_id = $9`,
		d.Creditor, d.Kind, d.APR, d.MinPayment, due, d.Notes, time.Now().UTC(), d.ID, d.OwnerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteDebt(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM debts WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetPayment(ctx context.Context, id, ownerID uuid.UUID) (Payment, error) {
	var p Payment
	err := s.db.QueryRowContext(ctx, `
SELECT p.id, p.debt_id, p.paid_on, p.amount, p.note, p.created_at
FROM payments p
JOIN debts d ON p.debt_id = d.id
WHERE p.id = $1 AND d.owner_id = $2`, id, ownerID).
		Scan(&p.ID, &p.DebtID, &p.PaidOn, &p.Amount, &p.Note, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (s *PostgresStore) ListPayments(ctx context.Context, debtID, ownerID uuid.UUID) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.id, p.debt_id, p.paid_on, p.amount, p.note, p.created_at
FROM payments p
JOIN debts d ON p.debt_id = d.id
WHERE p.debt_id = $1 AND d.owner_id = $2
ORDER BY p.paid_on DESC, p.created_at DESC`, debtID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func collectPayments(rows *sql.Rows) ([]Payment, error) {
	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.PaidOn, &p.Amount, &p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// paymentsForDebtTx reads the debt's payments inside the transaction,
// newest first.
func paymentsForDebtTx(tx *sql.Tx, debtID uuid.UUID) ([]Payment, error) {
	rows, err := tx.Query(`
SELECT id, debt_id, paid_on, amount, note, created_at
FROM payments WHERE debt_id = $1
ORDER BY paid_on DESC, created_at DESC`, debtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (s *PostgresStore) AddPayment(ctx context.Context, ownerID uuid.UUID, p Payment) (Payment, Debt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Payment{}, Debt{}, err
	}
	defer tx.Rollback()

	// Row lock serializes concurrent mutations on the same debt.
	d, err := scanDebt(tx.QueryRow(`
SELECT `+debtColumns+` FROM debts WHERE id = $1 AND owner_id = $2 FOR UPDATE`, p.DebtID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return Payment{}, Debt{}, ErrNotFound
	}
	if err != nil {
		return Payment{}, Debt{}, err
	}

	existing, err := paymentsForDebtTx(tx, d.ID)
	if err != nil {
		return Payment{}, Debt{}, err
	}
	amount, paidOff, err := settleAfterAdd(d, existing, p)
	if err != nil {
		return Payment{}, Debt{}, err
	}

	if _, err := tx.Exec(`
INSERT INTO payments(id, debt_id, paid_on, amount, note, created_at)
VALUES($1,$2,$3,$4,$5,$6)`, p.ID, p.DebtID, p.PaidOn, p.Amount, p.Note, p.CreatedAt); err != nil {
		return Payment{}, Debt{}, err
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(`UPDATE debts SET amount = $1, paid_off = $2, updated_at = $3 WHERE id = $4`,
		amount, paidOff, now, d.ID); err != nil {
		return Payment{}, Debt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Payment{}, Debt{}, err
	}
	d.Amount = amount
	d.PaidOff = paidOff
	d.UpdatedAt = now
	return p, d, nil
}

func (s *PostgresStore) RemovePayment(ctx context.Context, paymentID, ownerID uuid.UUID) (Debt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Debt{}, err
	}
	defer tx.Rollback()

	var debtID uuid.UUID
	err = tx.QueryRow(`
SELECT p.debt_id
FROM payments p
JOIN debts d ON p.debt_id = d.id
WHERE p.id = $1 AND d.owner_id = $2`, paymentID, ownerID).Scan(&debtID)
	if errors.Is(err, sql.ErrNoRows) {
		return Debt{}, ErrNotFound
	}
	if err != nil {
		return Debt{}, err
	}

	d, err := scanDebt(tx.QueryRow(`
SELECT `+debtColumns+` FROM debts WHERE id = $1 AND owner_id = $2 FOR UPDATE`, debtID, ownerID))
	if err != nil {
		return Debt{}, err
	}

	if _, err := tx.Exec(`DELETE FROM payments WHERE id = $1`, paymentID); err != nil {
		return Debt{}, err
	}
	remaining, err := paymentsForDebtTx(tx, d.ID)
	if err != nil {
		return Debt{}, err
	}
	amount, paidOff := settleAfterRemove(d, remaining)

	now := time.Now().UTC()
	if _, err := tx.Exec(`UPDATE debts SET amount = $1, paid_off = $2, updated_at = $3 WHERE id = $4`,
		amount, paidOff, now, d.ID); err != nil {
		return Debt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Debt{}, err
	}
	d.Amount = amount
	d.PaidOff = paidOff
	d.UpdatedAt = now
	return d, nil
}
