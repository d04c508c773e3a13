package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgxpool.Pool the store needs, small enough to fake
// in tests and to satisfy with a transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is the durable ledger. Idempotency rides on the unique index
// over reference: a conflicting insert is silently skipped and the existing
// row returned, which makes provider retries and concurrent duplicate
// deliveries safe without an explicit lock.
type PostgresStore struct {
	q Querier
}

func NewPostgresStore(q Querier) *PostgresStore { return &PostgresStore{q: q} }

func (s *PostgresStore) Append(ctx context.Context, payment *Payment) (*Payment, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	p := *payment
	err := s.q.QueryRow(ctx, `
		INSERT INTO payments (reference, transaction_code, amount, currency, email, name, phone, channel, paid_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (reference) DO NOTHING
		RETURNING id
	`, p.Reference, p.TransactionCode, p.Amount, p.Currency, p.Email, p.Name, p.Phone, p.Channel, p.PaidAt, p.Status).
		Scan(&p.ID)
	if err == nil {
		return &p, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("append payment: %w", err)
	}

	// Conflict: the reference is already in the ledger, fetch the first
	// writer's record.
	existing, err := s.getByReference(ctx, p.Reference)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *PostgresStore) getByReference(ctx context.Context, reference string) (*Payment, error) {
	var p Payment
	err := s.q.QueryRow(ctx, `
		SELECT id, reference, transaction_code, amount, currency, email, name, phone, channel, paid_at, status
		FROM payments
		WHERE reference = $1
	`, reference).Scan(
		&p.ID, &p.Reference, &p.TransactionCode, &p.Amount, &p.Currency,
		&p.Email, &p.Name, &p.Phone, &p.Channel, &p.PaidAt, &p.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("get payment by reference: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Payment, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.q.Query(ctx, `
		SELECT id, reference, transaction_code, amount, currency, email, name, phone, channel, paid_at, status
		FROM payments
		ORDER BY paid_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID, &p.Reference, &p.TransactionCode, &p.Amount, &p.Currency,
			&p.Email, &p.Name, &p.Phone, &p.Channel, &p.PaidAt, &p.Status,
		); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
