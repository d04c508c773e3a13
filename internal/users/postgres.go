package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the pgxpool.Pool subset the store uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var queryTimeout = time.Second * 5

type PostgresStore struct {
	q Querier
}

func NewPostgresStore(q Querier) *PostgresStore { return &PostgresStore{q: q} }

func (s *PostgresStore) Create(ctx context.Context, user *User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := s.q.QueryRow(ctx, `
		INSERT INTO users (full_name, email, phone, location, user_type, password)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, user.FullName, strings.ToLower(user.Email), user.Phone, user.Location, user.UserType, user.Password.Hash()).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		u    User
		hash []byte
	)
	err := s.q.QueryRow(ctx, `
		SELECT id, full_name, email, phone, location, user_type, password, created_at
		FROM users
		WHERE email = $1
	`, strings.ToLower(email)).
		Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Location, &u.UserType, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	u.Password.SetHash(hash)
	return &u, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		u    User
		hash []byte
	)
	err := s.q.QueryRow(ctx, `
		SELECT id, full_name, email, phone, location, user_type, password, created_at
		FROM users
		WHERE id = $1
	`, id).
		Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.Location, &u.UserType, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	u.Password.SetHash(hash)
	return &u, nil
}
