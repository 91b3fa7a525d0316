// Package repo contains all database access logic for the trip planner API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// Postgres SQLSTATE codes the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txBeginner is a db that can also open a transaction. *pgxpool.Pool opens a
// real transaction; pgx.Tx opens a savepoint.
type txBeginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Trips       TripRepo
	Memberships MembershipRepo
	Activities  ActivityRepo
	Votes       VoteRepo
	Users       UserRepo
}

// NewRepos binds all repositories to db.
func NewRepos(db db) Repos {
	return Repos{
		Trips:       NewTripRepo(db),
		Memberships: NewMembershipRepo(db),
		Activities:  NewActivityRepo(db),
		Votes:       NewVoteRepo(db),
		Users:       NewUserRepo(db),
	}
}

// TxManager runs a unit of work inside a single database transaction.
// Writes that span more than one row go through InTx so a partial result is
// never observable.
type TxManager interface {
	// InTx calls fn with repositories bound to a new transaction. The
	// transaction commits if fn returns nil and rolls back otherwise,
	// including when fn panics.
	InTx(ctx context.Context, fn func(r Repos) error) error
}

type pgTxManager struct {
	db txBeginner
}

// NewTxManager constructs a TxManager on top of db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx so each unit of
// work becomes a savepoint inside the test's own transaction.
func NewTxManager(db txBeginner) TxManager {
	return &pgTxManager{db: db}
}

// InTx delegates commit/rollback handling to pgx.BeginFunc.
func (m *pgTxManager) InTx(ctx context.Context, fn func(r Repos) error) error {
	return pgx.BeginFunc(ctx, m.db, func(tx pgx.Tx) error {
		return fn(NewRepos(tx))
	})
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// translate maps driver errors onto domain sentinels. The constraint name is
// kept in the error text for logs; handlers never echo it to clients.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w [%s]", domain.ErrConflict, pgErr.ConstraintName)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w [%s]", domain.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

// decimalArg renders an optional decimal as text. Queries cast it with
// ::text::numeric so the driver never has to guess the numeric encoding.
func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// parseDecimal is the inverse of decimalArg for columns selected as ::text.
func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, fmt.Errorf("parse numeric %q: %w", *s, err)
	}
	return &d, nil
}

// uuidStrings converts ids for use with = ANY(@ids::text[]::uuid[]).
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
