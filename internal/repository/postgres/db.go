package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xela07ax/hr-console/internal/domain"
)

// PgxPoolIface - то, что репозиторию нужно от пула. Реализуется *pgxpool.Pool и pgxmock.
type PgxPoolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// querier - общее у пула и транзакции.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// HRRepo - единый репозиторий HR-консоли. Методы разнесены по файлам по сущностям.
type HRRepo struct {
	pool PgxPoolIface
}

func NewHRRepo(pool PgxPoolIface) *HRRepo {
	return &HRRepo{pool: pool}
}

// Ping проверяет доступность базы
func (r *HRRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// inTx выполняет fn в транзакции. Rollback после Commit - no-op.
func (r *HRRepo) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// mapErr переводит ошибки драйвера в доменные.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres: %s: %w", op, domain.ErrNotFound)
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		switch pgerr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("postgres: %s: %w", op, domain.ErrAlreadyExists)
		case pgForeignKeyViolation:
			return fmt.Errorf("postgres: %s: referenced record missing: %w", op, domain.ErrInvalidInput)
		}
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

// mustAffect возвращает NotFound, если UPDATE/DELETE не затронул ни одной строки.
func mustAffect(op string, tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: %s: %w", op, domain.ErrNotFound)
	}
	return nil
}
