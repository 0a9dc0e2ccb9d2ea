package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier покрывает и пул соединений, и открытую транзакцию,
// чтобы одни и те же методы репозитория работали в обоих режимах.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// uniqueViolationCode - SQLSTATE нарушения уникального ограничения.
const uniqueViolationCode = "23505"

// isUniqueViolation распознаёт попытку вставить дубликат по уникальной
// колонке (имя смены, имя вида, инвентарный номер единицы).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
