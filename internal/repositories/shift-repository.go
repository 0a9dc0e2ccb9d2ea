package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-system/internal/entities"
	apperrors "booking-system/pkg/errors"
)

const (
	shiftTable  = "shifts"
	shiftFields = "id, name, start_time, end_time, active, created_at"
)

type ShiftRepositoryInterface interface {
	GetShifts(ctx context.Context) ([]entities.Shift, error)
	FindShift(ctx context.Context, id uint64) (*entities.Shift, error)
	CountActive(ctx context.Context) (int, error)
	CreateShift(ctx context.Context, shift entities.Shift) (uint64, error)
	DeactivateShift(ctx context.Context, id uint64) error
}

type shiftRepository struct {
	storage *pgxpool.Pool
}

func NewShiftRepository(storage *pgxpool.Pool) ShiftRepositoryInterface {
	return &shiftRepository{storage: storage}
}

func (r *shiftRepository) scanRow(row pgx.Row) (*entities.Shift, error) {
	var s entities.Shift
	err := row.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.Active, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования shifts: %w", err)
	}
	return &s, nil
}

func (r *shiftRepository) GetShifts(ctx context.Context) ([]entities.Shift, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(shiftFields).
		From(shiftTable).
		Where(sq.Eq{"active": true}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для GetShifts: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []entities.Shift
	for rows.Next() {
		var s entities.Shift
		if err := rows.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.Active, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования shifts: %w", err)
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

func (r *shiftRepository) FindShift(ctx context.Context, id uint64) (*entities.Shift, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(shiftFields).
		From(shiftTable).
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindShift: %w", err)
	}
	return r.scanRow(r.storage.QueryRow(ctx, query, args...))
}

func (r *shiftRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM shifts WHERE active = TRUE`).Scan(&count)
	return count, err
}

func (r *shiftRepository) CreateShift(ctx context.Context, shift entities.Shift) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(shiftTable).
		Columns("name", "start_time", "end_time").
		Values(shift.Name, shift.StartTime, shift.EndTime).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для CreateShift: %w", err)
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError("смена %q уже существует", shift.Name)
		}
		return 0, fmt.Errorf("ошибка вставки смены: %w", err)
	}
	return id, nil
}

func (r *shiftRepository) DeactivateShift(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE shifts SET active = FALSE WHERE id = $1 AND active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
