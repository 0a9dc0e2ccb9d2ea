package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-system/internal/entities"
	apperrors "booking-system/pkg/errors"
	"booking-system/pkg/types"
)

const (
	requestTable  = "requests"
	requestFields = "id, variant, requester_id, kind_id, shift_id, status, quantity, description, " +
		"preferred_start_date, preferred_end_date, opened_at, confirmed_at, delivered_at, " +
		"returned_at, cancelled_at, due_at, active"
)

type RequestRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, request entities.Request) (uint64, error)
	FindRequest(ctx context.Context, id uint64) (*entities.Request, error)
	// FindForUpdateInTx перечитывает заявку под блокировкой строки.
	// Все guard-проверки переходов делаются по этой копии, а не по той,
	// что видел вызывающий до начала транзакции.
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error)
	GetRequests(ctx context.Context, filter types.Filter, requesterID uint64) ([]entities.Request, uint64, error)

	ListByStatusStartingOn(ctx context.Context, status string, day time.Time) ([]entities.Request, error)
	ListInUseDueBefore(ctx context.Context, deadline time.Time) ([]entities.Request, error)

	SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, set map[string]interface{}) error
	AssignInstancesInTx(ctx context.Context, tx pgx.Tx, requestID uint64, instanceIDs []uint64) error
	SoftDeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error

	ListInstances(ctx context.Context, requestID uint64) ([]entities.ResourceInstance, error)
}

type requestRepository struct {
	storage *pgxpool.Pool
}

func NewRequestRepository(storage *pgxpool.Pool) RequestRepositoryInterface {
	return &requestRepository{storage: storage}
}

func scanRequest(row pgx.Row) (*entities.Request, error) {
	var r entities.Request
	err := row.Scan(&r.ID, &r.Variant, &r.RequesterID, &r.KindID, &r.ShiftID, &r.Status,
		&r.Quantity, &r.Description, &r.PreferredStartDate, &r.PreferredEndDate,
		&r.OpenedAt, &r.ConfirmedAt, &r.DeliveredAt, &r.ReturnedAt, &r.CancelledAt,
		&r.DueAt, &r.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования requests: %w", err)
	}
	return &r, nil
}

func scanRequestRows(rows pgx.Rows) ([]entities.Request, error) {
	defer rows.Close()

	var requests []entities.Request
	for rows.Next() {
		var r entities.Request
		if err := rows.Scan(&r.ID, &r.Variant, &r.RequesterID, &r.KindID, &r.ShiftID, &r.Status,
			&r.Quantity, &r.Description, &r.PreferredStartDate, &r.PreferredEndDate,
			&r.OpenedAt, &r.ConfirmedAt, &r.DeliveredAt, &r.ReturnedAt, &r.CancelledAt,
			&r.DueAt, &r.Active); err != nil {
			return nil, fmt.Errorf("ошибка сканирования requests: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (r *requestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, request entities.Request) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(requestTable).
		Columns("variant", "requester_id", "kind_id", "shift_id", "status", "quantity",
			"description", "preferred_start_date", "preferred_end_date", "opened_at").
		Values(request.Variant, request.RequesterID, request.KindID, request.ShiftID,
			request.Status, request.Quantity, request.Description,
			request.PreferredStartDate, request.PreferredEndDate, request.OpenedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для CreateInTx: %w", err)
	}

	var id uint64
	if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка вставки заявки: %w", err)
	}
	return id, nil
}

func (r *requestRepository) FindRequest(ctx context.Context, id uint64) (*entities.Request, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(requestFields).
		From(requestTable).
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindRequest: %w", err)
	}

	request, err := scanRequest(r.storage.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	instances, err := r.ListInstances(ctx, id)
	if err != nil {
		return nil, err
	}
	request.Instances = instances
	return request, nil
}

func (r *requestRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(requestFields).
		From(requestTable).
		Where(sq.Eq{"id": id, "active": true}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindForUpdateInTx: %w", err)
	}
	return scanRequest(tx.QueryRow(ctx, query, args...))
}

func (r *requestRepository) GetRequests(ctx context.Context, filter types.Filter, requesterID uint64) ([]entities.Request, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	builder := psql.Select(requestFields).
		From(requestTable).
		Where(sq.Eq{"active": true})
	countBuilder := psql.Select("COUNT(*)").
		From(requestTable).
		Where(sq.Eq{"active": true})

	// requesterID != 0 - выборка от имени обычного пользователя,
	// видны только собственные заявки.
	if requesterID != 0 {
		builder = builder.Where(sq.Eq{"requester_id": requesterID})
		countBuilder = countBuilder.Where(sq.Eq{"requester_id": requesterID})
	}
	if status, ok := filter.Filter["status"]; ok && status != "" {
		builder = builder.Where(sq.Eq{"status": status})
		countBuilder = countBuilder.Where(sq.Eq{"status": status})
	}
	if variant, ok := filter.Filter["variant"]; ok && variant != "" {
		builder = builder.Where(sq.Eq{"variant": variant})
		countBuilder = countBuilder.Where(sq.Eq{"variant": variant})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		builder = builder.Where(sq.ILike{"description": like})
		countBuilder = countBuilder.Where(sq.ILike{"description": like})
	}

	builder = builder.OrderBy("opened_at DESC")
	if filter.WithPagination {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL для GetRequests: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	requests, err := scanRequestRows(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчёта заявок: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) ListByStatusStartingOn(ctx context.Context, status string, day time.Time) ([]entities.Request, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT `+requestFields+`
		FROM requests
		WHERE active = TRUE AND status = $1 AND preferred_start_date::date = $2::date
		ORDER BY id`,
		status, day)
	if err != nil {
		return nil, err
	}
	return scanRequestRows(rows)
}

func (r *requestRepository) ListInUseDueBefore(ctx context.Context, deadline time.Time) ([]entities.Request, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT `+requestFields+`
		FROM requests
		WHERE active = TRUE AND status = 'IN_USE' AND due_at IS NOT NULL AND due_at < $1
		ORDER BY due_at`,
		deadline)
	if err != nil {
		return nil, err
	}
	return scanRequestRows(rows)
}

// SetStatusInTx переводит заявку в новый статус и дополняет строку
// полями перехода (confirmed_at, due_at и т.д.) из set.
func (r *requestRepository) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status string, set map[string]interface{}) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(requestTable).
		Set("status", status).
		Where(sq.Eq{"id": id, "active": true})
	for column, value := range set {
		builder = builder.Set(column, value)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для SetStatusInTx: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *requestRepository) AssignInstancesInTx(ctx context.Context, tx pgx.Tx, requestID uint64, instanceIDs []uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Insert("request_instances").Columns("request_id", "instance_id")
	for _, instanceID := range instanceIDs {
		builder = builder.Values(requestID, instanceID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для AssignInstancesInTx: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка закрепления единиц за заявкой: %w", err)
	}
	return nil
}

func (r *requestRepository) SoftDeleteInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	tag, err := tx.Exec(ctx,
		`UPDATE requests SET active = FALSE WHERE id = $1 AND active = TRUE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *requestRepository) ListInstances(ctx context.Context, requestID uint64) ([]entities.ResourceInstance, error) {
	return queryInstancesByRequest(ctx, r.storage, requestID, false)
}
