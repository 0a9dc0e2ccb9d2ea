package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-system/internal/entities"
	"booking-system/pkg/constants"
	apperrors "booking-system/pkg/errors"
)

const (
	instanceTable  = "resource_instances"
	instanceFields = "id, label, kind_id, status, unavailability_reason, active, created_at, updated_at"
)

type ResourceInstanceRepositoryInterface interface {
	GetInstances(ctx context.Context, kindID uint64, status string) ([]entities.ResourceInstance, error)
	FindInstance(ctx context.Context, id uint64) (*entities.ResourceInstance, error)

	// Производный счётчик доступности: активные единицы вида в статусе OPEN.
	// Нигде не хранится и не кешируется.
	CountAvailableByKind(ctx context.Context, kindID uint64) (int, error)
	ListAvailableByKind(ctx context.Context, kindID uint64) ([]entities.ResourceInstance, error)

	FindByIDsForUpdateInTx(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.ResourceInstance, error)
	ListByRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.ResourceInstance, error)
	SetStatusInTx(ctx context.Context, tx pgx.Tx, ids []uint64, status string) error

	CreateInstance(ctx context.Context, instance entities.ResourceInstance) (uint64, error)
	EnableInstance(ctx context.Context, id uint64) error
	DisableInstance(ctx context.Context, id uint64, reason string) error
	DeactivateInstance(ctx context.Context, id uint64) error
}

type resourceInstanceRepository struct {
	storage *pgxpool.Pool
}

func NewResourceInstanceRepository(storage *pgxpool.Pool) ResourceInstanceRepositoryInterface {
	return &resourceInstanceRepository{storage: storage}
}

func scanInstance(row pgx.Row) (*entities.ResourceInstance, error) {
	var i entities.ResourceInstance
	err := row.Scan(&i.ID, &i.Label, &i.KindID, &i.Status, &i.UnavailabilityReason,
		&i.Active, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования resource_instances: %w", err)
	}
	return &i, nil
}

func scanInstanceRows(rows pgx.Rows) ([]entities.ResourceInstance, error) {
	defer rows.Close()

	var instances []entities.ResourceInstance
	for rows.Next() {
		var i entities.ResourceInstance
		if err := rows.Scan(&i.ID, &i.Label, &i.KindID, &i.Status, &i.UnavailabilityReason,
			&i.Active, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования resource_instances: %w", err)
		}
		instances = append(instances, i)
	}
	return instances, rows.Err()
}

func (r *resourceInstanceRepository) GetInstances(ctx context.Context, kindID uint64, status string) ([]entities.ResourceInstance, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(instanceFields).
		From(instanceTable).
		Where(sq.Eq{"active": true}).
		OrderBy("label ASC")
	if kindID != 0 {
		builder = builder.Where(sq.Eq{"kind_id": kindID})
	}
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для GetInstances: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanInstanceRows(rows)
}

func (r *resourceInstanceRepository) FindInstance(ctx context.Context, id uint64) (*entities.ResourceInstance, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(instanceFields).
		From(instanceTable).
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindInstance: %w", err)
	}
	return scanInstance(r.storage.QueryRow(ctx, query, args...))
}

func (r *resourceInstanceRepository) CountAvailableByKind(ctx context.Context, kindID uint64) (int, error) {
	var count int
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM resource_instances
		 WHERE kind_id = $1 AND status = $2 AND active = TRUE`,
		kindID, constants.InstanceStatusOpen).Scan(&count)
	return count, err
}

func (r *resourceInstanceRepository) ListAvailableByKind(ctx context.Context, kindID uint64) ([]entities.ResourceInstance, error) {
	return r.GetInstances(ctx, kindID, constants.InstanceStatusOpen)
}

// FindByIDsForUpdateInTx блокирует строки единиц на время транзакции,
// чтобы повторная проверка guard-условия при подтверждении не проиграла
// гонку параллельному подтверждению тех же единиц.
func (r *resourceInstanceRepository) FindByIDsForUpdateInTx(ctx context.Context, tx pgx.Tx, ids []uint64) ([]entities.ResourceInstance, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(instanceFields).
		From(instanceTable).
		Where(sq.Eq{"id": ids}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindByIDsForUpdateInTx: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return scanInstanceRows(rows)
}

func (r *resourceInstanceRepository) ListByRequestForUpdateInTx(ctx context.Context, tx pgx.Tx, requestID uint64) ([]entities.ResourceInstance, error) {
	return queryInstancesByRequest(ctx, tx, requestID, true)
}

// queryInstancesByRequest работает и на пуле, и внутри транзакции;
// с lock строки единиц блокируются до конца транзакции.
func queryInstancesByRequest(ctx context.Context, q Querier, requestID uint64, lock bool) ([]entities.ResourceInstance, error) {
	query := `
		SELECT ri.id, ri.label, ri.kind_id, ri.status, ri.unavailability_reason,
		       ri.active, ri.created_at, ri.updated_at
		FROM resource_instances ri
		JOIN request_instances link ON link.instance_id = ri.id
		WHERE link.request_id = $1
		ORDER BY ri.id`
	if lock {
		query += "\n\t\tFOR UPDATE OF ri"
	}

	rows, err := q.Query(ctx, query, requestID)
	if err != nil {
		return nil, err
	}
	return scanInstanceRows(rows)
}

func (r *resourceInstanceRepository) SetStatusInTx(ctx context.Context, tx pgx.Tx, ids []uint64, status string) error {
	if len(ids) == 0 {
		return nil
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(instanceTable).
		Set("status", status).
		Set("unavailability_reason", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для SetStatusInTx: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if int(tag.RowsAffected()) != len(ids) {
		return apperrors.NewConflictError("не все единицы ресурса удалось обновить")
	}
	return nil
}

func (r *resourceInstanceRepository) CreateInstance(ctx context.Context, instance entities.ResourceInstance) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(instanceTable).
		Columns("label", "kind_id", "status").
		Values(instance.Label, instance.KindID, constants.InstanceStatusOpen).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для CreateInstance: %w", err)
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError("единица с инвентарным номером %q уже существует", instance.Label)
		}
		return 0, fmt.Errorf("ошибка вставки единицы ресурса: %w", err)
	}
	return id, nil
}

// EnableInstance: DISABLED -> OPEN, причина недоступности очищается.
// Guard зашит в условие UPDATE, ноль затронутых строк - конфликт статусов.
func (r *resourceInstanceRepository) EnableInstance(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE resource_instances
		SET status = $1, unavailability_reason = NULL, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND active = TRUE`,
		constants.InstanceStatusOpen, id, constants.InstanceStatusDisabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("единицу можно включить только из статуса DISABLED")
	}
	return nil
}

// DisableInstance: OPEN -> DISABLED с причиной. Занятую единицу вывести
// из оборота нельзя - сначала её должны вернуть.
func (r *resourceInstanceRepository) DisableInstance(ctx context.Context, id uint64, reason string) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE resource_instances
		SET status = $1, unavailability_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND active = TRUE`,
		constants.InstanceStatusDisabled, reason, id, constants.InstanceStatusOpen)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("выключить можно только свободную (OPEN) единицу")
	}
	return nil
}

func (r *resourceInstanceRepository) DeactivateInstance(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `
		UPDATE resource_instances
		SET active = FALSE, updated_at = NOW()
		WHERE id = $1 AND active = TRUE AND status IN ($2, $3)`,
		id, constants.InstanceStatusOpen, constants.InstanceStatusDisabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("нельзя удалить единицу, закреплённую за живой заявкой")
	}
	return nil
}
