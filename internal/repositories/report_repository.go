package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-system/internal/entities"
)

type ReportRepositoryInterface interface {
	GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error)
}

type reportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepositoryInterface {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetReport(ctx context.Context, filter entities.ReportFilter) ([]entities.ReportItem, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	// Общая база для выборки и подсчёта, фильтры применяются к ней один раз.
	baseSelect := psql.Select().
		From("requests req").
		LeftJoin("users u ON req.requester_id = u.id").
		LeftJoin("resource_kinds k ON req.kind_id = k.id").
		LeftJoin("shifts s ON req.shift_id = s.id").
		Where(sq.Eq{"req.active": true})

	if filter.DateFrom != nil {
		baseSelect = baseSelect.Where(sq.GtOrEq{"req.opened_at": filter.DateFrom})
	}
	if filter.DateTo != nil {
		baseSelect = baseSelect.Where(sq.LtOrEq{"req.opened_at": filter.DateTo})
	}
	if filter.Variant != "" {
		baseSelect = baseSelect.Where(sq.Eq{"req.variant": filter.Variant})
	}
	if len(filter.Statuses) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"req.status": filter.Statuses})
	}
	if len(filter.KindIDs) > 0 {
		baseSelect = baseSelect.Where(sq.Eq{"req.kind_id": filter.KindIDs})
	}

	countQuery, countArgs, err := baseSelect.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL подсчёта отчёта: %w", err)
	}
	var total uint64
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataSelect := baseSelect.Columns(
		"req.id", "req.variant", "req.status", "req.quantity",
		"COALESCE(u.fio, '')", "COALESCE(k.name, '')", "COALESCE(s.name, '')",
		"req.opened_at", "req.confirmed_at", "req.delivered_at", "req.returned_at", "req.due_at",
		"(SELECT COUNT(*) FROM request_instances link WHERE link.request_id = req.id)",
	).OrderBy("req.opened_at DESC")

	if filter.Limit > 0 {
		dataSelect = dataSelect.Limit(filter.Limit).Offset(filter.Offset)
	}

	query, args, err := dataSelect.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SQL отчёта: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []entities.ReportItem
	for rows.Next() {
		var item entities.ReportItem
		if err := rows.Scan(&item.RequestID, &item.Variant, &item.Status, &item.Quantity,
			&item.RequesterFio, &item.KindName, &item.ShiftName,
			&item.OpenedAt, &item.ConfirmedAt, &item.DeliveredAt, &item.ReturnedAt,
			&item.DueAt, &item.InstanceCount); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки отчёта: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}
