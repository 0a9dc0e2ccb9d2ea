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
	resourceKindTable  = "resource_kinds"
	resourceKindFields = "id, name, variant, active, created_at, updated_at"
)

type ResourceKindRepositoryInterface interface {
	GetKinds(ctx context.Context, variant string) ([]entities.ResourceKind, error)
	FindKind(ctx context.Context, id uint64) (*entities.ResourceKind, error)
	CountActiveByVariant(ctx context.Context, variant string) (int, error)
	CreateKind(ctx context.Context, kind entities.ResourceKind) (uint64, error)
	UpdateKind(ctx context.Context, id uint64, name string, active *bool) error
}

type resourceKindRepository struct {
	storage *pgxpool.Pool
}

func NewResourceKindRepository(storage *pgxpool.Pool) ResourceKindRepositoryInterface {
	return &resourceKindRepository{storage: storage}
}

func (r *resourceKindRepository) scanRow(row pgx.Row) (*entities.ResourceKind, error) {
	var k entities.ResourceKind
	err := row.Scan(&k.ID, &k.Name, &k.Variant, &k.Active, &k.CreatedAt, &k.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования resource_kinds: %w", err)
	}
	return &k, nil
}

func (r *resourceKindRepository) GetKinds(ctx context.Context, variant string) ([]entities.ResourceKind, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(resourceKindFields).
		From(resourceKindTable).
		Where(sq.Eq{"active": true}).
		OrderBy("name ASC")
	if variant != "" {
		builder = builder.Where(sq.Eq{"variant": variant})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для GetKinds: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []entities.ResourceKind
	for rows.Next() {
		var k entities.ResourceKind
		if err := rows.Scan(&k.ID, &k.Name, &k.Variant, &k.Active, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования resource_kinds: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, rows.Err()
}

func (r *resourceKindRepository) FindKind(ctx context.Context, id uint64) (*entities.ResourceKind, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(resourceKindFields).
		From(resourceKindTable).
		Where(sq.Eq{"id": id, "active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для FindKind: %w", err)
	}
	return r.scanRow(r.storage.QueryRow(ctx, query, args...))
}

func (r *resourceKindRepository) CountActiveByVariant(ctx context.Context, variant string) (int, error) {
	var count int
	err := r.storage.QueryRow(ctx,
		`SELECT COUNT(*) FROM resource_kinds WHERE variant = $1 AND active = TRUE`,
		variant).Scan(&count)
	return count, err
}

func (r *resourceKindRepository) CreateKind(ctx context.Context, kind entities.ResourceKind) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(resourceKindTable).
		Columns("name", "variant").
		Values(kind.Name, kind.Variant).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки SQL для CreateKind: %w", err)
	}

	var id uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewConflictError("вид ресурса %q уже существует", kind.Name)
		}
		return 0, fmt.Errorf("ошибка вставки вида ресурса: %w", err)
	}
	return id, nil
}

func (r *resourceKindRepository) UpdateKind(ctx context.Context, id uint64, name string, active *bool) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(resourceKindTable).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id})
	if name != "" {
		builder = builder.Set("name", name)
	}
	if active != nil {
		builder = builder.Set("active", *active)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки SQL для UpdateKind: %w", err)
	}

	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
