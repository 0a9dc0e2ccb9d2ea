package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-system/internal/entities"
	apperrors "booking-system/pkg/errors"
)

func TestIsUniqueViolation(t *testing.T) {
	violation := &pgconn.PgError{Code: uniqueViolationCode}
	assert.True(t, isUniqueViolation(violation))
	assert.True(t, isUniqueViolation(fmt.Errorf("ошибка вставки: %w", violation)))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(fmt.Errorf("обычная ошибка")))
	assert.False(t, isUniqueViolation(nil))
}

// Имена смен и видов, инвентарные номера единиц уникальны: дубликат
// упирается в ограничение схемы и всплывает конфликтом, а не 500-й.
func TestCatalogRepositories_DuplicatesRejected(t *testing.T) {
	pool := testPool(t)
	_, _, kindID, _ := seedBookingData(t, pool)
	ctx := context.Background()

	var conflictErr *apperrors.ConflictError

	t.Run("вид ресурса", func(t *testing.T) {
		repo := NewResourceKindRepository(pool)
		_, err := repo.CreateKind(ctx, entities.ResourceKind{Name: "Ноутбук", Variant: "EQUIPMENT"})
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("единица ресурса", func(t *testing.T) {
		repo := NewResourceInstanceRepository(pool)
		_, err := repo.CreateInstance(ctx, entities.ResourceInstance{Label: "NB-001", KindID: kindID})
		require.ErrorAs(t, err, &conflictErr)
	})

	t.Run("смена", func(t *testing.T) {
		repo := NewShiftRepository(pool)
		_, err := repo.CreateShift(ctx, entities.Shift{
			Name:      "Дневная",
			StartTime: time.Date(0, 1, 1, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(0, 1, 1, 13, 0, 0, 0, time.UTC),
		})
		require.ErrorAs(t, err, &conflictErr)
	})
}
