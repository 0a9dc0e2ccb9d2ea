package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-system/pkg/constants"
)

// SeedShifts заводит стандартные смены.
func SeedShifts(db *pgxpool.Pool) {
	log.Println("🌱 Наполнение: смены...")

	ctx := context.Background()
	shifts := []struct {
		name       string
		start, end string
	}{
		{"Утренняя", "08:00", "12:00"},
		{"Дневная", "13:00", "18:00"},
		{"Вечерняя", "18:00", "22:00"},
	}

	for _, shift := range shifts {
		var existingID uint64
		err := db.QueryRow(ctx, "SELECT id FROM shifts WHERE name = $1", shift.name).Scan(&existingID)
		if err == nil {
			log.Printf("  - Смена %q уже существует. Пропускаем.", shift.name)
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("  ❌ %s: %v", shift.name, err)
			continue
		}

		_, err = db.Exec(ctx,
			"INSERT INTO shifts (name, start_time, end_time) VALUES ($1, $2, $3)",
			shift.name, shift.start, shift.end)
		if err != nil {
			log.Printf("  ❌ %s: %v", shift.name, err)
			continue
		}
		log.Printf("  - Смена %q создана.", shift.name)
	}
}

// SeedCatalog заводит виды ресурсов и их единицы: типы оборудования
// с инвентарными номерами и секторы помещений с номерами комнат.
func SeedCatalog(db *pgxpool.Pool) {
	log.Println("🌱 Наполнение: каталог ресурсов...")

	ctx := context.Background()
	catalog := []struct {
		name    string
		variant string
		labels  []string
	}{
		{"Ноутбук", constants.VariantEquipment, []string{"NB-001", "NB-002", "NB-003", "NB-004"}},
		{"Проектор", constants.VariantEquipment, []string{"PR-001", "PR-002"}},
		{"Микрофон", constants.VariantEquipment, []string{"MIC-001", "MIC-002", "MIC-003"}},
		{"Сектор А", constants.VariantRoom, []string{"А-101", "А-102", "А-103"}},
		{"Сектор Б", constants.VariantRoom, []string{"Б-201", "Б-202"}},
	}

	for _, kind := range catalog {
		kindID, err := seedKind(ctx, db, kind.name, kind.variant)
		if err != nil {
			log.Printf("  ❌ %s: %v", kind.name, err)
			continue
		}
		for _, label := range kind.labels {
			if err := seedInstance(ctx, db, kindID, label); err != nil {
				log.Printf("  ❌ %s/%s: %v", kind.name, label, err)
			}
		}
	}
}

func seedKind(ctx context.Context, db *pgxpool.Pool, name, variant string) (uint64, error) {
	var id uint64
	err := db.QueryRow(ctx, "SELECT id FROM resource_kinds WHERE name = $1 AND variant = $2", name, variant).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("ошибка проверки вида ресурса: %w", err)
	}

	err = db.QueryRow(ctx,
		"INSERT INTO resource_kinds (name, variant) VALUES ($1, $2) RETURNING id",
		name, variant).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать вид ресурса: %w", err)
	}
	log.Printf("  - Вид ресурса %q (%s) создан.", name, variant)
	return id, nil
}

func seedInstance(ctx context.Context, db *pgxpool.Pool, kindID uint64, label string) error {
	var existingID uint64
	err := db.QueryRow(ctx,
		"SELECT id FROM resource_instances WHERE kind_id = $1 AND label = $2", kindID, label).Scan(&existingID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка проверки единицы: %w", err)
	}

	_, err = db.Exec(ctx,
		"INSERT INTO resource_instances (label, kind_id, status) VALUES ($1, $2, $3)",
		label, kindID, constants.InstanceStatusOpen)
	if err != nil {
		return fmt.Errorf("не удалось создать единицу: %w", err)
	}
	log.Printf("  - Единица %q создана.", label)
	return nil
}
