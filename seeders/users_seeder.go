package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"booking-system/pkg/utils"
)

// SeedUsers создаёт администратора и пару обычных пользователей.
// Повторный запуск ничего не дублирует.
func SeedUsers(db *pgxpool.Pool) {
	log.Println("🌱 Наполнение: пользователи...")

	ctx := context.Background()
	users := []struct {
		fio      string
		login    string
		email    string
		password string
		isAdmin  bool
	}{
		{"Администратор системы", "admin", "admin@booking.local", "admin12345", true},
		{"Иванов Иван Иванович", "ivanov", "ivanov@booking.local", "ivanov12345", false},
		{"Петрова Анна Сергеевна", "petrova", "petrova@booking.local", "petrova12345", false},
	}

	for _, user := range users {
		if err := seedUser(ctx, db, user.fio, user.login, user.email, user.password, user.isAdmin); err != nil {
			log.Printf("  ❌ %s: %v", user.login, err)
		}
	}
}

func seedUser(ctx context.Context, db *pgxpool.Pool, fio, login, email, password string, isAdmin bool) error {
	var existingID uint64
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE login = $1", login).Scan(&existingID)
	if err == nil {
		log.Printf("  - Пользователь %q уже существует. Пропускаем.", login)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка проверки существования пользователя: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пароль: %w", err)
	}

	_, err = db.Exec(ctx,
		"INSERT INTO users (fio, login, email, password_hash, is_admin) VALUES ($1, $2, $3, $4, $5)",
		fio, login, email, hash, isAdmin)
	if err != nil {
		return fmt.Errorf("не удалось создать пользователя: %w", err)
	}

	log.Printf("  - Пользователь %q создан.", login)
	return nil
}
