package main

import (
	"flag"
	"log"

	"booking-system/pkg/config"
	"booking-system/pkg/database/postgresql"
	"booking-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runUsers := flag.Bool("users", false, "Создать администратора и тестовых пользователей")
	runShifts := flag.Bool("shifts", false, "Создать стандартные смены")
	runCatalog := flag.Bool("catalog", false, "Наполнить каталог ресурсов (виды и единицы)")
	runAll := flag.Bool("all", false, "Запустить все сидеры")

	flag.Parse()

	if !*runUsers && !*runShifts && !*runCatalog && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -users")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)
	dbPool := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbPool.Close()

	log.Println("======================================================")

	if *runAll || *runUsers {
		seeders.SeedUsers(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runShifts {
		seeders.SeedShifts(dbPool)
		log.Println("======================================================")
	}
	if *runAll || *runCatalog {
		seeders.SeedCatalog(dbPool)
		log.Println("======================================================")
	}

	log.Println("✅ Наполнение завершено.")
}
