package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"okr-console/internal/integrations/okrstore"
	"okr-console/internal/services"
	"okr-console/pkg/config"
	applogger "okr-console/pkg/logger"
	"okr-console/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение хранилища OKR)  ")
	log.Println("======================================================")

	runOrg := flag.Bool("org", false, "Создать компанию, департаменты, команды и сотрудников")
	runGoals := flag.Bool("goals", false, "Создать дерево целей (требует -org в том же запуске)")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -org -goals)")
	password := flag.String("password", "demo12345", "Пароль демо-сотрудников")

	flag.Parse()

	if !*runOrg && !*runGoals && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -org")
		log.Println("  go run ./seeders/cmd/seed -all -password secret")
		log.Println("======================================================")
		return
	}
	if *runGoals && !*runOrg && !*runAll {
		log.Fatal("❌ -goals ссылается на группы, созданные -org; запустите их вместе")
	}

	cfg := config.New()
	logger := applogger.NewLogger("")
	defer logger.Sync()

	log.Println("📦 Хранилище:", cfg.Remote.BaseURL)
	store := okrstore.New(cfg.Remote.BaseURL, cfg.Remote.Timeout, logger)
	// без шины: уведомлять некого
	sync := services.NewSynchronizer(store, nil, logger)
	seeder := seeders.New(sync, *password, logger)

	ctx := context.Background()
	if *runAll || *runOrg {
		if err := seeder.SeedOrg(ctx); err != nil {
			logger.Fatal("Наполнение оргструктуры прервано", zap.Error(err))
		}
		log.Println("======================================================")
	}
	if *runAll || *runGoals {
		if err := seeder.SeedGoals(ctx); err != nil {
			logger.Fatal("Наполнение целей прервано", zap.Error(err))
		}
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
