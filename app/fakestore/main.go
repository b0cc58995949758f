package main

import (
	"context"
	"flag"
	"net/http"

	"go.uber.org/zap"

	"okr-console/internal/integrations/mock"
	"okr-console/internal/services"
	applogger "okr-console/pkg/logger"
	"okr-console/seeders"
)

// Хранилище OKR в памяти с тем же REST-контрактом: для локального запуска
// консоли с REMOTE_PROVIDER=okrstore без настоящего бэкенда.
func main() {
	addr := flag.String("addr", ":8000", "Адрес, на котором слушает хранилище")
	seed := flag.Bool("seed", true, "Наполнить хранилище демо-организацией")
	password := flag.String("password", "demo12345", "Пароль демо-сотрудников")
	flag.Parse()

	logger := applogger.NewLogger("")
	defer logger.Sync()

	store := mock.NewMockProvider()
	if *seed {
		seeder := seeders.New(services.NewSynchronizer(store, nil, logger), *password, logger)
		ctx := context.Background()
		if err := seeder.SeedOrg(ctx); err != nil {
			logger.Fatal("Наполнение оргструктуры прервано", zap.Error(err))
		}
		if err := seeder.SeedGoals(ctx); err != nil {
			logger.Fatal("Наполнение целей прервано", zap.Error(err))
		}
	}

	logger.Info("🚀 Тестовое хранилище OKR запущено", zap.String("addr", *addr))
	if err := http.ListenAndServe(*addr, store.Handler()); err != nil {
		logger.Fatal("Ошибка запуска хранилища", zap.Error(err))
	}
}
