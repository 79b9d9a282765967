// clinic_batch один раз запускает еженедельную генерацию занятий и записей.
// Повторный запуск на ту же неделю ничего не дублирует.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/app"
	"github.com/Freeeeeet/clinic_bot/internal/config"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

func main() {
	dateFlag := flag.String("date", "", "any day of the target week, YYYY-MM-DD (default: next week)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	baseDate := time.Now().In(cfg.Location).AddDate(0, 0, 7)
	if *dateFlag != "" {
		baseDate, err = schedule.ParseDate(*dateFlag)
		if err != nil {
			logger.Fatal("Invalid -date", zap.String("date", *dateFlag), zap.Error(err))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := app.NewStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer storage.Close()

	services := app.NewServices(storage.Stores, cfg, logger)
	report, err := services.Batch.RunWeekly(ctx, baseDate)
	if err != nil {
		logger.Fatal("Clinic batch failed", zap.Error(err))
	}

	logger.Info("Clinic batch done",
		zap.String("run_id", report.RunID.String()),
		zap.String("week_start", schedule.FormatDate(report.WeekStart)),
		zap.Int("sessions_created", report.SessionsCreated),
		zap.Int("attendances_created", report.AttendancesCreated),
		zap.Int("failed", report.Failed),
	)
}
