package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/app"
	"github.com/Freeeeeet/clinic_bot/internal/config"
	"github.com/Freeeeeet/clinic_bot/internal/controller"
	"github.com/Freeeeeet/clinic_bot/internal/controller/handlers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Clinic bot stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting clinic bot",
		zap.String("environment", cfg.Environment),
		zap.String("storage", cfg.Storage),
		zap.String("timezone", cfg.Location.String()),
		zap.Stringer("week_start", cfg.WeekStart),
	)

	storage, err := app.NewStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close()

	services := app.NewServices(storage.Stores, cfg, logger)

	scheduler := app.NewScheduler(services.Batch, cfg.BatchInterval, logger.Named("scheduler"))
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.TelegramToken == "" {
		logger.Warn("TELEGRAM_TOKEN is not set, running scheduler only")
		<-ctx.Done()
		return nil
	}

	botController, err := controller.NewBotController(cfg.TelegramToken, handlers.Services{
		Users:       services.Users,
		Slots:       services.Slots,
		Sessions:    services.Sessions,
		Attendances: services.Attendances,
		Records:     services.Records,
	}, logger.Named("bot"))
	if err != nil {
		return err
	}
	if err := botController.RegisterHandlers(ctx); err != nil {
		return err
	}

	botController.Start(ctx)
	logger.Info("Clinic bot stopped")
	return nil
}
