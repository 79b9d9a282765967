package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/service"
)

// WeeklyRunner запускает пакетную генерацию на неделю, содержащую baseDate
type WeeklyRunner interface {
	RunWeekly(ctx context.Context, baseDate time.Time) (*service.BatchReport, error)
}

// Scheduler периодически запускает пакетную генерацию занятий и записей
type Scheduler struct {
	batch    WeeklyRunner
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

func NewScheduler(batch WeeklyRunner, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		batch:    batch,
		interval: interval,
		now:      time.Now,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start запускает фоновую задачу
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	go s.runBatchTask(ctx)
}

// Stop останавливает задачу и дожидается завершения текущего запуска
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

func (s *Scheduler) runBatchTask(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.runBatch(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runBatch(ctx)
		case <-s.stopChan:
			s.logger.Info("Clinic batch task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Clinic batch task cancelled")
			return
		}
	}
}

// runBatch покрывает текущую и следующую неделю, чтобы занятия появлялись заранее
func (s *Scheduler) runBatch(ctx context.Context) {
	now := s.now()
	for _, baseDate := range []time.Time{now, now.AddDate(0, 0, 7)} {
		report, err := s.batch.RunWeekly(ctx, baseDate)
		if err != nil {
			s.logger.Error("Clinic batch failed", zap.Time("base_date", baseDate), zap.Error(err))
			continue
		}
		if report.Failed > 0 {
			s.logger.Warn("Clinic batch finished with failures",
				zap.String("run_id", report.RunID.String()),
				zap.Int("failed", report.Failed),
			)
		}
	}
}
