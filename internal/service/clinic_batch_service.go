package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

// BatchConfig параметры пакетной генерации
type BatchConfig struct {
	Workers    int
	MaxRetries uint64
	RetryBase  time.Duration
	// Location часовой пояс, в котором сравнивается начало занятия с текущим временем
	Location *time.Location
}

func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Workers:    4,
		MaxRetries: 3,
		RetryBase:  50 * time.Millisecond,
		Location:   time.UTC,
	}
}

// BatchReport итог одного запуска генерации
type BatchReport struct {
	RunID              uuid.UUID
	WeekStart          time.Time
	SessionsCreated    int
	SessionsSkipped    int
	AttendancesCreated int
	AttendancesSkipped int
	Failed             int
}

type batchCounters struct {
	created atomic.Int64
	skipped atomic.Int64
	failed  atomic.Int64
}

// ClinicBatchService еженедельно создаёт занятия из активных слотов и записи студентов
// по слотам по умолчанию. Работает с правами системы, повторный запуск ничего не дублирует.
// Уже начавшиеся даты недели пропускаются: прошлое не достраивается.
type ClinicBatchService struct {
	stores Stores
	week   schedule.WeekPolicy
	cfg    BatchConfig
	clock  Clock
	logger *zap.Logger
}

func NewClinicBatchService(stores Stores, week schedule.WeekPolicy, cfg BatchConfig, clock Clock, logger *zap.Logger) *ClinicBatchService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = DefaultBatchConfig().RetryBase
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &ClinicBatchService{
		stores: stores,
		week:   week,
		cfg:    cfg,
		clock:  clock,
		logger: logger,
	}
}

// RunWeekly создаёт занятия, затем записи на неделю, содержащую baseDate
func (s *ClinicBatchService) RunWeekly(ctx context.Context, baseDate time.Time) (*BatchReport, error) {
	report := &BatchReport{
		RunID:     uuid.New(),
		WeekStart: s.week.WeekStart(baseDate),
	}
	logger := s.logger.With(zap.String("run_id", report.RunID.String()))

	if err := s.generateSessions(ctx, logger, baseDate, report); err != nil {
		return report, err
	}
	if err := s.generateAttendances(ctx, logger, baseDate, report); err != nil {
		return report, err
	}

	logger.Info("Weekly clinic batch finished",
		zap.String("week_start", schedule.FormatDate(report.WeekStart)),
		zap.Int("sessions_created", report.SessionsCreated),
		zap.Int("sessions_skipped", report.SessionsSkipped),
		zap.Int("attendances_created", report.AttendancesCreated),
		zap.Int("attendances_skipped", report.AttendancesSkipped),
		zap.Int("failed", report.Failed),
	)

	return report, nil
}

// GenerateWeeklySessions создаёт REGULAR занятие для каждого активного слота в неделе baseDate
func (s *ClinicBatchService) GenerateWeeklySessions(ctx context.Context, baseDate time.Time) (*BatchReport, error) {
	report := &BatchReport{RunID: uuid.New(), WeekStart: s.week.WeekStart(baseDate)}
	err := s.generateSessions(ctx, s.logger.With(zap.String("run_id", report.RunID.String())), baseDate, report)
	return report, err
}

// GenerateWeeklyAttendances записывает студентов с назначенным слотом на занятия недели baseDate
func (s *ClinicBatchService) GenerateWeeklyAttendances(ctx context.Context, baseDate time.Time) (*BatchReport, error) {
	report := &BatchReport{RunID: uuid.New(), WeekStart: s.week.WeekStart(baseDate)}
	err := s.generateAttendances(ctx, s.logger.With(zap.String("run_id", report.RunID.String())), baseDate, report)
	return report, err
}

func (s *ClinicBatchService) generateSessions(ctx context.Context, logger *zap.Logger, baseDate time.Time, report *BatchReport) error {
	slots, err := s.stores.Slots.GetAllActive(ctx)
	if err != nil {
		return fmt.Errorf("get active slots: %w", err)
	}

	var c batchCounters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, slot := range slots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			date := s.week.DateInWeek(baseDate, slot.DayOfWeek)
			created, err := s.sessionForSlot(gctx, slot, date)
			switch {
			case err != nil:
				c.failed.Add(1)
				logger.Warn("Failed to generate clinic session",
					zap.Int64("slot_id", slot.ID),
					zap.String("date", schedule.FormatDate(date)),
					zap.Error(err),
				)
			case created:
				c.created.Add(1)
			default:
				c.skipped.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	report.SessionsCreated += int(c.created.Load())
	report.SessionsSkipped += int(c.skipped.Load())
	report.Failed += int(c.failed.Load())

	logger.Info("Generated weekly clinic sessions",
		zap.Int("total_slots", len(slots)),
		zap.Int64("created", c.created.Load()),
		zap.Int64("skipped", c.skipped.Load()),
	)

	return err
}

// sessionForSlot не создаёт занятие, если в эту дату уже было любое REGULAR занятие слота,
// в том числе отменённое. Параллельные запуски разводит уникальный индекс.
func (s *ClinicBatchService) sessionForSlot(ctx context.Context, slot *model.ClinicSlot, date time.Time) (bool, error) {
	if s.started(slot.StartTime.On(date, s.cfg.Location)) {
		return false, nil
	}

	exists, err := s.stores.Sessions.ExistsRegular(ctx, slot.ID, date)
	if err != nil {
		return false, fmt.Errorf("check regular session: %w", err)
	}
	if exists {
		return false, nil
	}

	created, err := s.stores.Sessions.CreateRegularIfAbsent(ctx, sessionFromSlot(slot, date))
	if err != nil {
		return false, fmt.Errorf("create regular session: %w", err)
	}
	return created, nil
}

func (s *ClinicBatchService) generateAttendances(ctx context.Context, logger *zap.Logger, baseDate time.Time, report *BatchReport) error {
	records, err := s.stores.CourseRecords.GetWithDefaultSlot(ctx)
	if err != nil {
		return fmt.Errorf("get course records with default slot: %w", err)
	}

	var c batchCounters
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, record := range records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			created, err := s.attendanceForRecord(gctx, record, baseDate)
			switch {
			case err != nil:
				c.failed.Add(1)
				logger.Warn("Failed to generate clinic attendance",
					zap.Int64("course_record_id", record.ID),
					zap.Int64p("slot_id", record.DefaultClinicSlotID),
					zap.Error(err),
				)
			case created:
				c.created.Add(1)
			default:
				c.skipped.Add(1)
			}
			return nil
		})
	}

	err = g.Wait()
	report.AttendancesCreated += int(c.created.Load())
	report.AttendancesSkipped += int(c.skipped.Load())
	report.Failed += int(c.failed.Load())

	logger.Info("Generated weekly clinic attendances",
		zap.Int("total_records", len(records)),
		zap.Int64("created", c.created.Load()),
		zap.Int64("skipped", c.skipped.Load()),
	)

	return err
}

// attendanceForRecord записывает студента на занятие слота по умолчанию.
// Конфликт версии занятия повторяется с экспоненциальной паузой.
func (s *ClinicBatchService) attendanceForRecord(ctx context.Context, record *model.StudentCourseRecord, baseDate time.Time) (bool, error) {
	slot, err := s.stores.Slots.GetByID(ctx, *record.DefaultClinicSlotID)
	if err != nil {
		return false, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil || !slot.IsActive {
		return false, nil
	}
	date := s.week.DateInWeek(baseDate, slot.DayOfWeek)

	created := false
	backoff := retry.WithMaxRetries(s.cfg.MaxRetries, retry.NewExponential(s.cfg.RetryBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
			session, err := s.stores.Sessions.GetRegular(ctx, slot.ID, date)
			if err != nil {
				return fmt.Errorf("get regular session: %w", err)
			}
			if session == nil || s.started(session.StartsAt(s.cfg.Location)) {
				return nil
			}

			_, err = enroll(ctx, s.stores, session, record, slot.TeacherID)
			switch {
			case errors.Is(err, model.ErrConcurrentModification):
				return retry.RetryableError(err)
			case err != nil:
				return err
			}
			created = true
			return nil
		})
	})
	// дубликат откатывает транзакцию целиком и считается пропуском
	if errors.Is(err, model.ErrAttendanceAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return created, nil
}

// started занятие уже началось, создавать его или записывать на него поздно
func (s *ClinicBatchService) started(startsAt time.Time) bool {
	return !startsAt.After(s.clock.now())
}
