package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/config"
	"github.com/Freeeeeet/clinic_bot/internal/repository"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
	"github.com/Freeeeeet/clinic_bot/internal/repository/memory"
	"github.com/Freeeeeet/clinic_bot/internal/service"
)

// Storage хранилища сервисов и функция освобождения ресурсов
type Storage struct {
	Stores service.Stores
	Close  func()
}

// NewStorage открывает хранилище по STORAGE: PostgreSQL с миграциями или память процесса
func NewStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &Storage{Stores: MemoryStores(memory.NewDB()), Close: func() {}}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to PostgreSQL")
	return &Storage{Stores: PostgresStores(pool), Close: pool.Close}, nil
}

func PostgresStores(pool *pgxpool.Pool) service.Stores {
	return service.Stores{
		Tx:            base.NewRepository(pool),
		Slots:         repository.NewClinicSlotRepository(pool),
		Sessions:      repository.NewClinicSessionRepository(pool),
		Attendances:   repository.NewClinicAttendanceRepository(pool),
		Records:       repository.NewClinicRecordRepository(pool),
		Assignments:   repository.NewAssignmentRepository(pool),
		CourseRecords: repository.NewCourseRecordRepository(pool),
		Users:         repository.NewUserRepository(pool),
	}
}

func MemoryStores(db *memory.DB) service.Stores {
	return service.Stores{
		Tx:            db,
		Slots:         memory.NewClinicSlotRepository(db),
		Sessions:      memory.NewClinicSessionRepository(db),
		Attendances:   memory.NewClinicAttendanceRepository(db),
		Records:       memory.NewClinicRecordRepository(db),
		Assignments:   memory.NewAssignmentRepository(db),
		CourseRecords: memory.NewCourseRecordRepository(db),
		Users:         memory.NewUserRepository(db),
	}
}

// Services сервисы клиники, собранные над одним набором хранилищ
type Services struct {
	Users       *service.UserService
	Permissions *service.PermissionValidator
	Slots       *service.ClinicSlotService
	Sessions    *service.ClinicSessionService
	Attendances *service.ClinicAttendanceService
	Records     *service.ClinicRecordService
	Batch       *service.ClinicBatchService
}

func NewServices(stores service.Stores, cfg *config.Config, logger *zap.Logger) *Services {
	week := cfg.WeekPolicy()
	permissions := service.NewPermissionValidator(stores.Assignments, stores.CourseRecords)
	policy := service.EnrollmentPolicy{
		StaffBackfillWindow:   cfg.StaffBackfillWindow,
		StaffBackfillCanceled: cfg.StaffBackfillCanceled,
	}
	batchCfg := service.DefaultBatchConfig()
	batchCfg.Workers = cfg.BatchWorkers
	batchCfg.MaxRetries = cfg.BatchMaxRetries
	batchCfg.Location = cfg.Location

	return &Services{
		Users:       service.NewUserService(stores.Users, logger),
		Permissions: permissions,
		Slots:       service.NewClinicSlotService(stores, permissions, logger),
		Sessions:    service.NewClinicSessionService(stores, permissions, week, nil, logger),
		Attendances: service.NewClinicAttendanceService(stores, permissions, week, policy, cfg.Location, nil, logger),
		Records:     service.NewClinicRecordService(stores, permissions, logger),
		Batch:       service.NewClinicBatchService(stores, week, batchCfg, nil, logger.Named("batch")),
	}
}
