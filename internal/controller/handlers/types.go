package handlers

import (
	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/clinic_bot/internal/service"
)

// Services сервисы клиники, которые вызывают команды бота
type Services struct {
	Users       *service.UserService
	Slots       *service.ClinicSlotService
	Sessions    *service.ClinicSessionService
	Attendances *service.ClinicAttendanceService
	Records     *service.ClinicRecordService
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	users        *service.UserService
	slots        *service.ClinicSlotService
	sessions     *service.ClinicSessionService
	attendances  *service.ClinicAttendanceService
	records      *service.ClinicRecordService
	stateManager *state.Manager
	logger       *zap.Logger
}

func NewHandlers(services Services, stateManager *state.Manager, logger *zap.Logger) *Handlers {
	return &Handlers{
		users:        services.Users,
		slots:        services.Slots,
		sessions:     services.Sessions,
		attendances:  services.Attendances,
		records:      services.Records,
		stateManager: stateManager,
		logger:       logger,
	}
}
