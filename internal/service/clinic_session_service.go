package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

// EmergencySessionInput параметры разового занятия.
// TeacherID можно не указывать, если занятие создаёт сам учитель.
type EmergencySessionInput struct {
	TeacherID int64           `validate:"gte=0"`
	BranchID  int64           `validate:"required,gt=0"`
	Date      time.Time       `validate:"required"`
	StartTime model.TimeOfDay `validate:"gte=0,lte=1440"`
	EndTime   model.TimeOfDay `validate:"gte=0,lte=1440"`
	Capacity  int             `validate:"required,gt=0"`
}

// TeacherWeek занятия учителя за неделю и число записанных на каждое
type TeacherWeek struct {
	TeacherID int64
	Days      []time.Time
	Sessions  []*model.ClinicSession
	Enrolled  map[int64]int
}

type ClinicSessionService struct {
	stores      Stores
	permissions *PermissionValidator
	week        schedule.WeekPolicy
	clock       Clock
	logger      *zap.Logger
}

func NewClinicSessionService(
	stores Stores,
	permissions *PermissionValidator,
	week schedule.WeekPolicy,
	clock Clock,
	logger *zap.Logger,
) *ClinicSessionService {
	return &ClinicSessionService{
		stores:      stores,
		permissions: permissions,
		week:        week,
		clock:       clock,
		logger:      logger,
	}
}

// CreateRegularSession заранее создаёт занятие из слота на указанную дату
func (s *ClinicSessionService) CreateRegularSession(ctx context.Context, principal model.Principal, slotID int64, date time.Time) (*model.ClinicSession, error) {
	slot, err := s.stores.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, model.NewError(model.CodeSlotNotFound, "slot %d not found", slotID)
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, slot.TeacherID); err != nil {
		return nil, err
	}

	session, err := s.materialize(ctx, slot, date)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Regular clinic session created",
		zap.Int64("session_id", session.ID),
		zap.Int64("slot_id", slot.ID),
		zap.String("date", schedule.FormatDate(session.Date)),
		zap.Int64("principal_id", principal.ID),
	)

	return session, nil
}

// materialize создаёт REGULAR занятие, если для (slot, date) нет неотменённого
func (s *ClinicSessionService) materialize(ctx context.Context, slot *model.ClinicSlot, date time.Time) (*model.ClinicSession, error) {
	if !slot.IsActive {
		return nil, model.NewError(model.CodeSlotInactive, "slot %d is inactive", slot.ID)
	}
	date = schedule.DateOf(date)
	if date.Weekday() != slot.DayOfWeek {
		return nil, model.NewError(model.CodeBadRequest, "%s is %s, slot %d runs on %s",
			schedule.FormatDate(date), date.Weekday(), slot.ID, slot.DayOfWeek)
	}

	existing, err := s.stores.Sessions.GetRegular(ctx, slot.ID, date)
	if err != nil {
		return nil, fmt.Errorf("get regular session: %w", err)
	}
	if existing != nil {
		return nil, model.NewError(model.CodeSessionAlreadyExists, "session %d already exists for slot %d on %s",
			existing.ID, slot.ID, schedule.FormatDate(date))
	}

	session := sessionFromSlot(slot, date)
	if err := s.stores.Sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func sessionFromSlot(slot *model.ClinicSlot, date time.Time) *model.ClinicSession {
	slotID := slot.ID
	return &model.ClinicSession{
		SlotID:      &slotID,
		TeacherID:   slot.TeacherID,
		BranchID:    slot.BranchID,
		SessionType: model.SessionTypeRegular,
		Date:        schedule.DateOf(date),
		StartTime:   slot.StartTime,
		EndTime:     slot.EndTime,
		Capacity:    slot.DefaultCapacity,
	}
}

// CreateEmergencySession создаёт разовое занятие. Ассистент создаёт его за закреплённого учителя.
func (s *ClinicSessionService) CreateEmergencySession(ctx context.Context, principal model.Principal, in EmergencySessionInput) (*model.ClinicSession, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	teacherID := in.TeacherID
	if teacherID == 0 && principal.IsTeacher() {
		teacherID = principal.ID
	}
	if teacherID == 0 {
		return nil, model.NewError(model.CodeBadRequest, "teacher is required")
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, teacherID); err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureTeacherAssignment(ctx, teacherID, in.BranchID); err != nil {
		return nil, err
	}

	creatorID := principal.ID
	session := &model.ClinicSession{
		TeacherID:   teacherID,
		BranchID:    in.BranchID,
		SessionType: model.SessionTypeEmergency,
		CreatorID:   &creatorID,
		Date:        schedule.DateOf(in.Date),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Capacity:    in.Capacity,
	}

	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		sameDay, err := s.stores.Sessions.GetByTeacherID(ctx, teacherID, session.Date, session.Date)
		if err != nil {
			return fmt.Errorf("get teacher sessions: %w", err)
		}
		if other := schedule.FirstSessionConflict(session.Date, session.StartTime, session.EndTime, sameDay, 0); other != nil {
			return model.NewError(model.CodeSessionTimeConflict, "overlaps session %d (%s-%s)",
				other.ID, other.StartTime, other.EndTime)
		}
		if err := s.stores.Sessions.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Emergency clinic session created",
		zap.Int64("session_id", session.ID),
		zap.Int64("teacher_id", teacherID),
		zap.Int64("creator_id", creatorID),
		zap.String("date", schedule.FormatDate(session.Date)),
		zap.Stringer("start", session.StartTime),
		zap.Stringer("end", session.EndTime),
	)

	return session, nil
}

// CancelSession отменяет занятие. Записи на него сохраняются, отмена необратима.
func (s *ClinicSessionService) CancelSession(ctx context.Context, principal model.Principal, sessionID int64) (*model.ClinicSession, error) {
	var session *model.ClinicSession

	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		session, err = loadSession(ctx, s.stores.Sessions, sessionID)
		if err != nil {
			return err
		}
		if err := s.permissions.EnsureStaffAccess(ctx, principal, session.TeacherID); err != nil {
			return err
		}
		if session.IsCanceled {
			return model.NewError(model.CodeSessionCanceled, "session %d is already canceled", sessionID)
		}

		if err := s.stores.Sessions.Cancel(ctx, session.ID, session.Version, s.clock.now()); err != nil {
			return fmt.Errorf("cancel session: %w", err)
		}
		session, err = loadSession(ctx, s.stores.Sessions, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clinic session canceled",
		zap.Int64("session_id", session.ID),
		zap.Int64("principal_id", principal.ID),
		zap.Int64("version", session.Version),
	)

	return session, nil
}

// GetSession получает занятие по ID
func (s *ClinicSessionService) GetSession(ctx context.Context, sessionID int64) (*model.ClinicSession, error) {
	return loadSession(ctx, s.stores.Sessions, sessionID)
}

// ListTeacherWeek возвращает занятия учителя за неделю, содержащую anyDay
func (s *ClinicSessionService) ListTeacherWeek(ctx context.Context, principal model.Principal, teacherID int64, anyDay time.Time) (*TeacherWeek, error) {
	if err := s.permissions.EnsureViewAccess(ctx, principal, teacherID); err != nil {
		return nil, err
	}

	days := s.week.Days(anyDay)
	sessions, err := s.stores.Sessions.GetByTeacherID(ctx, teacherID, days[0], days[len(days)-1])
	if err != nil {
		return nil, fmt.Errorf("get teacher sessions: %w", err)
	}

	enrolled := make(map[int64]int, len(sessions))
	for _, session := range sessions {
		count, err := s.stores.Attendances.CountBySessionID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("count attendances: %w", err)
		}
		enrolled[session.ID] = count
	}

	return &TeacherWeek{
		TeacherID: teacherID,
		Days:      days,
		Sessions:  sessions,
		Enrolled:  enrolled,
	}, nil
}

func loadSession(ctx context.Context, repo ClinicSessionRepository, sessionID int64) (*model.ClinicSession, error) {
	session, err := repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, model.NewError(model.CodeSessionNotFound, "session %d not found", sessionID)
	}
	return session, nil
}
