package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

// CreateSlotInput параметры нового еженедельного слота
type CreateSlotInput struct {
	TeacherID       int64           `validate:"required,gt=0"`
	BranchID        int64           `validate:"required,gt=0"`
	DayOfWeek       time.Weekday    `validate:"gte=0,lte=6"`
	StartTime       model.TimeOfDay `validate:"gte=0,lte=1440"`
	EndTime         model.TimeOfDay `validate:"gte=0,lte=1440"`
	DefaultCapacity int             `validate:"required,gt=0"`
}

// UpdateSlotInput изменяемые поля слота, nil означает "не менять"
type UpdateSlotInput struct {
	DayOfWeek       *time.Weekday
	StartTime       *model.TimeOfDay
	EndTime         *model.TimeOfDay
	DefaultCapacity *int
}

type slotSchedule struct {
	DayOfWeek       time.Weekday    `validate:"gte=0,lte=6"`
	StartTime       model.TimeOfDay `validate:"gte=0,lte=1440"`
	EndTime         model.TimeOfDay `validate:"gte=0,lte=1440"`
	DefaultCapacity int             `validate:"gt=0"`
}

type ClinicSlotService struct {
	stores      Stores
	permissions *PermissionValidator
	logger      *zap.Logger
}

func NewClinicSlotService(stores Stores, permissions *PermissionValidator, logger *zap.Logger) *ClinicSlotService {
	return &ClinicSlotService{
		stores:      stores,
		permissions: permissions,
		logger:      logger,
	}
}

// CreateSlot создаёт активный слот, если он не пересекается с другими активными слотами учителя в тот же день
func (s *ClinicSlotService) CreateSlot(ctx context.Context, principal model.Principal, in CreateSlotInput) (*model.ClinicSlot, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := validateRange(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, in.TeacherID); err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureTeacherAssignment(ctx, in.TeacherID, in.BranchID); err != nil {
		return nil, err
	}

	slot := &model.ClinicSlot{
		TeacherID:       in.TeacherID,
		CreatorID:       principal.ID,
		BranchID:        in.BranchID,
		DayOfWeek:       in.DayOfWeek,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DefaultCapacity: in.DefaultCapacity,
		IsActive:        true,
	}

	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkConflict(ctx, slot); err != nil {
			return err
		}
		if err := s.stores.Slots.Create(ctx, slot); err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clinic slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("teacher_id", slot.TeacherID),
		zap.Int64("branch_id", slot.BranchID),
		zap.Stringer("day", slot.DayOfWeek),
		zap.Stringer("start", slot.StartTime),
		zap.Stringer("end", slot.EndTime),
		zap.Int("capacity", slot.DefaultCapacity),
	)

	return slot, nil
}

// UpdateSlot меняет расписание или вместимость слота. Доступно только владельцу.
// После смены расписания назначения слота по умолчанию снимаются.
func (s *ClinicSlotService) UpdateSlot(ctx context.Context, principal model.Principal, slotID int64, in UpdateSlotInput) (*model.ClinicSlot, error) {
	var slot *model.ClinicSlot
	var cleared int64

	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		slot, err = s.loadSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if !principal.IsTeacher() || principal.ID != slot.TeacherID {
			return model.NewError(model.CodeForbidden, "only the owner can update slot %d", slotID)
		}

		next := slotSchedule{
			DayOfWeek:       slot.DayOfWeek,
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			DefaultCapacity: slot.DefaultCapacity,
		}
		if in.DayOfWeek != nil {
			next.DayOfWeek = *in.DayOfWeek
		}
		if in.StartTime != nil {
			next.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			next.EndTime = *in.EndTime
		}
		if in.DefaultCapacity != nil {
			next.DefaultCapacity = *in.DefaultCapacity
		}
		if err := validateInput(next); err != nil {
			return err
		}
		if err := validateRange(next.StartTime, next.EndTime); err != nil {
			return err
		}

		scheduleChanged := next.DayOfWeek != slot.DayOfWeek ||
			next.StartTime != slot.StartTime ||
			next.EndTime != slot.EndTime

		slot.DayOfWeek = next.DayOfWeek
		slot.StartTime = next.StartTime
		slot.EndTime = next.EndTime

		if scheduleChanged && slot.IsActive {
			if err := s.checkConflict(ctx, slot); err != nil {
				return err
			}
		}

		// при смене расписания назначения снимаются ниже, сравнивать вместимость не с чем
		if !scheduleChanged && next.DefaultCapacity < slot.DefaultCapacity {
			assigned, err := s.stores.CourseRecords.CountByDefaultSlot(ctx, slot.ID)
			if err != nil {
				return fmt.Errorf("count default slot assignments: %w", err)
			}
			if next.DefaultCapacity < assigned {
				return model.NewError(model.CodeCapacityConflict,
					"capacity %d is below %d students assigned to slot %d", next.DefaultCapacity, assigned, slot.ID)
			}
		}
		slot.DefaultCapacity = next.DefaultCapacity

		if err := s.stores.Slots.Update(ctx, slot); err != nil {
			return fmt.Errorf("update slot: %w", err)
		}

		if scheduleChanged {
			cleared, err = s.stores.CourseRecords.ClearDefaultSlot(ctx, slot.ID)
			if err != nil {
				return fmt.Errorf("clear default slot: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clinic slot updated",
		zap.Int64("slot_id", slot.ID),
		zap.Stringer("day", slot.DayOfWeek),
		zap.Stringer("start", slot.StartTime),
		zap.Stringer("end", slot.EndTime),
		zap.Int("capacity", slot.DefaultCapacity),
		zap.Int64("cleared_default_assignments", cleared),
	)

	return slot, nil
}

// Deactivate выключает слот, занятия из него больше не генерируются
func (s *ClinicSlotService) Deactivate(ctx context.Context, principal model.Principal, slotID int64) (*model.ClinicSlot, error) {
	slot, err := s.loadSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, slot.TeacherID); err != nil {
		return nil, err
	}
	if !slot.IsActive {
		return slot, nil
	}

	if err := s.stores.Slots.SetActive(ctx, slot.ID, false); err != nil {
		return nil, fmt.Errorf("deactivate slot: %w", err)
	}

	s.logger.Info("Clinic slot deactivated", zap.Int64("slot_id", slot.ID))
	return s.loadSlot(ctx, slotID)
}

// Activate включает слот. Пока слот был выключен, могли появиться пересекающиеся слоты, поэтому проверка повторяется.
func (s *ClinicSlotService) Activate(ctx context.Context, principal model.Principal, slotID int64) (*model.ClinicSlot, error) {
	slot, err := s.loadSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, slot.TeacherID); err != nil {
		return nil, err
	}
	if slot.IsActive {
		return slot, nil
	}

	err = s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkConflict(ctx, slot); err != nil {
			return err
		}
		return s.stores.Slots.SetActive(ctx, slot.ID, true)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clinic slot activated", zap.Int64("slot_id", slot.ID))
	return s.loadSlot(ctx, slotID)
}

// DeleteSlot удаляет слот, из которого ещё не создано ни одного занятия
func (s *ClinicSlotService) DeleteSlot(ctx context.Context, principal model.Principal, slotID int64) error {
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.loadSlot(ctx, slotID)
		if err != nil {
			return err
		}
		if !principal.IsTeacher() || principal.ID != slot.TeacherID {
			return model.NewError(model.CodeForbidden, "only the owner can delete slot %d", slotID)
		}

		count, err := s.stores.Sessions.CountBySlotID(ctx, slotID)
		if err != nil {
			return fmt.Errorf("count slot sessions: %w", err)
		}
		if count > 0 {
			return model.NewError(model.CodeSlotHasSessions, "slot %d has %d sessions, deactivate it instead", slotID, count)
		}

		if _, err := s.stores.CourseRecords.ClearDefaultSlot(ctx, slotID); err != nil {
			return fmt.Errorf("clear default slot: %w", err)
		}
		return s.stores.Slots.Delete(ctx, slotID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Clinic slot deleted", zap.Int64("slot_id", slotID))
	return nil
}

// GetSlot получает слот по ID
func (s *ClinicSlotService) GetSlot(ctx context.Context, slotID int64) (*model.ClinicSlot, error) {
	return s.loadSlot(ctx, slotID)
}

// ListTeacherSlots возвращает все слоты учителя, включая выключенные
func (s *ClinicSlotService) ListTeacherSlots(ctx context.Context, teacherID int64) ([]*model.ClinicSlot, error) {
	slots, err := s.stores.Slots.GetByTeacherID(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list teacher slots: %w", err)
	}
	return slots, nil
}

// AssignDefaultSlot назначает записи курса слот по умолчанию, из которого пакетная генерация
// будет каждую неделю записывать студента. slotID == nil снимает назначение.
func (s *ClinicSlotService) AssignDefaultSlot(ctx context.Context, principal model.Principal, recordID int64, slotID *int64) (*model.StudentCourseRecord, error) {
	var record *model.StudentCourseRecord

	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = loadCourseRecord(ctx, s.stores.CourseRecords, recordID)
		if err != nil {
			return err
		}
		if err := s.permissions.EnsureStaffAccess(ctx, principal, record.TeacherID); err != nil {
			return err
		}

		if slotID == nil {
			record.DefaultClinicSlotID = nil
			return s.stores.CourseRecords.SetDefaultSlot(ctx, record.ID, nil)
		}

		slot, err := s.loadSlot(ctx, *slotID)
		if err != nil {
			return err
		}
		if !slot.IsActive {
			return model.NewError(model.CodeSlotInactive, "slot %d is inactive", slot.ID)
		}
		if slot.TeacherID != record.TeacherID || slot.BranchID != record.BranchID {
			return model.NewError(model.CodeBadRequest, "slot %d does not belong to the course teacher and branch", slot.ID)
		}
		if record.DefaultClinicSlotID != nil && *record.DefaultClinicSlotID == slot.ID {
			return nil
		}

		assigned, err := s.stores.CourseRecords.CountByDefaultSlot(ctx, slot.ID)
		if err != nil {
			return fmt.Errorf("count default slot assignments: %w", err)
		}
		if assigned >= slot.DefaultCapacity {
			return model.NewError(model.CodeCapacityConflict, "slot %d already has %d of %d students", slot.ID, assigned, slot.DefaultCapacity)
		}

		record.DefaultClinicSlotID = &slot.ID
		return s.stores.CourseRecords.SetDefaultSlot(ctx, record.ID, &slot.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Default clinic slot assigned",
		zap.Int64("course_record_id", record.ID),
		zap.Int64p("slot_id", record.DefaultClinicSlotID),
	)

	return record, nil
}

func (s *ClinicSlotService) checkConflict(ctx context.Context, slot *model.ClinicSlot) error {
	slots, err := s.stores.Slots.GetActiveByTeacherDay(ctx, slot.TeacherID, slot.DayOfWeek)
	if err != nil {
		return fmt.Errorf("get active slots: %w", err)
	}

	if other := schedule.FirstSlotConflict(slot, slots); other != nil {
		return model.NewError(model.CodeSlotConflict, "overlaps slot %d (%s %s-%s)",
			other.ID, other.DayOfWeek, other.StartTime, other.EndTime)
	}
	return nil
}

func (s *ClinicSlotService) loadSlot(ctx context.Context, slotID int64) (*model.ClinicSlot, error) {
	slot, err := s.stores.Slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	if slot == nil {
		return nil, model.NewError(model.CodeSlotNotFound, "slot %d not found", slotID)
	}
	return slot, nil
}

func loadCourseRecord(ctx context.Context, repo CourseRecordRepository, recordID int64) (*model.StudentCourseRecord, error) {
	record, err := repo.GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("get course record: %w", err)
	}
	if record == nil {
		return nil, model.NewError(model.CodeCourseRecordNotFound, "course record %d not found", recordID)
	}
	return record, nil
}
