package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// RecordInput содержимое записи клиники
type RecordInput struct {
	Title            string `validate:"required,max=200"`
	Content          string `validate:"max=4000"`
	HomeworkProgress string `validate:"max=2000"`
}

type ClinicRecordService struct {
	stores      Stores
	permissions *PermissionValidator
	logger      *zap.Logger
}

func NewClinicRecordService(stores Stores, permissions *PermissionValidator, logger *zap.Logger) *ClinicRecordService {
	return &ClinicRecordService{
		stores:      stores,
		permissions: permissions,
		logger:      logger,
	}
}

// CreateRecord создаёт запись по итогам занятия, не больше одной на посещение
func (s *ClinicRecordService) CreateRecord(ctx context.Context, principal model.Principal, attendanceID int64, in RecordInput) (*model.ClinicRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	record := &model.ClinicRecord{
		ClinicAttendanceID: attendanceID,
		WriterID:           principal.ID,
		Title:              in.Title,
		Content:            in.Content,
		HomeworkProgress:   in.HomeworkProgress,
	}

	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authorizeStaff(ctx, principal, attendanceID); err != nil {
			return err
		}

		existing, err := s.stores.Records.GetByAttendanceID(ctx, attendanceID)
		if err != nil {
			return fmt.Errorf("get clinic record: %w", err)
		}
		if existing != nil {
			return model.NewError(model.CodeClinicRecordAlreadyExists, "attendance %d already has record %d", attendanceID, existing.ID)
		}

		if err := s.stores.Records.Create(ctx, record); err != nil {
			return fmt.Errorf("create clinic record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clinic record created",
		zap.Int64("record_id", record.ID),
		zap.Int64("attendance_id", attendanceID),
		zap.Int64("writer_id", principal.ID),
	)

	return record, nil
}

// UpdateRecord перезаписывает содержимое записи
func (s *ClinicRecordService) UpdateRecord(ctx context.Context, principal model.Principal, attendanceID int64, in RecordInput) (*model.ClinicRecord, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var record *model.ClinicRecord
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authorizeStaff(ctx, principal, attendanceID); err != nil {
			return err
		}

		var err error
		record, err = s.loadRecord(ctx, attendanceID)
		if err != nil {
			return err
		}

		record.WriterID = principal.ID
		record.Title = in.Title
		record.Content = in.Content
		record.HomeworkProgress = in.HomeworkProgress
		if err := s.stores.Records.Update(ctx, record); err != nil {
			return fmt.Errorf("update clinic record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Clinic record updated",
		zap.Int64("record_id", record.ID),
		zap.Int64("attendance_id", attendanceID),
		zap.Int64("writer_id", principal.ID),
	)

	return record, nil
}

// DeleteRecord удаляет запись клиники
func (s *ClinicRecordService) DeleteRecord(ctx context.Context, principal model.Principal, attendanceID int64) error {
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.authorizeStaff(ctx, principal, attendanceID); err != nil {
			return err
		}
		if _, err := s.loadRecord(ctx, attendanceID); err != nil {
			return err
		}
		return s.stores.Records.DeleteByAttendanceID(ctx, attendanceID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Clinic record deleted",
		zap.Int64("attendance_id", attendanceID),
		zap.Int64("principal_id", principal.ID),
	)

	return nil
}

// GetRecord возвращает запись сотрудникам учителя и самому студенту
func (s *ClinicRecordService) GetRecord(ctx context.Context, principal model.Principal, attendanceID int64) (*model.ClinicRecord, error) {
	course, err := s.resolveCourse(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if principal.IsStudent() {
		if course.StudentID != principal.ID {
			return nil, model.NewError(model.CodeForbidden, "attendance %d belongs to another student", attendanceID)
		}
	} else if err := s.permissions.EnsureStaffAccess(ctx, principal, course.TeacherID); err != nil {
		return nil, err
	}

	return s.loadRecord(ctx, attendanceID)
}

// authorizeStaff проходит цепочку посещение -> курс -> учитель курса и проверяет доступ сотрудника
func (s *ClinicRecordService) authorizeStaff(ctx context.Context, principal model.Principal, attendanceID int64) (*model.StudentCourseRecord, error) {
	course, err := s.resolveCourse(ctx, attendanceID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, course.TeacherID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *ClinicRecordService) resolveCourse(ctx context.Context, attendanceID int64) (*model.StudentCourseRecord, error) {
	attendance, err := loadAttendance(ctx, s.stores.Attendances, attendanceID)
	if err != nil {
		return nil, err
	}
	return loadCourseRecord(ctx, s.stores.CourseRecords, attendance.StudentCourseRecordID)
}

func (s *ClinicRecordService) loadRecord(ctx context.Context, attendanceID int64) (*model.ClinicRecord, error) {
	record, err := s.stores.Records.GetByAttendanceID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("get clinic record: %w", err)
	}
	if record == nil {
		return nil, model.NewError(model.CodeClinicRecordNotFound, "attendance %d has no record", attendanceID)
	}
	return record, nil
}
