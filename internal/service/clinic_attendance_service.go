package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

// EnrollmentPolicy правила записи сотрудниками задним числом.
// Студенты всегда записываются только на неотменённые и ещё не начавшиеся занятия.
type EnrollmentPolicy struct {
	// StaffBackfillWindow насколько давно могло начаться занятие, чтобы сотрудник мог записать на него
	StaffBackfillWindow time.Duration
	// StaffBackfillCanceled разрешает сотрудникам записывать на отменённое занятие
	StaffBackfillCanceled bool
}

func DefaultEnrollmentPolicy() EnrollmentPolicy {
	return EnrollmentPolicy{
		StaffBackfillWindow:   7 * 24 * time.Hour,
		StaffBackfillCanceled: true,
	}
}

type ClinicAttendanceService struct {
	stores      Stores
	permissions *PermissionValidator
	week        schedule.WeekPolicy
	policy      EnrollmentPolicy
	loc         *time.Location
	clock       Clock
	logger      *zap.Logger
}

func NewClinicAttendanceService(
	stores Stores,
	permissions *PermissionValidator,
	week schedule.WeekPolicy,
	policy EnrollmentPolicy,
	loc *time.Location,
	clock Clock,
	logger *zap.Logger,
) *ClinicAttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &ClinicAttendanceService{
		stores:      stores,
		permissions: permissions,
		week:        week,
		policy:      policy,
		loc:         loc,
		clock:       clock,
		logger:      logger,
	}
}

// AddAttendance записывает студента на занятие от имени сотрудника
func (s *ClinicAttendanceService) AddAttendance(ctx context.Context, principal model.Principal, sessionID, recordID int64) (*model.ClinicAttendance, error) {
	if !principal.IsStaff() {
		return nil, model.NewError(model.CodeForbidden, "only staff can add attendances")
	}

	var attendance *model.ClinicAttendance
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		session, err := loadSession(ctx, s.stores.Sessions, sessionID)
		if err != nil {
			return err
		}
		record, err := loadCourseRecord(ctx, s.stores.CourseRecords, recordID)
		if err != nil {
			return err
		}
		if err := s.permissions.EnsureStaffAccess(ctx, principal, session.TeacherID); err != nil {
			return err
		}
		if err := s.permissions.EnsureStudentAccess(ctx, record.StudentID, session.TeacherID, session.BranchID); err != nil {
			return err
		}

		if session.IsCanceled && !s.policy.StaffBackfillCanceled {
			return model.NewError(model.CodeSessionCanceled, "session %d is canceled", session.ID)
		}
		if session.StartsAt(s.loc).Before(s.clock.now().Add(-s.policy.StaffBackfillWindow)) {
			return model.NewError(model.CodeSessionInPast, "session %d started too long ago", session.ID)
		}

		attendance, err = enroll(ctx, s.stores, session, record, principal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attendance added by staff",
		zap.Int64("attendance_id", attendance.ID),
		zap.Int64("session_id", sessionID),
		zap.Int64("course_record_id", recordID),
		zap.Int64("principal_id", principal.ID),
	)

	return attendance, nil
}

// RequestAttendance записывает студента на занятие по его собственному запросу
func (s *ClinicAttendanceService) RequestAttendance(ctx context.Context, principal model.Principal, sessionID, recordID int64) (*model.ClinicAttendance, error) {
	if !principal.IsStudent() {
		return nil, model.NewError(model.CodeForbidden, "only students can request attendance")
	}

	var attendance *model.ClinicAttendance
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		session, err := loadSession(ctx, s.stores.Sessions, sessionID)
		if err != nil {
			return err
		}
		record, err := s.ownRecord(ctx, principal, recordID)
		if err != nil {
			return err
		}
		if err := s.permissions.EnsureStudentAccess(ctx, principal.ID, session.TeacherID, session.BranchID); err != nil {
			return err
		}
		if err := s.checkOpenForStudent(session); err != nil {
			return err
		}

		attendance, err = enroll(ctx, s.stores, session, record, principal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attendance requested by student",
		zap.Int64("attendance_id", attendance.ID),
		zap.Int64("session_id", sessionID),
		zap.Int64("course_record_id", recordID),
		zap.Int64("student_id", principal.ID),
	)

	return attendance, nil
}

// MoveAttendance переносит запись студента на другое занятие той же недели.
// Удаление старой и создание новой записи выполняются в одной транзакции.
func (s *ClinicAttendanceService) MoveAttendance(ctx context.Context, principal model.Principal, fromSessionID, toSessionID int64) (*model.ClinicAttendance, error) {
	if !principal.IsStudent() {
		return nil, model.NewError(model.CodeForbidden, "only students can move their attendance")
	}
	if fromSessionID == toSessionID {
		return nil, model.NewError(model.CodeBadRequest, "source and destination sessions are the same")
	}

	var moved *model.ClinicAttendance
	var previousID int64
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		from, err := loadSession(ctx, s.stores.Sessions, fromSessionID)
		if err != nil {
			return err
		}
		to, err := loadSession(ctx, s.stores.Sessions, toSessionID)
		if err != nil {
			return err
		}
		if from.IsCanceled {
			return model.NewError(model.CodeSessionCanceled, "session %d is canceled", from.ID)
		}
		// начавшееся занятие остаётся в истории студента, как и при DeleteAttendance
		if !from.StartsAt(s.loc).After(s.clock.now()) {
			return model.NewError(model.CodeSessionInPast, "session %d has already started", from.ID)
		}
		if !s.week.SameWeek(from.Date, to.Date) {
			return model.NewError(model.CodeAttendanceMoveForbidden, "cannot move from %s to %s: different weeks",
				schedule.FormatDate(from.Date), schedule.FormatDate(to.Date))
		}
		if err := s.checkOpenForStudent(to); err != nil {
			return err
		}

		current, record, err := s.findStudentAttendance(ctx, principal, from.ID)
		if err != nil {
			return err
		}
		if err := s.permissions.EnsureStudentAccess(ctx, principal.ID, to.TeacherID, to.BranchID); err != nil {
			return err
		}

		if err := s.stores.Attendances.Delete(ctx, current.ID); err != nil {
			return fmt.Errorf("delete attendance: %w", err)
		}
		if err := s.stores.Sessions.BumpVersion(ctx, from.ID, from.Version); err != nil {
			return err
		}

		previousID = current.ID
		moved, err = enroll(ctx, s.stores, to, record, principal.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attendance moved",
		zap.Int64("from_attendance_id", previousID),
		zap.Int64("to_attendance_id", moved.ID),
		zap.Int64("from_session_id", fromSessionID),
		zap.Int64("to_session_id", toSessionID),
		zap.Int64("student_id", principal.ID),
	)

	return moved, nil
}

// DeleteAttendance удаляет запись. Сотрудник удаляет любую запись своего учителя,
// студент только свою и только до начала занятия.
func (s *ClinicAttendanceService) DeleteAttendance(ctx context.Context, principal model.Principal, attendanceID int64) error {
	var sessionID int64
	err := s.stores.Tx.WithinTx(ctx, func(ctx context.Context) error {
		attendance, err := loadAttendance(ctx, s.stores.Attendances, attendanceID)
		if err != nil {
			return err
		}
		session, err := loadSession(ctx, s.stores.Sessions, attendance.ClinicSessionID)
		if err != nil {
			return err
		}
		sessionID = session.ID

		if principal.IsStudent() {
			if _, err := s.ownRecord(ctx, principal, attendance.StudentCourseRecordID); err != nil {
				return err
			}
			if !session.StartsAt(s.loc).After(s.clock.now()) {
				return model.NewError(model.CodeSessionInPast, "session %d has already started", session.ID)
			}
		} else if err := s.permissions.EnsureStaffAccess(ctx, principal, session.TeacherID); err != nil {
			return err
		}

		if err := s.stores.Attendances.Delete(ctx, attendance.ID); err != nil {
			return fmt.Errorf("delete attendance: %w", err)
		}
		return s.stores.Sessions.BumpVersion(ctx, session.ID, session.Version)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Attendance deleted",
		zap.Int64("attendance_id", attendanceID),
		zap.Int64("session_id", sessionID),
		zap.Int64("principal_id", principal.ID),
	)

	return nil
}

// CancelStudentAttendance отмена записи самим студентом
func (s *ClinicAttendanceService) CancelStudentAttendance(ctx context.Context, principal model.Principal, attendanceID int64) error {
	if !principal.IsStudent() {
		return model.NewError(model.CodeForbidden, "only students can cancel their own attendance")
	}
	return s.DeleteAttendance(ctx, principal, attendanceID)
}

// ListSessionAttendances возвращает записи на занятие для сотрудников учителя
func (s *ClinicAttendanceService) ListSessionAttendances(ctx context.Context, principal model.Principal, sessionID int64) ([]*model.ClinicAttendance, error) {
	session, err := loadSession(ctx, s.stores.Sessions, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.EnsureStaffAccess(ctx, principal, session.TeacherID); err != nil {
		return nil, err
	}

	attendances, err := s.stores.Attendances.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session attendances: %w", err)
	}
	for _, a := range attendances {
		a.Session = session
	}
	return attendances, nil
}

// ListStudentAttendances возвращает записи курса студента вместе с занятиями
func (s *ClinicAttendanceService) ListStudentAttendances(ctx context.Context, principal model.Principal, recordID int64) ([]*model.ClinicAttendance, error) {
	record, err := loadCourseRecord(ctx, s.stores.CourseRecords, recordID)
	if err != nil {
		return nil, err
	}
	if principal.IsStudent() {
		if record.StudentID != principal.ID {
			return nil, model.NewError(model.CodeForbidden, "course record %d belongs to another student", recordID)
		}
	} else if err := s.permissions.EnsureStaffAccess(ctx, principal, record.TeacherID); err != nil {
		return nil, err
	}

	attendances, err := s.stores.Attendances.GetByCourseRecordID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("get course record attendances: %w", err)
	}
	for _, a := range attendances {
		a.Session, err = loadSession(ctx, s.stores.Sessions, a.ClinicSessionID)
		if err != nil {
			return nil, err
		}
	}
	return attendances, nil
}

// ListEnrollableSessions занятия недели anyDay у учителя курса, на которые курс ещё можно
// записать: не отменённые, не начавшиеся, со свободными местами и без этого курса
func (s *ClinicAttendanceService) ListEnrollableSessions(ctx context.Context, principal model.Principal, recordID int64, anyDay time.Time) ([]*model.ClinicSession, error) {
	record, err := loadCourseRecord(ctx, s.stores.CourseRecords, recordID)
	if err != nil {
		return nil, err
	}
	if principal.IsStudent() {
		if record.StudentID != principal.ID {
			return nil, model.NewError(model.CodeForbidden, "course record %d belongs to another student", recordID)
		}
	} else if err := s.permissions.EnsureStaffAccess(ctx, principal, record.TeacherID); err != nil {
		return nil, err
	}

	return s.enrollableInWeek(ctx, record, anyDay, 0)
}

// ListMoveTargets занятия той же недели, на которые студент может перенести запись с fromSessionID
func (s *ClinicAttendanceService) ListMoveTargets(ctx context.Context, principal model.Principal, fromSessionID int64) ([]*model.ClinicSession, error) {
	if !principal.IsStudent() {
		return nil, model.NewError(model.CodeForbidden, "only students can move their attendance")
	}

	from, err := loadSession(ctx, s.stores.Sessions, fromSessionID)
	if err != nil {
		return nil, err
	}
	_, record, err := s.findStudentAttendance(ctx, principal, from.ID)
	if err != nil {
		return nil, err
	}

	return s.enrollableInWeek(ctx, record, from.Date, from.ID)
}

func (s *ClinicAttendanceService) enrollableInWeek(ctx context.Context, record *model.StudentCourseRecord, anyDay time.Time, excludeID int64) ([]*model.ClinicSession, error) {
	days := s.week.Days(anyDay)
	sessions, err := s.stores.Sessions.GetByTeacherID(ctx, record.TeacherID, days[0], days[len(days)-1])
	if err != nil {
		return nil, fmt.Errorf("get teacher sessions: %w", err)
	}

	result := make([]*model.ClinicSession, 0, len(sessions))
	for _, session := range sessions {
		if session.ID == excludeID || session.BranchID != record.BranchID {
			continue
		}
		if s.checkOpenForStudent(session) != nil {
			continue
		}

		existing, err := s.stores.Attendances.GetBySessionAndCourseRecord(ctx, session.ID, record.ID)
		if err != nil {
			return nil, fmt.Errorf("get attendance: %w", err)
		}
		if existing != nil {
			continue
		}
		count, err := s.stores.Attendances.CountBySessionID(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("count attendances: %w", err)
		}
		if count >= session.Capacity {
			continue
		}

		result = append(result, session)
	}
	return result, nil
}

func (s *ClinicAttendanceService) ownRecord(ctx context.Context, principal model.Principal, recordID int64) (*model.StudentCourseRecord, error) {
	record, err := loadCourseRecord(ctx, s.stores.CourseRecords, recordID)
	if err != nil {
		return nil, err
	}
	if record.StudentID != principal.ID {
		return nil, model.NewError(model.CodeForbidden, "course record %d belongs to another student", recordID)
	}
	return record, nil
}

func (s *ClinicAttendanceService) checkOpenForStudent(session *model.ClinicSession) error {
	if session.IsCanceled {
		return model.NewError(model.CodeSessionCanceled, "session %d is canceled", session.ID)
	}
	if !session.StartsAt(s.loc).After(s.clock.now()) {
		return model.NewError(model.CodeSessionInPast, "session %d has already started", session.ID)
	}
	return nil
}

// findStudentAttendance ищет на занятии запись, курс которой принадлежит студенту
func (s *ClinicAttendanceService) findStudentAttendance(ctx context.Context, principal model.Principal, sessionID int64) (*model.ClinicAttendance, *model.StudentCourseRecord, error) {
	attendances, err := s.stores.Attendances.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session attendances: %w", err)
	}
	for _, a := range attendances {
		record, err := s.stores.CourseRecords.GetByID(ctx, a.StudentCourseRecordID)
		if err != nil {
			return nil, nil, fmt.Errorf("get course record: %w", err)
		}
		if record != nil && record.StudentID == principal.ID {
			return a, record, nil
		}
	}
	return nil, nil, model.NewError(model.CodeAttendanceNotFound, "student %d is not enrolled in session %d", principal.ID, sessionID)
}

// enroll проверяет дубликат, вместимость и пересечения студента, создаёт запись и
// увеличивает версию занятия. Вызывается внутри транзакции.
func enroll(ctx context.Context, stores Stores, session *model.ClinicSession, record *model.StudentCourseRecord, createdBy int64) (*model.ClinicAttendance, error) {
	recordID := record.ID
	existing, err := stores.Attendances.GetBySessionAndCourseRecord(ctx, session.ID, recordID)
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	if existing != nil {
		return nil, model.NewError(model.CodeAttendanceAlreadyExists, "course record %d already attends session %d", recordID, session.ID)
	}

	count, err := stores.Attendances.CountBySessionID(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("count attendances: %w", err)
	}
	if count >= session.Capacity {
		return nil, model.NewError(model.CodeSessionFull, "session %d is full (%d/%d)", session.ID, count, session.Capacity)
	}

	others, err := stores.Sessions.GetEnrolledByStudent(ctx, record.StudentID, session.Date)
	if err != nil {
		return nil, fmt.Errorf("get student sessions: %w", err)
	}
	if other := schedule.FirstSessionConflict(session.Date, session.StartTime, session.EndTime, others, session.ID); other != nil {
		return nil, model.NewError(model.CodeStudentTimeConflict, "student already attends session %d (%s-%s)",
			other.ID, other.StartTime, other.EndTime)
	}

	attendance := &model.ClinicAttendance{
		ClinicSessionID:       session.ID,
		StudentCourseRecordID: recordID,
		CreatedBy:             createdBy,
	}
	if err := stores.Attendances.Create(ctx, attendance); err != nil {
		return nil, fmt.Errorf("create attendance: %w", err)
	}
	if err := stores.Sessions.BumpVersion(ctx, session.ID, session.Version); err != nil {
		return nil, err
	}
	session.Version++

	attendance.Session = session
	return attendance, nil
}

func loadAttendance(ctx context.Context, repo ClinicAttendanceRepository, attendanceID int64) (*model.ClinicAttendance, error) {
	attendance, err := repo.GetByID(ctx, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	if attendance == nil {
		return nil, model.NewError(model.CodeAttendanceNotFound, "attendance %d not found", attendanceID)
	}
	return attendance, nil
}
