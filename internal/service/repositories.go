package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// Хранилища, с которыми работают сервисы. Реализации: repository (PostgreSQL)
// и repository/memory.
//
// GetByID-методы возвращают (nil, nil), если запись не найдена.

type TxManager interface {
	// WithinTx выполняет fn в одной транзакции. Вложенный вызов переиспользует внешнюю.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ClinicSlotRepository interface {
	Create(ctx context.Context, slot *model.ClinicSlot) error
	GetByID(ctx context.Context, id int64) (*model.ClinicSlot, error)
	GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.ClinicSlot, error)
	GetActiveByTeacherDay(ctx context.Context, teacherID int64, day time.Weekday) ([]*model.ClinicSlot, error)
	GetAllActive(ctx context.Context) ([]*model.ClinicSlot, error)
	Update(ctx context.Context, slot *model.ClinicSlot) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type ClinicSessionRepository interface {
	// Create возвращает ErrSessionAlreadyExists при нарушении уникальности REGULAR занятия
	Create(ctx context.Context, session *model.ClinicSession) error
	// CreateRegularIfAbsent вставляет занятие, если для (slot, date) нет неотменённого REGULAR
	CreateRegularIfAbsent(ctx context.Context, session *model.ClinicSession) (bool, error)
	GetByID(ctx context.Context, id int64) (*model.ClinicSession, error)
	// GetRegular ищет неотменённое REGULAR занятие слота в дату
	GetRegular(ctx context.Context, slotID int64, date time.Time) (*model.ClinicSession, error)
	// ExistsRegular учитывает и отменённые занятия
	ExistsRegular(ctx context.Context, slotID int64, date time.Time) (bool, error)
	CountBySlotID(ctx context.Context, slotID int64) (int, error)
	GetByTeacherID(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.ClinicSession, error)
	// GetEnrolledByStudent неотменённые занятия в дату, на которые записан студент по любому курсу
	GetEnrolledByStudent(ctx context.Context, studentID int64, date time.Time) ([]*model.ClinicSession, error)
	// BumpVersion увеличивает версию, если она равна expected, иначе ErrConcurrentModification
	BumpVersion(ctx context.Context, id, expected int64) error
	// Cancel отменяет занятие с проверкой версии
	Cancel(ctx context.Context, id, expected int64, at time.Time) error
}

type ClinicAttendanceRepository interface {
	// Create возвращает ErrAttendanceAlreadyExists при повторной записи
	Create(ctx context.Context, attendance *model.ClinicAttendance) error
	GetByID(ctx context.Context, id int64) (*model.ClinicAttendance, error)
	GetBySessionAndCourseRecord(ctx context.Context, sessionID, courseRecordID int64) (*model.ClinicAttendance, error)
	GetBySessionID(ctx context.Context, sessionID int64) ([]*model.ClinicAttendance, error)
	GetByCourseRecordID(ctx context.Context, courseRecordID int64) ([]*model.ClinicAttendance, error)
	CountBySessionID(ctx context.Context, sessionID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

type ClinicRecordRepository interface {
	// Create возвращает ErrClinicRecordAlreadyExists, если запись для attendance уже есть
	Create(ctx context.Context, record *model.ClinicRecord) error
	GetByAttendanceID(ctx context.Context, attendanceID int64) (*model.ClinicRecord, error)
	Update(ctx context.Context, record *model.ClinicRecord) error
	DeleteByAttendanceID(ctx context.Context, attendanceID int64) error
}

type AssignmentRepository interface {
	GetTeacherBranch(ctx context.Context, teacherID, branchID int64) (*model.TeacherBranchAssignment, error)
	GetTeacherAssistant(ctx context.Context, teacherID, assistantID int64) (*model.TeacherAssistantAssignment, error)
}

type CourseRecordRepository interface {
	GetByID(ctx context.Context, id int64) (*model.StudentCourseRecord, error)
	GetByStudentID(ctx context.Context, studentID int64) ([]*model.StudentCourseRecord, error)
	HasActive(ctx context.Context, studentID, teacherID, branchID int64) (bool, error)
	GetWithDefaultSlot(ctx context.Context) ([]*model.StudentCourseRecord, error)
	CountByDefaultSlot(ctx context.Context, slotID int64) (int, error)
	SetDefaultSlot(ctx context.Context, id int64, slotID *int64) error
	ClearDefaultSlot(ctx context.Context, slotID int64) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// Stores набор хранилищ, общий для сервисов клиники
type Stores struct {
	Tx            TxManager
	Slots         ClinicSlotRepository
	Sessions      ClinicSessionRepository
	Attendances   ClinicAttendanceRepository
	Records       ClinicRecordRepository
	Assignments   AssignmentRepository
	CourseRecords CourseRecordRepository
	Users         UserRepository
}

// Clock источник текущего времени, подменяется в тестах
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
