package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/memory"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

const (
	teacherID      int64 = 1
	otherTeacherID int64 = 2
	assistantID    int64 = 3
	studentID      int64 = 10
	student2ID     int64 = 11
	branchID       int64 = 100

	recordR1 int64 = 501
	recordR2 int64 = 502
)

var (
	teacher      = model.Principal{ID: teacherID, Role: model.RoleTeacher}
	otherTeacher = model.Principal{ID: otherTeacherID, Role: model.RoleTeacher}
	assistant    = model.Principal{ID: assistantID, Role: model.RoleAssistant}
	student      = model.Principal{ID: studentID, Role: model.RoleStudent}
	student2     = model.Principal{ID: student2ID, Role: model.RoleStudent}

	// пятница перед неделей 2024-03-04
	testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
)

type testEnv struct {
	db          *memory.DB
	stores      Stores
	permissions *PermissionValidator
	slots       *ClinicSlotService
	sessions    *ClinicSessionService
	attendances *ClinicAttendanceService
	records     *ClinicRecordService
	batch       *ClinicBatchService
	now         time.Time
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db := memory.NewDB()
	db.PutTeacherBranch(model.TeacherBranchAssignment{TeacherID: teacherID, BranchID: branchID, IsActive: true})
	db.PutTeacherBranch(model.TeacherBranchAssignment{TeacherID: otherTeacherID, BranchID: branchID, IsActive: true})
	db.PutTeacherAssistant(model.TeacherAssistantAssignment{TeacherID: teacherID, AssistantID: assistantID, IsActive: true})
	db.PutCourseRecord(model.StudentCourseRecord{ID: recordR1, StudentID: studentID, CourseID: 1, TeacherID: teacherID, BranchID: branchID, IsActive: true})
	db.PutCourseRecord(model.StudentCourseRecord{ID: recordR2, StudentID: student2ID, CourseID: 1, TeacherID: teacherID, BranchID: branchID, IsActive: true})

	stores := Stores{
		Tx:            db,
		Slots:         memory.NewClinicSlotRepository(db),
		Sessions:      memory.NewClinicSessionRepository(db),
		Attendances:   memory.NewClinicAttendanceRepository(db),
		Records:       memory.NewClinicRecordRepository(db),
		Assignments:   memory.NewAssignmentRepository(db),
		CourseRecords: memory.NewCourseRecordRepository(db),
		Users:         memory.NewUserRepository(db),
	}
	return newTestEnv(t, db, stores)
}

func newTestEnv(t *testing.T, db *memory.DB, stores Stores) *testEnv {
	t.Helper()

	env := &testEnv{db: db, stores: stores, now: testNow}
	clock := Clock(func() time.Time { return env.now })
	logger := zaptest.NewLogger(t)
	week := schedule.DefaultWeekPolicy()

	env.permissions = NewPermissionValidator(stores.Assignments, stores.CourseRecords)
	env.slots = NewClinicSlotService(stores, env.permissions, logger)
	env.sessions = NewClinicSessionService(stores, env.permissions, week, clock, logger)
	env.attendances = NewClinicAttendanceService(stores, env.permissions, week, DefaultEnrollmentPolicy(), time.UTC, clock, logger)
	env.records = NewClinicRecordService(stores, env.permissions, logger)
	env.batch = NewClinicBatchService(stores, week, BatchConfig{Workers: 4, MaxRetries: 3, RetryBase: time.Millisecond}, clock, logger)
	return env
}

func date(s string) time.Time {
	d, err := schedule.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tod(s string) model.TimeOfDay {
	t, err := model.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (e *testEnv) mustSlot(t *testing.T, day time.Weekday, start, end string, capacity int) *model.ClinicSlot {
	t.Helper()
	slot, err := e.slots.CreateSlot(t.Context(), teacher, CreateSlotInput{
		TeacherID:       teacherID,
		BranchID:        branchID,
		DayOfWeek:       day,
		StartTime:       tod(start),
		EndTime:         tod(end),
		DefaultCapacity: capacity,
	})
	require.NoError(t, err)
	return slot
}

func (e *testEnv) mustSession(t *testing.T, slot *model.ClinicSlot, day string) *model.ClinicSession {
	t.Helper()
	session, err := e.sessions.CreateRegularSession(t.Context(), teacher, slot.ID, date(day))
	require.NoError(t, err)
	return session
}
