package memory

import (
	"context"
	"sort"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type ClinicAttendanceRepository struct {
	db *DB
}

func NewClinicAttendanceRepository(db *DB) *ClinicAttendanceRepository {
	return &ClinicAttendanceRepository{db: db}
}

func (r *ClinicAttendanceRepository) Create(ctx context.Context, attendance *model.ClinicAttendance) error {
	defer r.db.lock(ctx)()

	if r.find(attendance.ClinicSessionID, attendance.StudentCourseRecordID) != nil {
		return model.NewError(model.CodeAttendanceAlreadyExists, "course record %d already attends session %d",
			attendance.StudentCourseRecordID, attendance.ClinicSessionID)
	}
	attendance.ID = r.db.nextID()
	attendance.CreatedAt = r.db.now()
	stored := *attendance
	stored.Session = nil
	r.db.data.attendances[attendance.ID] = stored
	return nil
}

func (r *ClinicAttendanceRepository) GetByID(ctx context.Context, id int64) (*model.ClinicAttendance, error) {
	defer r.db.lock(ctx)()

	a, ok := r.db.data.attendances[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *ClinicAttendanceRepository) GetBySessionAndCourseRecord(ctx context.Context, sessionID, courseRecordID int64) (*model.ClinicAttendance, error) {
	defer r.db.lock(ctx)()
	return r.find(sessionID, courseRecordID), nil
}

func (r *ClinicAttendanceRepository) find(sessionID, courseRecordID int64) *model.ClinicAttendance {
	for _, a := range r.db.data.attendances {
		if a.ClinicSessionID == sessionID && a.StudentCourseRecordID == courseRecordID {
			found := a
			return &found
		}
	}
	return nil
}

func (r *ClinicAttendanceRepository) GetBySessionID(ctx context.Context, sessionID int64) ([]*model.ClinicAttendance, error) {
	return r.filter(ctx, func(a model.ClinicAttendance) bool {
		return a.ClinicSessionID == sessionID
	}), nil
}

func (r *ClinicAttendanceRepository) GetByCourseRecordID(ctx context.Context, courseRecordID int64) ([]*model.ClinicAttendance, error) {
	return r.filter(ctx, func(a model.ClinicAttendance) bool {
		return a.StudentCourseRecordID == courseRecordID
	}), nil
}

func (r *ClinicAttendanceRepository) CountBySessionID(ctx context.Context, sessionID int64) (int, error) {
	return len(r.filter(ctx, func(a model.ClinicAttendance) bool {
		return a.ClinicSessionID == sessionID
	})), nil
}

// Delete удаляет запись о посещении вместе с её записью клиники
func (r *ClinicAttendanceRepository) Delete(ctx context.Context, id int64) error {
	defer r.db.lock(ctx)()

	delete(r.db.data.attendances, id)
	for recordID, rec := range r.db.data.records {
		if rec.ClinicAttendanceID == id {
			delete(r.db.data.records, recordID)
		}
	}
	return nil
}

func (r *ClinicAttendanceRepository) filter(ctx context.Context, keep func(model.ClinicAttendance) bool) []*model.ClinicAttendance {
	defer r.db.lock(ctx)()

	var result []*model.ClinicAttendance
	for _, a := range r.db.data.attendances {
		if keep(a) {
			attendance := a
			result = append(result, &attendance)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
