package memory

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type ClinicRecordRepository struct {
	db *DB
}

func NewClinicRecordRepository(db *DB) *ClinicRecordRepository {
	return &ClinicRecordRepository{db: db}
}

func (r *ClinicRecordRepository) Create(ctx context.Context, record *model.ClinicRecord) error {
	defer r.db.lock(ctx)()

	if _, ok := r.db.data.attendances[record.ClinicAttendanceID]; !ok {
		return model.NewError(model.CodeAttendanceNotFound, "attendance %d not found", record.ClinicAttendanceID)
	}
	if r.find(record.ClinicAttendanceID) != nil {
		return model.NewError(model.CodeClinicRecordAlreadyExists, "attendance %d already has a record", record.ClinicAttendanceID)
	}

	now := r.db.now()
	record.ID = r.db.nextID()
	record.CreatedAt = now
	record.UpdatedAt = now
	r.db.data.records[record.ID] = *record
	return nil
}

func (r *ClinicRecordRepository) GetByAttendanceID(ctx context.Context, attendanceID int64) (*model.ClinicRecord, error) {
	defer r.db.lock(ctx)()
	return r.find(attendanceID), nil
}

func (r *ClinicRecordRepository) find(attendanceID int64) *model.ClinicRecord {
	for _, rec := range r.db.data.records {
		if rec.ClinicAttendanceID == attendanceID {
			found := rec
			return &found
		}
	}
	return nil
}

func (r *ClinicRecordRepository) Update(ctx context.Context, record *model.ClinicRecord) error {
	defer r.db.lock(ctx)()

	stored, ok := r.db.data.records[record.ID]
	if !ok {
		return fmt.Errorf("update clinic record %d: not found", record.ID)
	}
	stored.WriterID = record.WriterID
	stored.Title = record.Title
	stored.Content = record.Content
	stored.HomeworkProgress = record.HomeworkProgress
	stored.UpdatedAt = r.db.now()
	r.db.data.records[record.ID] = stored
	*record = stored
	return nil
}

func (r *ClinicRecordRepository) DeleteByAttendanceID(ctx context.Context, attendanceID int64) error {
	defer r.db.lock(ctx)()

	for id, rec := range r.db.data.records {
		if rec.ClinicAttendanceID == attendanceID {
			delete(r.db.data.records, id)
		}
	}
	return nil
}
