package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type CourseRecordRepository struct {
	db *DB
}

func NewCourseRecordRepository(db *DB) *CourseRecordRepository {
	return &CourseRecordRepository{db: db}
}

func (r *CourseRecordRepository) GetByID(ctx context.Context, id int64) (*model.StudentCourseRecord, error) {
	defer r.db.lock(ctx)()

	rec, ok := r.db.data.courseRecords[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *CourseRecordRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.StudentCourseRecord, error) {
	return r.filter(ctx, func(rec model.StudentCourseRecord) bool {
		return rec.StudentID == studentID
	}), nil
}

func (r *CourseRecordRepository) HasActive(ctx context.Context, studentID, teacherID, branchID int64) (bool, error) {
	found := r.filter(ctx, func(rec model.StudentCourseRecord) bool {
		return rec.IsActive && rec.StudentID == studentID && rec.TeacherID == teacherID && rec.BranchID == branchID
	})
	return len(found) > 0, nil
}

func (r *CourseRecordRepository) GetWithDefaultSlot(ctx context.Context) ([]*model.StudentCourseRecord, error) {
	return r.filter(ctx, func(rec model.StudentCourseRecord) bool {
		return rec.IsActive && rec.DefaultClinicSlotID != nil
	}), nil
}

func (r *CourseRecordRepository) CountByDefaultSlot(ctx context.Context, slotID int64) (int, error) {
	found := r.filter(ctx, func(rec model.StudentCourseRecord) bool {
		return rec.IsActive && rec.DefaultClinicSlotID != nil && *rec.DefaultClinicSlotID == slotID
	})
	return len(found), nil
}

func (r *CourseRecordRepository) SetDefaultSlot(ctx context.Context, id int64, slotID *int64) error {
	defer r.db.lock(ctx)()

	rec, ok := r.db.data.courseRecords[id]
	if !ok {
		return fmt.Errorf("set default slot for course record %d: not found", id)
	}
	if slotID != nil {
		v := *slotID
		slotID = &v
	}
	rec.DefaultClinicSlotID = slotID
	r.db.data.courseRecords[id] = rec
	return nil
}

func (r *CourseRecordRepository) ClearDefaultSlot(ctx context.Context, slotID int64) (int64, error) {
	defer r.db.lock(ctx)()

	var cleared int64
	for id, rec := range r.db.data.courseRecords {
		if rec.DefaultClinicSlotID != nil && *rec.DefaultClinicSlotID == slotID {
			rec.DefaultClinicSlotID = nil
			r.db.data.courseRecords[id] = rec
			cleared++
		}
	}
	return cleared, nil
}

func (r *CourseRecordRepository) filter(ctx context.Context, keep func(model.StudentCourseRecord) bool) []*model.StudentCourseRecord {
	defer r.db.lock(ctx)()

	var result []*model.StudentCourseRecord
	for _, rec := range r.db.data.courseRecords {
		if keep(rec) {
			found := rec
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
