package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
)

const courseRecordColumns = `id, student_id, course_id, teacher_id, branch_id, default_clinic_slot_id, is_active`

// CourseRecordRepository читает записи курсов студентов.
// Из полей таблицы ядро меняет только default_clinic_slot_id.
type CourseRecordRepository struct {
	*base.Repository
}

func NewCourseRecordRepository(pool *pgxpool.Pool) *CourseRecordRepository {
	return &CourseRecordRepository{Repository: base.NewRepository(pool)}
}

func (r *CourseRecordRepository) GetByID(ctx context.Context, id int64) (*model.StudentCourseRecord, error) {
	query := `SELECT ` + courseRecordColumns + ` FROM student_course_records WHERE id = $1`

	rec, err := scanCourseRecord(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course record by id: %w", err)
	}

	return rec, nil
}

func (r *CourseRecordRepository) GetByStudentID(ctx context.Context, studentID int64) ([]*model.StudentCourseRecord, error) {
	query := `SELECT ` + courseRecordColumns + ` FROM student_course_records WHERE student_id = $1 ORDER BY id`
	return r.list(ctx, "get course records by student", query, studentID)
}

// HasActive проверяет есть ли у студента активный курс у учителя в филиале
func (r *CourseRecordRepository) HasActive(ctx context.Context, studentID, teacherID, branchID int64) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM student_course_records
		WHERE student_id = $1 AND teacher_id = $2 AND branch_id = $3 AND is_active
	)`

	var exists bool
	if err := r.QueryRow(ctx, query, studentID, teacherID, branchID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active course record: %w", err)
	}

	return exists, nil
}

// GetWithDefaultSlot получает активные записи курсов с назначенным слотом
func (r *CourseRecordRepository) GetWithDefaultSlot(ctx context.Context) ([]*model.StudentCourseRecord, error) {
	query := `SELECT ` + courseRecordColumns + ` FROM student_course_records
		WHERE is_active AND default_clinic_slot_id IS NOT NULL
		ORDER BY id`
	return r.list(ctx, "get course records with default slot", query)
}

func (r *CourseRecordRepository) CountByDefaultSlot(ctx context.Context, slotID int64) (int, error) {
	query := `SELECT COUNT(*) FROM student_course_records WHERE is_active AND default_clinic_slot_id = $1`

	var count int
	if err := r.QueryRow(ctx, query, slotID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count course records by default slot: %w", err)
	}

	return count, nil
}

// SetDefaultSlot назначает слот по умолчанию, nil снимает назначение
func (r *CourseRecordRepository) SetDefaultSlot(ctx context.Context, id int64, slotID *int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE student_course_records SET default_clinic_slot_id = $2 WHERE id = $1`, id, slotID)
	if err != nil {
		return fmt.Errorf("set default clinic slot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set default clinic slot: course record %d not found", id)
	}

	return nil
}

// ClearDefaultSlot снимает слот у всех записей курсов, возвращает их число
func (r *CourseRecordRepository) ClearDefaultSlot(ctx context.Context, slotID int64) (int64, error) {
	affected, err := r.ExecAffected(ctx,
		`UPDATE student_course_records SET default_clinic_slot_id = NULL WHERE default_clinic_slot_id = $1`, slotID)
	if err != nil {
		return 0, fmt.Errorf("clear default clinic slot: %w", err)
	}

	return affected, nil
}

func (r *CourseRecordRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.StudentCourseRecord, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var records []*model.StudentCourseRecord
	for rows.Next() {
		rec, err := scanCourseRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanCourseRecord(row pgx.Row) (*model.StudentCourseRecord, error) {
	var rec model.StudentCourseRecord
	err := row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.CourseID,
		&rec.TeacherID,
		&rec.BranchID,
		&rec.DefaultClinicSlotID,
		&rec.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
