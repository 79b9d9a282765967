package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
)

const attendanceColumns = `id, clinic_session_id, student_course_record_id, created_by, created_at`

// ClinicAttendanceRepository управляет записями студентов на занятия
type ClinicAttendanceRepository struct {
	*base.Repository
}

func NewClinicAttendanceRepository(pool *pgxpool.Pool) *ClinicAttendanceRepository {
	return &ClinicAttendanceRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт запись на занятие
func (r *ClinicAttendanceRepository) Create(ctx context.Context, attendance *model.ClinicAttendance) error {
	query := `
		INSERT INTO clinic_attendances (clinic_session_id, student_course_record_id, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, attendance.ClinicSessionID, attendance.StudentCourseRecordID, attendance.CreatedBy).
		Scan(&attendance.ID, &attendance.CreatedAt)
	if base.UniqueViolation(err) == "uq_clinic_attendances_session_record" {
		return model.WrapError(model.CodeAttendanceAlreadyExists, err,
			fmt.Sprintf("course record %d already attends session %d", attendance.StudentCourseRecordID, attendance.ClinicSessionID))
	}
	if err != nil {
		return fmt.Errorf("create clinic attendance: %w", err)
	}

	return nil
}

// GetByID получает запись по ID
func (r *ClinicAttendanceRepository) GetByID(ctx context.Context, id int64) (*model.ClinicAttendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM clinic_attendances WHERE id = $1`

	attendance, err := scanAttendance(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinic attendance by id: %w", err)
	}

	return attendance, nil
}

// GetBySessionAndCourseRecord получает запись курса студента на занятие
func (r *ClinicAttendanceRepository) GetBySessionAndCourseRecord(ctx context.Context, sessionID, courseRecordID int64) (*model.ClinicAttendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM clinic_attendances
		WHERE clinic_session_id = $1 AND student_course_record_id = $2`

	attendance, err := scanAttendance(r.QueryRow(ctx, query, sessionID, courseRecordID))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinic attendance by session and record: %w", err)
	}

	return attendance, nil
}

// GetBySessionID получает все записи на занятие
func (r *ClinicAttendanceRepository) GetBySessionID(ctx context.Context, sessionID int64) ([]*model.ClinicAttendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM clinic_attendances WHERE clinic_session_id = $1 ORDER BY id`
	return r.list(ctx, "get clinic attendances by session", query, sessionID)
}

// GetByCourseRecordID получает все записи курса студента
func (r *ClinicAttendanceRepository) GetByCourseRecordID(ctx context.Context, courseRecordID int64) ([]*model.ClinicAttendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM clinic_attendances WHERE student_course_record_id = $1 ORDER BY id`
	return r.list(ctx, "get clinic attendances by course record", query, courseRecordID)
}

// CountBySessionID считает записи на занятие
func (r *ClinicAttendanceRepository) CountBySessionID(ctx context.Context, sessionID int64) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT COUNT(*) FROM clinic_attendances WHERE clinic_session_id = $1`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count clinic attendances: %w", err)
	}

	return count, nil
}

// Delete удаляет запись, запись клиники удаляется каскадно
func (r *ClinicAttendanceRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM clinic_attendances WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete clinic attendance: %w", err)
	}

	return nil
}

func (r *ClinicAttendanceRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.ClinicAttendance, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var attendances []*model.ClinicAttendance
	for rows.Next() {
		attendance, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clinic attendance: %w", err)
		}
		attendances = append(attendances, attendance)
	}

	return attendances, rows.Err()
}

func scanAttendance(row pgx.Row) (*model.ClinicAttendance, error) {
	var a model.ClinicAttendance
	err := row.Scan(&a.ID, &a.ClinicSessionID, &a.StudentCourseRecordID, &a.CreatedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
