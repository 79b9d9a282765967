package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
)

// ClinicRecordRepository управляет записями клиники по итогам занятий
type ClinicRecordRepository struct {
	*base.Repository
}

func NewClinicRecordRepository(pool *pgxpool.Pool) *ClinicRecordRepository {
	return &ClinicRecordRepository{Repository: base.NewRepository(pool)}
}

func (r *ClinicRecordRepository) Create(ctx context.Context, record *model.ClinicRecord) error {
	query := `
		INSERT INTO clinic_records (clinic_attendance_id, writer_id, title, content, homework_progress)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(ctx, query,
		record.ClinicAttendanceID,
		record.WriterID,
		record.Title,
		record.Content,
		record.HomeworkProgress,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if base.UniqueViolation(err) == "uq_clinic_records_attendance" {
		return model.WrapError(model.CodeClinicRecordAlreadyExists, err,
			fmt.Sprintf("attendance %d already has a record", record.ClinicAttendanceID))
	}
	if err != nil {
		return fmt.Errorf("create clinic record: %w", err)
	}

	return nil
}

func (r *ClinicRecordRepository) GetByAttendanceID(ctx context.Context, attendanceID int64) (*model.ClinicRecord, error) {
	query := `
		SELECT id, clinic_attendance_id, writer_id, title, content, homework_progress, created_at, updated_at
		FROM clinic_records
		WHERE clinic_attendance_id = $1
	`

	var rec model.ClinicRecord
	err := r.QueryRow(ctx, query, attendanceID).Scan(
		&rec.ID,
		&rec.ClinicAttendanceID,
		&rec.WriterID,
		&rec.Title,
		&rec.Content,
		&rec.HomeworkProgress,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinic record: %w", err)
	}

	return &rec, nil
}

func (r *ClinicRecordRepository) Update(ctx context.Context, record *model.ClinicRecord) error {
	query := `
		UPDATE clinic_records
		SET writer_id = $2, title = $3, content = $4, homework_progress = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(ctx, query, record.ID, record.WriterID, record.Title, record.Content, record.HomeworkProgress).
		Scan(&record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update clinic record: %w", err)
	}

	return nil
}

func (r *ClinicRecordRepository) DeleteByAttendanceID(ctx context.Context, attendanceID int64) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM clinic_records WHERE clinic_attendance_id = $1`, attendanceID); err != nil {
		return fmt.Errorf("delete clinic record: %w", err)
	}

	return nil
}
