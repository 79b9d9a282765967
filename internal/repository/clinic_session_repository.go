package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

const sessionColumns = `s.id, s.slot_id, s.teacher_id, s.branch_id, s.session_type, s.creator_id, s.session_date,
	s.start_minute, s.end_minute, s.capacity, s.is_canceled, s.canceled_at, s.version, s.created_at, s.updated_at`

// ClinicSessionRepository управляет занятиями клиники
type ClinicSessionRepository struct {
	*base.Repository
}

func NewClinicSessionRepository(pool *pgxpool.Pool) *ClinicSessionRepository {
	return &ClinicSessionRepository{Repository: base.NewRepository(pool)}
}

const insertSession = `
	INSERT INTO clinic_sessions (slot_id, teacher_id, branch_id, session_type, creator_id, session_date,
		start_minute, end_minute, capacity)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func sessionArgs(session *model.ClinicSession) []any {
	return []any{
		session.SlotID,
		session.TeacherID,
		session.BranchID,
		string(session.SessionType),
		session.CreatorID,
		schedule.DateOf(session.Date),
		int(session.StartTime),
		int(session.EndTime),
		session.Capacity,
	}
}

// Create создаёт занятие
func (r *ClinicSessionRepository) Create(ctx context.Context, session *model.ClinicSession) error {
	query := insertSession + ` RETURNING id, version, created_at, updated_at`

	err := r.QueryRow(ctx, query, sessionArgs(session)...).
		Scan(&session.ID, &session.Version, &session.CreatedAt, &session.UpdatedAt)
	if base.UniqueViolation(err) == "uq_clinic_sessions_regular" {
		return model.WrapError(model.CodeSessionAlreadyExists, err,
			fmt.Sprintf("regular session for slot %d on %s already exists", derefID(session.SlotID), schedule.FormatDate(session.Date)))
	}
	if err != nil {
		return fmt.Errorf("create clinic session: %w", err)
	}

	session.Date = schedule.DateOf(session.Date)
	return nil
}

// CreateRegularIfAbsent создаёт REGULAR занятие, если его ещё нет.
// Возвращает false, если занятие уже было создано параллельно.
func (r *ClinicSessionRepository) CreateRegularIfAbsent(ctx context.Context, session *model.ClinicSession) (bool, error) {
	query := insertSession + `
		ON CONFLICT (slot_id, session_date) WHERE session_type = 'REGULAR' AND NOT is_canceled DO NOTHING
		RETURNING id, version, created_at, updated_at`

	err := r.QueryRow(ctx, query, sessionArgs(session)...).
		Scan(&session.ID, &session.Version, &session.CreatedAt, &session.UpdatedAt)
	if base.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create regular clinic session: %w", err)
	}

	session.Date = schedule.DateOf(session.Date)
	return true, nil
}

// GetByID получает занятие по ID
func (r *ClinicSessionRepository) GetByID(ctx context.Context, id int64) (*model.ClinicSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM clinic_sessions s WHERE s.id = $1`

	session, err := scanSession(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinic session by id: %w", err)
	}

	return session, nil
}

// GetRegular получает неотменённое REGULAR занятие слота в дату
func (r *ClinicSessionRepository) GetRegular(ctx context.Context, slotID int64, date time.Time) (*model.ClinicSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM clinic_sessions s
		WHERE s.slot_id = $1 AND s.session_date = $2 AND s.session_type = 'REGULAR' AND NOT s.is_canceled`

	session, err := scanSession(r.QueryRow(ctx, query, slotID, schedule.DateOf(date)))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get regular clinic session: %w", err)
	}

	return session, nil
}

// ExistsRegular проверяет было ли REGULAR занятие слота в дату, в том числе отменённое
func (r *ClinicSessionRepository) ExistsRegular(ctx context.Context, slotID int64, date time.Time) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM clinic_sessions
		WHERE slot_id = $1 AND session_date = $2 AND session_type = 'REGULAR'
	)`

	var exists bool
	if err := r.QueryRow(ctx, query, slotID, schedule.DateOf(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check regular clinic session: %w", err)
	}

	return exists, nil
}

// CountBySlotID считает занятия, созданные из слота
func (r *ClinicSessionRepository) CountBySlotID(ctx context.Context, slotID int64) (int, error) {
	var count int
	err := r.QueryRow(ctx, `SELECT COUNT(*) FROM clinic_sessions WHERE slot_id = $1`, slotID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count clinic sessions by slot: %w", err)
	}

	return count, nil
}

// GetByTeacherID получает занятия учителя в диапазоне дат включительно
func (r *ClinicSessionRepository) GetByTeacherID(ctx context.Context, teacherID int64, from, to time.Time) ([]*model.ClinicSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM clinic_sessions s
		WHERE s.teacher_id = $1 AND s.session_date BETWEEN $2 AND $3
		ORDER BY s.session_date, s.start_minute, s.id`

	return r.list(ctx, "get clinic sessions by teacher", query, teacherID, schedule.DateOf(from), schedule.DateOf(to))
}

// GetEnrolledByStudent получает неотменённые занятия в дату, на которые записан студент по любому из курсов
func (r *ClinicSessionRepository) GetEnrolledByStudent(ctx context.Context, studentID int64, date time.Time) ([]*model.ClinicSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM clinic_sessions s
		JOIN clinic_attendances a ON a.clinic_session_id = s.id
		JOIN student_course_records r ON r.id = a.student_course_record_id
		WHERE r.student_id = $1 AND s.session_date = $2 AND NOT s.is_canceled
		ORDER BY s.start_minute, s.id`

	return r.list(ctx, "get enrolled clinic sessions", query, studentID, schedule.DateOf(date))
}

// BumpVersion увеличивает версию занятия, если она не изменилась с момента чтения
func (r *ClinicSessionRepository) BumpVersion(ctx context.Context, id, expected int64) error {
	query := `
		UPDATE clinic_sessions
		SET version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`

	affected, err := r.ExecAffected(ctx, query, id, expected)
	if err != nil {
		return fmt.Errorf("bump clinic session version: %w", err)
	}
	if affected == 0 {
		return model.NewError(model.CodeConcurrentModification, "session %d changed since version %d", id, expected)
	}

	return nil
}

// Cancel отменяет занятие
func (r *ClinicSessionRepository) Cancel(ctx context.Context, id, expected int64, at time.Time) error {
	query := `
		UPDATE clinic_sessions
		SET is_canceled = TRUE, canceled_at = $3, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
	`

	affected, err := r.ExecAffected(ctx, query, id, expected, at)
	if err != nil {
		return fmt.Errorf("cancel clinic session: %w", err)
	}
	if affected == 0 {
		return model.NewError(model.CodeConcurrentModification, "session %d changed since version %d", id, expected)
	}

	return nil
}

func (r *ClinicSessionRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.ClinicSession, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var sessions []*model.ClinicSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clinic session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*model.ClinicSession, error) {
	var (
		session       model.ClinicSession
		sessionType   string
		start, finish int
	)
	err := row.Scan(
		&session.ID,
		&session.SlotID,
		&session.TeacherID,
		&session.BranchID,
		&sessionType,
		&session.CreatorID,
		&session.Date,
		&start,
		&finish,
		&session.Capacity,
		&session.IsCanceled,
		&session.CanceledAt,
		&session.Version,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.SessionType = model.SessionType(sessionType)
	session.StartTime = model.TimeOfDay(start)
	session.EndTime = model.TimeOfDay(finish)
	return &session, nil
}

func derefID(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}
