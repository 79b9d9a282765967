package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
)

const slotColumns = `id, teacher_id, creator_id, branch_id, day_of_week, start_minute, end_minute,
	default_capacity, is_active, deactivated_at, created_at, updated_at`

// ClinicSlotRepository управляет еженедельными слотами клиники
type ClinicSlotRepository struct {
	*base.Repository
}

func NewClinicSlotRepository(pool *pgxpool.Pool) *ClinicSlotRepository {
	return &ClinicSlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новый слот
func (r *ClinicSlotRepository) Create(ctx context.Context, slot *model.ClinicSlot) error {
	query := `
		INSERT INTO clinic_slots (teacher_id, creator_id, branch_id, day_of_week, start_minute, end_minute, default_capacity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.TeacherID,
		slot.CreatorID,
		slot.BranchID,
		int(slot.DayOfWeek),
		int(slot.StartTime),
		int(slot.EndTime),
		slot.DefaultCapacity,
		slot.IsActive,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if conflict := slotConflict(err); conflict != nil {
		return conflict
	}
	if err != nil {
		return fmt.Errorf("create clinic slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *ClinicSlotRepository) GetByID(ctx context.Context, id int64) (*model.ClinicSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM clinic_slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clinic slot by id: %w", err)
	}

	return slot, nil
}

// GetByTeacherID получает все слоты учителя, включая неактивные
func (r *ClinicSlotRepository) GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.ClinicSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM clinic_slots
		WHERE teacher_id = $1
		ORDER BY day_of_week, start_minute, id`

	return r.list(ctx, "get clinic slots by teacher", query, teacherID)
}

// GetActiveByTeacherDay получает активные слоты учителя в день недели
func (r *ClinicSlotRepository) GetActiveByTeacherDay(ctx context.Context, teacherID int64, day time.Weekday) ([]*model.ClinicSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM clinic_slots
		WHERE teacher_id = $1 AND day_of_week = $2 AND is_active
		ORDER BY start_minute, id`

	return r.list(ctx, "get active clinic slots by day", query, teacherID, int(day))
}

// GetAllActive получает все активные слоты платформы
func (r *ClinicSlotRepository) GetAllActive(ctx context.Context) ([]*model.ClinicSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM clinic_slots
		WHERE is_active
		ORDER BY teacher_id, day_of_week, start_minute, id`

	return r.list(ctx, "get active clinic slots", query)
}

// Update обновляет расписание и вместимость слота
func (r *ClinicSlotRepository) Update(ctx context.Context, slot *model.ClinicSlot) error {
	query := `
		UPDATE clinic_slots
		SET branch_id = $2, day_of_week = $3, start_minute = $4, end_minute = $5, default_capacity = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.ID,
		slot.BranchID,
		int(slot.DayOfWeek),
		int(slot.StartTime),
		int(slot.EndTime),
		slot.DefaultCapacity,
	).Scan(&slot.UpdatedAt)
	if conflict := slotConflict(err); conflict != nil {
		return conflict
	}
	if err != nil {
		return fmt.Errorf("update clinic slot: %w", err)
	}

	return nil
}

// SetActive включает или выключает слот
func (r *ClinicSlotRepository) SetActive(ctx context.Context, id int64, active bool) error {
	query := `
		UPDATE clinic_slots
		SET is_active = $2,
		    deactivated_at = CASE WHEN $2 THEN NULL ELSE NOW() END,
		    updated_at = NOW()
		WHERE id = $1
	`

	affected, err := r.ExecAffected(ctx, query, id, active)
	if conflict := slotConflict(err); conflict != nil {
		return conflict
	}
	if err != nil {
		return fmt.Errorf("set clinic slot active: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set clinic slot active: slot %d not found", id)
	}

	return nil
}

// Delete удаляет слот, на который не ссылается ни одно занятие
func (r *ClinicSlotRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.ExecAffected(ctx, `DELETE FROM clinic_slots WHERE id = $1`, id)
	if base.ForeignKeyViolation(err) == "fk_clinic_sessions_slot" {
		return model.WrapError(model.CodeSlotHasSessions, err, fmt.Sprintf("slot %d is referenced by sessions", id))
	}
	if err != nil {
		return fmt.Errorf("delete clinic slot: %w", err)
	}

	return nil
}

func (r *ClinicSlotRepository) list(ctx context.Context, op, query string, args ...any) ([]*model.ClinicSlot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var slots []*model.ClinicSlot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clinic slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// slotConflict переводит нарушение ex_clinic_slots_overlap в SLOT_CONFLICT
func slotConflict(err error) error {
	if base.ExclusionViolation(err) == "ex_clinic_slots_overlap" {
		return model.WrapError(model.CodeSlotConflict, err, "slot overlaps another active slot")
	}
	return nil
}

func scanSlot(row pgx.Row) (*model.ClinicSlot, error) {
	var (
		slot               model.ClinicSlot
		day, start, finish int
	)
	err := row.Scan(
		&slot.ID,
		&slot.TeacherID,
		&slot.CreatorID,
		&slot.BranchID,
		&day,
		&start,
		&finish,
		&slot.DefaultCapacity,
		&slot.IsActive,
		&slot.DeactivatedAt,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.DayOfWeek = time.Weekday(day)
	slot.StartTime = model.TimeOfDay(start)
	slot.EndTime = model.TimeOfDay(finish)
	return &slot, nil
}
