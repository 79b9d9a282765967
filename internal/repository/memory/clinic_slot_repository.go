package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type ClinicSlotRepository struct {
	db *DB
}

func NewClinicSlotRepository(db *DB) *ClinicSlotRepository {
	return &ClinicSlotRepository{db: db}
}

func (r *ClinicSlotRepository) Create(ctx context.Context, slot *model.ClinicSlot) error {
	defer r.db.lock(ctx)()

	now := r.db.now()
	slot.ID = r.db.nextID()
	slot.CreatedAt = now
	slot.UpdatedAt = now
	r.db.data.slots[slot.ID] = *slot
	return nil
}

func (r *ClinicSlotRepository) GetByID(ctx context.Context, id int64) (*model.ClinicSlot, error) {
	defer r.db.lock(ctx)()

	slot, ok := r.db.data.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r *ClinicSlotRepository) GetByTeacherID(ctx context.Context, teacherID int64) ([]*model.ClinicSlot, error) {
	return r.filter(ctx, func(s model.ClinicSlot) bool {
		return s.TeacherID == teacherID
	}), nil
}

func (r *ClinicSlotRepository) GetActiveByTeacherDay(ctx context.Context, teacherID int64, day time.Weekday) ([]*model.ClinicSlot, error) {
	return r.filter(ctx, func(s model.ClinicSlot) bool {
		return s.IsActive && s.TeacherID == teacherID && s.DayOfWeek == day
	}), nil
}

func (r *ClinicSlotRepository) GetAllActive(ctx context.Context) ([]*model.ClinicSlot, error) {
	return r.filter(ctx, func(s model.ClinicSlot) bool {
		return s.IsActive
	}), nil
}

func (r *ClinicSlotRepository) Update(ctx context.Context, slot *model.ClinicSlot) error {
	defer r.db.lock(ctx)()

	stored, ok := r.db.data.slots[slot.ID]
	if !ok {
		return fmt.Errorf("update clinic slot %d: not found", slot.ID)
	}
	stored.BranchID = slot.BranchID
	stored.DayOfWeek = slot.DayOfWeek
	stored.StartTime = slot.StartTime
	stored.EndTime = slot.EndTime
	stored.DefaultCapacity = slot.DefaultCapacity
	stored.UpdatedAt = r.db.now()
	r.db.data.slots[slot.ID] = stored
	*slot = stored
	return nil
}

func (r *ClinicSlotRepository) SetActive(ctx context.Context, id int64, active bool) error {
	defer r.db.lock(ctx)()

	stored, ok := r.db.data.slots[id]
	if !ok {
		return fmt.Errorf("set clinic slot %d active: not found", id)
	}
	now := r.db.now()
	stored.IsActive = active
	stored.DeactivatedAt = nil
	if !active {
		stored.DeactivatedAt = &now
	}
	stored.UpdatedAt = now
	r.db.data.slots[id] = stored
	return nil
}

func (r *ClinicSlotRepository) Delete(ctx context.Context, id int64) error {
	defer r.db.lock(ctx)()

	for _, session := range r.db.data.sessions {
		if session.SlotID != nil && *session.SlotID == id {
			return model.NewError(model.CodeSlotHasSessions, "slot %d is referenced by sessions", id)
		}
	}
	delete(r.db.data.slots, id)
	return nil
}

func (r *ClinicSlotRepository) filter(ctx context.Context, keep func(model.ClinicSlot) bool) []*model.ClinicSlot {
	defer r.db.lock(ctx)()

	var slots []*model.ClinicSlot
	for _, s := range r.db.data.slots {
		if keep(s) {
			slot := s
			slots = append(slots, &slot)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
	return slots
}
