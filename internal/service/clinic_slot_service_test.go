package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func TestCreateSlot_OverlapOnSameDay(t *testing.T) {
	env := setup(t)
	env.mustSlot(t, time.Monday, "18:00", "19:00", 5)

	_, err := env.slots.CreateSlot(t.Context(), teacher, CreateSlotInput{
		TeacherID: teacherID, BranchID: branchID, DayOfWeek: time.Monday,
		StartTime: tod("18:30"), EndTime: tod("19:30"), DefaultCapacity: 5,
	})
	assert.ErrorIs(t, err, model.ErrSlotConflict)

	// соседний интервал и другой день не конфликтуют
	env.mustSlot(t, time.Monday, "19:00", "20:00", 5)
	env.mustSlot(t, time.Tuesday, "18:30", "19:30", 5)
}

func TestCreateSlot_Validation(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name      string
		principal model.Principal
		in        CreateSlotInput
		want      error
	}{
		{
			name:      "end before start",
			principal: teacher,
			in:        CreateSlotInput{TeacherID: teacherID, BranchID: branchID, DayOfWeek: time.Monday, StartTime: tod("19:00"), EndTime: tod("18:00"), DefaultCapacity: 1},
			want:      model.ErrInvalidTimeRange,
		},
		{
			name:      "empty interval",
			principal: teacher,
			in:        CreateSlotInput{TeacherID: teacherID, BranchID: branchID, DayOfWeek: time.Monday, StartTime: tod("18:00"), EndTime: tod("18:00"), DefaultCapacity: 1},
			want:      model.ErrInvalidTimeRange,
		},
		{
			name:      "zero capacity",
			principal: teacher,
			in:        CreateSlotInput{TeacherID: teacherID, BranchID: branchID, DayOfWeek: time.Monday, StartTime: tod("18:00"), EndTime: tod("19:00")},
			want:      model.ErrBadRequest,
		},
		{
			name:      "teacher not in branch",
			principal: teacher,
			in:        CreateSlotInput{TeacherID: teacherID, BranchID: 999, DayOfWeek: time.Monday, StartTime: tod("18:00"), EndTime: tod("19:00"), DefaultCapacity: 1},
			want:      model.ErrForbidden,
		},
		{
			name:      "student",
			principal: student,
			in:        CreateSlotInput{TeacherID: teacherID, BranchID: branchID, DayOfWeek: time.Monday, StartTime: tod("18:00"), EndTime: tod("19:00"), DefaultCapacity: 1},
			want:      model.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.slots.CreateSlot(t.Context(), tt.principal, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateSlot_ByAssistant(t *testing.T) {
	env := setup(t)

	slot, err := env.slots.CreateSlot(t.Context(), assistant, CreateSlotInput{
		TeacherID: teacherID, BranchID: branchID, DayOfWeek: time.Wednesday,
		StartTime: tod("10:00"), EndTime: tod("11:00"), DefaultCapacity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, teacherID, slot.TeacherID)
	assert.Equal(t, assistantID, slot.CreatorID)
	assert.True(t, slot.IsActive)
}

func TestUpdateSlot(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	slot := env.mustSlot(t, time.Monday, "18:00", "19:00", 5)
	env.mustSlot(t, time.Monday, "19:00", "20:00", 5)

	t.Run("shift within own interval is not a conflict with itself", func(t *testing.T) {
		start, end := tod("17:30"), tod("18:30")
		updated, err := env.slots.UpdateSlot(ctx, teacher, slot.ID, UpdateSlotInput{StartTime: &start, EndTime: &end})
		require.NoError(t, err)
		assert.Equal(t, start, updated.StartTime)
	})

	t.Run("overlap with other slot", func(t *testing.T) {
		end := tod("19:30")
		_, err := env.slots.UpdateSlot(ctx, teacher, slot.ID, UpdateSlotInput{EndTime: &end})
		assert.ErrorIs(t, err, model.ErrSlotConflict)
	})

	t.Run("only owner", func(t *testing.T) {
		capacity := 3
		_, err := env.slots.UpdateSlot(ctx, assistant, slot.ID, UpdateSlotInput{DefaultCapacity: &capacity})
		assert.ErrorIs(t, err, model.ErrForbidden)
	})

	t.Run("unknown slot", func(t *testing.T) {
		_, err := env.slots.UpdateSlot(ctx, teacher, 424242, UpdateSlotInput{})
		assert.ErrorIs(t, err, model.ErrSlotNotFound)
	})
}

func TestUpdateSlot_CapacityAndDefaultAssignments(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	slot := env.mustSlot(t, time.Monday, "18:00", "19:00", 5)

	_, err := env.slots.AssignDefaultSlot(ctx, teacher, recordR1, &slot.ID)
	require.NoError(t, err)
	_, err = env.slots.AssignDefaultSlot(ctx, assistant, recordR2, &slot.ID)
	require.NoError(t, err)

	one := 1
	_, err = env.slots.UpdateSlot(ctx, teacher, slot.ID, UpdateSlotInput{DefaultCapacity: &one})
	assert.ErrorIs(t, err, model.ErrCapacityConflict)

	two := 2
	_, err = env.slots.UpdateSlot(ctx, teacher, slot.ID, UpdateSlotInput{DefaultCapacity: &two})
	require.NoError(t, err)

	count, err := env.stores.CourseRecords.CountByDefaultSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "capacity change keeps assignments")

	tuesday := time.Tuesday
	_, err = env.slots.UpdateSlot(ctx, teacher, slot.ID, UpdateSlotInput{DayOfWeek: &tuesday})
	require.NoError(t, err)

	count, err = env.stores.CourseRecords.CountByDefaultSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "schedule change clears assignments")
}

func TestUpdateSlot_ScheduleChangeWithLowerCapacity(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	slot := env.mustSlot(t, time.Monday, "18:00", "19:00", 5)

	_, err := env.slots.AssignDefaultSlot(ctx, teacher, recordR1, &slot.ID)
	require.NoError(t, err)
	_, err = env.slots.AssignDefaultSlot(ctx, teacher, recordR2, &slot.ID)
	require.NoError(t, err)

	wednesday := time.Wednesday
	one := 1
	updated, err := env.slots.UpdateSlot(ctx, teacher, slot.ID, UpdateSlotInput{
		DayOfWeek:       &wednesday,
		DefaultCapacity: &one,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, updated.DayOfWeek)
	assert.Equal(t, 1, updated.DefaultCapacity)

	count, err := env.stores.CourseRecords.CountByDefaultSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestActivate_RevalidatesConflicts(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	slot := env.mustSlot(t, time.Monday, "18:00", "19:00", 5)

	_, err := env.slots.Deactivate(ctx, teacher, slot.ID)
	require.NoError(t, err)

	// пока слот выключен, занимаем его время
	env.mustSlot(t, time.Monday, "18:30", "19:30", 5)

	_, err = env.slots.Activate(ctx, teacher, slot.ID)
	assert.ErrorIs(t, err, model.ErrSlotConflict)

	got, err := env.slots.GetSlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.NotNil(t, got.DeactivatedAt)
}

func TestNoOverlapAfterAnySequence(t *testing.T) {
	env := setup(t)
	ctx := t.Context()

	a := env.mustSlot(t, time.Monday, "10:00", "11:00", 2)
	b := env.mustSlot(t, time.Monday, "11:00", "12:00", 2)
	_, _ = env.slots.Deactivate(ctx, teacher, a.ID)
	env.mustSlot(t, time.Monday, "10:00", "10:30", 2)
	_, _ = env.slots.Activate(ctx, teacher, a.ID)
	end := tod("12:30")
	_, _ = env.slots.UpdateSlot(ctx, teacher, b.ID, UpdateSlotInput{EndTime: &end})
	start := tod("10:15")
	_, _ = env.slots.UpdateSlot(ctx, teacher, b.ID, UpdateSlotInput{StartTime: &start})

	slots, err := env.stores.Slots.GetActiveByTeacherDay(ctx, teacherID, time.Monday)
	require.NoError(t, err)
	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			overlap := slots[i].StartTime < slots[j].EndTime && slots[j].StartTime < slots[i].EndTime
			assert.False(t, overlap, "slots %d and %d overlap", slots[i].ID, slots[j].ID)
		}
	}
}

func TestDeleteSlot(t *testing.T) {
	env := setup(t)
	ctx := t.Context()

	unused := env.mustSlot(t, time.Friday, "10:00", "11:00", 2)
	_, err := env.slots.AssignDefaultSlot(ctx, teacher, recordR1, &unused.ID)
	require.NoError(t, err)
	require.NoError(t, env.slots.DeleteSlot(ctx, teacher, unused.ID))

	_, err = env.slots.GetSlot(ctx, unused.ID)
	assert.ErrorIs(t, err, model.ErrSlotNotFound)
	rec, err := env.stores.CourseRecords.GetByID(ctx, recordR1)
	require.NoError(t, err)
	assert.Nil(t, rec.DefaultClinicSlotID)

	used := env.mustSlot(t, time.Monday, "10:00", "11:00", 2)
	env.mustSession(t, used, "2024-03-04")
	err = env.slots.DeleteSlot(ctx, teacher, used.ID)
	assert.ErrorIs(t, err, model.ErrSlotHasSessions)
}

func TestAssignDefaultSlot(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	slot := env.mustSlot(t, time.Monday, "18:00", "19:00", 1)

	rec, err := env.slots.AssignDefaultSlot(ctx, teacher, recordR1, &slot.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.DefaultClinicSlotID)
	assert.Equal(t, slot.ID, *rec.DefaultClinicSlotID)

	// повторное назначение того же слота не занимает второе место
	_, err = env.slots.AssignDefaultSlot(ctx, teacher, recordR1, &slot.ID)
	require.NoError(t, err)

	_, err = env.slots.AssignDefaultSlot(ctx, teacher, recordR2, &slot.ID)
	assert.ErrorIs(t, err, model.ErrCapacityConflict)

	_, err = env.slots.AssignDefaultSlot(ctx, student, recordR2, &slot.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = env.slots.AssignDefaultSlot(ctx, teacher, 999, &slot.ID)
	assert.ErrorIs(t, err, model.ErrCourseRecordNotFound)

	_, err = env.slots.Deactivate(ctx, teacher, slot.ID)
	require.NoError(t, err)
	_, err = env.slots.AssignDefaultSlot(ctx, teacher, recordR2, &slot.ID)
	assert.ErrorIs(t, err, model.ErrSlotInactive)

	rec, err = env.slots.AssignDefaultSlot(ctx, teacher, recordR1, nil)
	require.NoError(t, err)
	assert.Nil(t, rec.DefaultClinicSlotID)
}
