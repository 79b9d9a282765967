package schedule

import (
	"testing"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/stretchr/testify/assert"
)

func hm(h, m int) model.TimeOfDay { return model.NewTimeOfDay(h, m) }

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		startA, endA, startB, endB model.TimeOfDay
		want                       bool
	}{
		{"partial overlap", hm(18, 0), hm(19, 0), hm(18, 30), hm(19, 30), true},
		{"contained", hm(18, 0), hm(20, 0), hm(18, 30), hm(19, 0), true},
		{"identical", hm(18, 0), hm(19, 0), hm(18, 0), hm(19, 0), true},
		{"touching end to start", hm(18, 0), hm(19, 0), hm(19, 0), hm(20, 0), false},
		{"touching start to end", hm(19, 0), hm(20, 0), hm(18, 0), hm(19, 0), false},
		{"disjoint", hm(8, 0), hm(9, 0), hm(18, 0), hm(19, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.startA, tt.endA, tt.startB, tt.endB))
			// симметричность
			assert.Equal(t, tt.want, Overlaps(tt.startB, tt.endB, tt.startA, tt.endA))
		})
	}
}

func TestValidRange(t *testing.T) {
	assert.True(t, ValidRange(hm(18, 0), hm(19, 0)))
	assert.True(t, ValidRange(hm(23, 0), model.MinutesPerDay))
	assert.False(t, ValidRange(hm(19, 0), hm(19, 0)))
	assert.False(t, ValidRange(hm(19, 0), hm(18, 0)))
	assert.False(t, ValidRange(-1, hm(1, 0)))
}

func TestFirstSlotConflict(t *testing.T) {
	existing := []*model.ClinicSlot{
		{ID: 1, TeacherID: 10, DayOfWeek: time.Monday, StartTime: hm(18, 0), EndTime: hm(19, 0), IsActive: true},
		{ID: 2, TeacherID: 10, DayOfWeek: time.Monday, StartTime: hm(20, 0), EndTime: hm(21, 0), IsActive: false},
		{ID: 3, TeacherID: 11, DayOfWeek: time.Monday, StartTime: hm(18, 0), EndTime: hm(19, 0), IsActive: true},
		{ID: 4, TeacherID: 10, DayOfWeek: time.Tuesday, StartTime: hm(18, 0), EndTime: hm(19, 0), IsActive: true},
	}

	t.Run("overlapping active slot of same teacher and day", func(t *testing.T) {
		candidate := &model.ClinicSlot{TeacherID: 10, DayOfWeek: time.Monday, StartTime: hm(18, 30), EndTime: hm(19, 30)}
		conflict := FirstSlotConflict(candidate, existing)
		if assert.NotNil(t, conflict) {
			assert.Equal(t, int64(1), conflict.ID)
		}
	})

	t.Run("inactive slot is ignored", func(t *testing.T) {
		candidate := &model.ClinicSlot{TeacherID: 10, DayOfWeek: time.Monday, StartTime: hm(20, 30), EndTime: hm(21, 30)}
		assert.Nil(t, FirstSlotConflict(candidate, existing))
	})

	t.Run("slot does not conflict with itself", func(t *testing.T) {
		candidate := &model.ClinicSlot{ID: 1, TeacherID: 10, DayOfWeek: time.Monday, StartTime: hm(18, 15), EndTime: hm(19, 15)}
		assert.Nil(t, FirstSlotConflict(candidate, existing))
	})

	t.Run("adjacent slot is allowed", func(t *testing.T) {
		candidate := &model.ClinicSlot{TeacherID: 10, DayOfWeek: time.Monday, StartTime: hm(19, 0), EndTime: hm(20, 0)}
		assert.Nil(t, FirstSlotConflict(candidate, existing))
	})
}

func TestFirstSessionConflict(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	sessions := []*model.ClinicSession{
		{ID: 1, Date: monday, StartTime: hm(18, 0), EndTime: hm(19, 0)},
		{ID: 2, Date: monday, StartTime: hm(20, 0), EndTime: hm(21, 0), IsCanceled: true},
		{ID: 3, Date: monday.AddDate(0, 0, 1), StartTime: hm(18, 0), EndTime: hm(19, 0)},
	}

	conflict := FirstSessionConflict(monday, hm(18, 30), hm(19, 30), sessions, 0)
	if assert.NotNil(t, conflict) {
		assert.Equal(t, int64(1), conflict.ID)
	}

	assert.Nil(t, FirstSessionConflict(monday, hm(18, 30), hm(19, 30), sessions, 1), "excluded session")
	assert.Nil(t, FirstSessionConflict(monday, hm(20, 0), hm(21, 0), sessions, 0), "canceled session")
	assert.Nil(t, FirstSessionConflict(monday.AddDate(0, 0, 2), hm(18, 0), hm(19, 0), sessions, 0), "other date")
}
