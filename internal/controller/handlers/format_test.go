package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func TestFormatSlot(t *testing.T) {
	slot := &model.ClinicSlot{
		ID: 3, BranchID: 100, DayOfWeek: time.Monday,
		StartTime: model.NewTimeOfDay(18, 0), EndTime: model.NewTimeOfDay(19, 0),
		DefaultCapacity: 4, IsActive: true,
	}
	assert.Equal(t, "✅ #3 Понедельник 18:00-19:00, мест: 4, филиал 100", formatSlot(slot))

	slot.IsActive = false
	assert.Contains(t, formatSlot(slot), "⏸")
}

func TestFormatSession(t *testing.T) {
	session := &model.ClinicSession{
		ID: 9, Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime: model.NewTimeOfDay(18, 0), EndTime: model.NewTimeOfDay(19, 0),
		Capacity: 2, SessionType: model.SessionTypeEmergency, IsCanceled: true,
	}
	text := formatSession(session)
	assert.Contains(t, text, "🚑 Занятие #9")
	assert.Contains(t, text, "04.03.2024 (Понедельник) 18:00-19:00")
	assert.Contains(t, text, "🚫 Отменено")
}

func TestFormatWeekCaption(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	days := []time.Time{monday, monday.AddDate(0, 0, 6)}
	sessions := []*model.ClinicSession{{ID: 1}, {ID: 2, IsCanceled: true}}

	assert.Equal(t, "🗓 Учитель 1, неделя 2024-03-04 - 2024-03-10\nЗанятий: 2, отменено: 1",
		formatWeekCaption(1, days, sessions))
}
