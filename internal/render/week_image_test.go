package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

func TestWeekImage(t *testing.T) {
	policy := schedule.DefaultWeekPolicy()
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	slotID := int64(7)

	grid := WeekGrid{
		Days: policy.Days(monday),
		Sessions: []*model.ClinicSession{
			{ID: 1, SlotID: &slotID, Date: monday, StartTime: model.NewTimeOfDay(18, 0), EndTime: model.NewTimeOfDay(19, 0), Capacity: 2, SessionType: model.SessionTypeRegular},
			{ID: 2, Date: monday.AddDate(0, 0, 2), StartTime: model.NewTimeOfDay(10, 30), EndTime: model.NewTimeOfDay(11, 30), Capacity: 1, SessionType: model.SessionTypeEmergency},
			{ID: 3, SlotID: &slotID, Date: monday.AddDate(0, 0, 7), StartTime: model.NewTimeOfDay(18, 0), EndTime: model.NewTimeOfDay(19, 0), Capacity: 2, SessionType: model.SessionTypeRegular, IsCanceled: true},
		},
		Enrolled: map[int64]int{1: 2},
		Today:    monday.Add(12 * time.Hour),
	}

	data, err := WeekImage(grid)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, imageWidth, img.Bounds().Dx())
	assert.Equal(t, imageHeight, img.Bounds().Dy())
}

func TestWeekImage_NoDays(t *testing.T) {
	_, err := WeekImage(WeekGrid{})
	assert.Error(t, err)
}

func TestCalculateHourRange(t *testing.T) {
	tests := []struct {
		name     string
		sessions []*model.ClinicSession
		want     hourRange
	}{
		{name: "empty week", want: hourRange{start: 8, end: 21, total: 13}},
		{
			name: "padded around sessions",
			sessions: []*model.ClinicSession{
				{StartTime: model.NewTimeOfDay(10, 0), EndTime: model.NewTimeOfDay(11, 15)},
				{StartTime: model.NewTimeOfDay(18, 0), EndTime: model.NewTimeOfDay(19, 0)},
			},
			want: hourRange{start: 9, end: 20, total: 11},
		},
		{
			name:     "clamped to the day",
			sessions: []*model.ClinicSession{{StartTime: model.NewTimeOfDay(0, 0), EndTime: model.NewTimeOfDay(23, 30)}},
			want:     hourRange{start: 0, end: 24, total: 24},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, calculateHourRange(tt.sessions))
		})
	}
}

func TestSessionColor(t *testing.T) {
	regular := &model.ClinicSession{Capacity: 2, SessionType: model.SessionTypeRegular}
	emergency := &model.ClinicSession{Capacity: 2, SessionType: model.SessionTypeEmergency}
	canceled := &model.ClinicSession{Capacity: 2, SessionType: model.SessionTypeRegular, IsCanceled: true}

	assert.Equal(t, openColor, sessionColor(regular, 1))
	assert.Equal(t, fullColor, sessionColor(regular, 2))
	assert.Equal(t, emergencyColor, sessionColor(emergency, 0))
	assert.Equal(t, canceledColor, sessionColor(canceled, 0))
}
