package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{name: "evening", in: "18:30", want: NewTimeOfDay(18, 30)},
		{name: "midnight", in: "00:00", want: 0},
		{name: "end of day", in: "24:00", want: MinutesPerDay},
		{name: "padded", in: " 09:05 ", want: NewTimeOfDay(9, 5)},
		{name: "no colon", in: "1830", wantErr: true},
		{name: "bad minute", in: "18:60", wantErr: true},
		{name: "past end of day", in: "24:30", wantErr: true},
		{name: "garbage", in: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayStringAndOn(t *testing.T) {
	tod := NewTimeOfDay(7, 5)
	assert.Equal(t, "07:05", tod.String())

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 4, 7, 5, 0, 0, time.UTC), tod.On(date, time.UTC))
}

func TestSessionStartsAt(t *testing.T) {
	s := &ClinicSession{
		Date:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime: NewTimeOfDay(18, 0),
		EndTime:   NewTimeOfDay(19, 0),
	}

	assert.Equal(t, time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC), s.StartsAt(time.UTC))
	assert.Equal(t, time.Date(2024, 3, 4, 19, 0, 0, 0, time.UTC), s.EndsAt(time.UTC))
}
