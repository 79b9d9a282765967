package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStart(t *testing.T) {
	monday := DefaultWeekPolicy()
	sunday := WeekPolicy{Start: time.Sunday}

	tests := []struct {
		name   string
		policy WeekPolicy
		in     time.Time
		want   time.Time
	}{
		{"monday itself", monday, date(2024, 3, 4), date(2024, 3, 4)},
		{"wednesday", monday, date(2024, 3, 6), date(2024, 3, 4)},
		{"sunday closes monday week", monday, date(2024, 3, 10), date(2024, 3, 4)},
		{"sunday start policy", sunday, date(2024, 3, 10), date(2024, 3, 10)},
		{"sunday policy wednesday", sunday, date(2024, 3, 6), date(2024, 3, 3)},
		{"time of day is dropped", monday, time.Date(2024, 3, 6, 23, 59, 0, 0, time.UTC), date(2024, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.WeekStart(tt.in))
		})
	}
}

func TestSameWeek(t *testing.T) {
	p := DefaultWeekPolicy()

	assert.True(t, p.SameWeek(date(2024, 3, 4), date(2024, 3, 10)))
	assert.False(t, p.SameWeek(date(2024, 3, 4), date(2024, 3, 11)))
	assert.False(t, p.SameWeek(date(2024, 3, 4), date(2024, 3, 18)))

	sundayStart := WeekPolicy{Start: time.Sunday}
	assert.False(t, sundayStart.SameWeek(date(2024, 3, 9), date(2024, 3, 10)))
}

func TestDateInWeek(t *testing.T) {
	p := DefaultWeekPolicy()

	assert.Equal(t, date(2024, 3, 4), p.DateInWeek(date(2024, 3, 6), time.Monday))
	assert.Equal(t, date(2024, 3, 8), p.DateInWeek(date(2024, 3, 6), time.Friday))
	assert.Equal(t, date(2024, 3, 10), p.DateInWeek(date(2024, 3, 6), time.Sunday))

	days := p.Days(date(2024, 3, 6))
	require.Len(t, days, 7)
	assert.Equal(t, date(2024, 3, 4), days[0])
	assert.Equal(t, date(2024, 3, 10), days[6])
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{in: "MONDAY", want: time.Monday},
		{in: "fri", want: time.Friday},
		{in: "0", want: time.Sunday},
		{in: "6", want: time.Saturday},
		{in: "7", wantErr: true},
		{in: "someday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-04")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 4), d)
	assert.Equal(t, "2024-03-04", FormatDate(d))

	_, err = ParseDate("04.03.2024")
	assert.Error(t, err)
}
