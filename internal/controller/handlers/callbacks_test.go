package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/clinic_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func TestSessionPicker(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	sessions := []*model.ClinicSession{
		{ID: 7, Date: monday, StartTime: model.NewTimeOfDay(18, 0)},
		{ID: 8, Date: monday.AddDate(0, 0, 2), StartTime: model.NewTimeOfDay(10, 30)},
		{ID: 9, Date: monday.AddDate(0, 0, 4), StartTime: model.NewTimeOfDay(9, 0)},
	}

	markup := sessionPicker(sessions, func(s *model.ClinicSession) string {
		return keyboard.Data(callbackEnroll, s.ID, 501)
	})

	require.Len(t, markup.InlineKeyboard, 2)
	first := markup.InlineKeyboard[0][0]
	assert.Equal(t, "#7 Пн 04.03 18:00", first.Text)
	assert.Equal(t, "enroll:7:501", first.CallbackData)
	assert.Equal(t, "#9 Пт 08.03 09:00", markup.InlineKeyboard[1][0].Text)

	action, ids, err := keyboard.ParseData(markup.InlineKeyboard[0][1].CallbackData, 2)
	require.NoError(t, err)
	assert.Equal(t, callbackEnroll, action)
	assert.Equal(t, []int64{8, 501}, ids)
}

func TestCallbackPrefixes(t *testing.T) {
	for _, data := range []string{keyboard.Data(callbackEnroll, 1, 2), keyboard.Data(callbackMove, 3, 4)} {
		matched := false
		for _, prefix := range CallbackPrefixes {
			matched = matched || strings.HasPrefix(data, prefix)
		}
		assert.True(t, matched, data)
	}
}
