package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func TestClinicRecord_Lifecycle(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	session := env.mustSession(t, env.mustSlot(t, time.Monday, "18:00", "19:00", 2), "2024-03-04")
	attendance, err := env.attendances.AddAttendance(ctx, teacher, session.ID, recordR1)
	require.NoError(t, err)

	record, err := env.records.CreateRecord(ctx, assistant, attendance.ID, RecordInput{
		Title:            "Present Perfect",
		Content:          "Разобрали исключения",
		HomeworkProgress: "Упражнения 1-3 сделаны",
	})
	require.NoError(t, err)
	assert.Equal(t, assistantID, record.WriterID)
	assert.Equal(t, attendance.ID, record.ClinicAttendanceID)

	_, err = env.records.CreateRecord(ctx, teacher, attendance.ID, RecordInput{Title: "again"})
	assert.ErrorIs(t, err, model.ErrClinicRecordAlreadyExists)

	updated, err := env.records.UpdateRecord(ctx, teacher, attendance.ID, RecordInput{Title: "Past Simple"})
	require.NoError(t, err)
	assert.Equal(t, "Past Simple", updated.Title)
	assert.Equal(t, teacherID, updated.WriterID)

	got, err := env.records.GetRecord(ctx, student, attendance.ID)
	require.NoError(t, err)
	assert.Equal(t, "Past Simple", got.Title)

	_, err = env.records.GetRecord(ctx, student2, attendance.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, env.records.DeleteRecord(ctx, teacher, attendance.ID))
	_, err = env.records.GetRecord(ctx, teacher, attendance.ID)
	assert.ErrorIs(t, err, model.ErrClinicRecordNotFound)
	assert.ErrorIs(t, env.records.DeleteRecord(ctx, teacher, attendance.ID), model.ErrClinicRecordNotFound)
}

func TestClinicRecord_Validation(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	session := env.mustSession(t, env.mustSlot(t, time.Monday, "18:00", "19:00", 2), "2024-03-04")
	attendance, err := env.attendances.AddAttendance(ctx, teacher, session.ID, recordR1)
	require.NoError(t, err)

	tests := []struct {
		name string
		in   RecordInput
	}{
		{name: "empty title", in: RecordInput{}},
		{name: "long title", in: RecordInput{Title: strings.Repeat("a", 201)}},
		{name: "long content", in: RecordInput{Title: "ok", Content: strings.Repeat("a", 4001)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.records.CreateRecord(ctx, teacher, attendance.ID, tt.in)
			assert.ErrorIs(t, err, model.ErrBadRequest)
		})
	}
}

func TestClinicRecord_Access(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	session := env.mustSession(t, env.mustSlot(t, time.Monday, "18:00", "19:00", 2), "2024-03-04")
	attendance, err := env.attendances.AddAttendance(ctx, teacher, session.ID, recordR1)
	require.NoError(t, err)

	_, err = env.records.CreateRecord(ctx, student, attendance.ID, RecordInput{Title: "mine"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = env.records.CreateRecord(ctx, otherTeacher, attendance.ID, RecordInput{Title: "theirs"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = env.records.CreateRecord(ctx, teacher, 424242, RecordInput{Title: "missing"})
	assert.ErrorIs(t, err, model.ErrAttendanceNotFound)
}

func TestClinicRecord_RemovedWithAttendance(t *testing.T) {
	env := setup(t)
	ctx := t.Context()
	session := env.mustSession(t, env.mustSlot(t, time.Monday, "18:00", "19:00", 2), "2024-03-04")
	attendance, err := env.attendances.AddAttendance(ctx, teacher, session.ID, recordR1)
	require.NoError(t, err)
	_, err = env.records.CreateRecord(ctx, teacher, attendance.ID, RecordInput{Title: "notes"})
	require.NoError(t, err)

	require.NoError(t, env.attendances.DeleteAttendance(ctx, teacher, attendance.ID))

	record, err := env.stores.Records.GetByAttendanceID(ctx, attendance.ID)
	require.NoError(t, err)
	assert.Nil(t, record)
}
