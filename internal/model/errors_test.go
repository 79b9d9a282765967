package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClinicErrorIsMatchesByCode(t *testing.T) {
	err := NewError(CodeSessionFull, "session %d is full", 7)

	assert.ErrorIs(t, err, ErrSessionFull)
	assert.NotErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, "SESSION_FULL: session 7 is full", err.Error())

	wrapped := fmt.Errorf("add attendance: %w", err)
	assert.ErrorIs(t, wrapped, ErrSessionFull)
	assert.Equal(t, CodeSessionFull, CodeOf(wrapped))
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := WrapError(CodeAttendanceAlreadyExists, cause, "already enrolled")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrAttendanceAlreadyExists)
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("boom")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestErrorCodeKind(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorKind
	}{
		{CodeInvalidTimeRange, KindValidation},
		{CodeBadRequest, KindValidation},
		{CodeSlotConflict, KindConflict},
		{CodeSessionFull, KindConflict},
		{CodeConcurrentModification, KindConflict},
		{CodeSessionCanceled, KindState},
		{CodeAttendanceMoveForbidden, KindState},
		{CodeForbidden, KindAuthorization},
		{CodeSessionNotFound, KindNotFound},
		{CodeCourseRecordNotFound, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Kind())
		})
	}
}
