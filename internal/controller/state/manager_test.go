package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	sm := NewManager()
	assert.Equal(t, StateNone, sm.Get(1).State)

	sm.Set(1, UserData{State: StateNoteTitle, Note: NoteDraft{AttendanceID: 7}})
	got := sm.Get(1)
	assert.Equal(t, StateNoteTitle, got.State)
	assert.Equal(t, int64(7), got.Note.AttendanceID)

	got.Note.Title = "changed"
	assert.Empty(t, sm.Get(1).Note.Title, "Get returns a copy")

	sm.Set(1, UserData{State: StateNone})
	assert.False(t, sm.Clear(1))

	sm.Set(2, UserData{State: StateNoteContent})
	assert.True(t, sm.Clear(2))
	assert.Equal(t, StateNone, sm.Get(2).State)
}
