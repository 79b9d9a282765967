package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

func TestPermissionValidator_EnsureStaffAccess(t *testing.T) {
	env := setup(t)
	env.db.PutTeacherAssistant(model.TeacherAssistantAssignment{TeacherID: otherTeacherID, AssistantID: assistantID, IsActive: false})

	tests := []struct {
		name      string
		principal model.Principal
		teacherID int64
		wantErr   bool
	}{
		{"teacher themself", teacher, teacherID, false},
		{"another teacher", otherTeacher, teacherID, true},
		{"assigned assistant", assistant, teacherID, false},
		{"inactive assistant assignment", assistant, otherTeacherID, true},
		{"student", student, teacherID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.permissions.EnsureStaffAccess(t.Context(), tt.principal, tt.teacherID)
			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrForbidden)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPermissionValidator_Assignments(t *testing.T) {
	env := setup(t)
	ctx := t.Context()

	assert.NoError(t, env.permissions.EnsureTeacherAssignment(ctx, teacherID, branchID))
	assert.ErrorIs(t, env.permissions.EnsureTeacherAssignment(ctx, teacherID, 999), model.ErrForbidden)

	assert.NoError(t, env.permissions.EnsureAssistantAssignment(ctx, assistantID, teacherID))
	assert.ErrorIs(t, env.permissions.EnsureAssistantAssignment(ctx, assistantID, otherTeacherID), model.ErrForbidden)

	assert.NoError(t, env.permissions.EnsureStudentAccess(ctx, studentID, teacherID, branchID))
	assert.ErrorIs(t, env.permissions.EnsureStudentAccess(ctx, studentID, otherTeacherID, branchID), model.ErrForbidden)
}

func TestPermissionValidator_EnsureViewAccess(t *testing.T) {
	env := setup(t)
	ctx := t.Context()

	assert.NoError(t, env.permissions.EnsureViewAccess(ctx, student, teacherID))
	assert.ErrorIs(t, env.permissions.EnsureViewAccess(ctx, student, otherTeacherID), model.ErrForbidden)
	assert.NoError(t, env.permissions.EnsureViewAccess(ctx, assistant, teacherID))
}
