package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// PermissionValidator проверяет права участника по назначениям учителей и курсам студентов.
// Своих данных не хранит.
type PermissionValidator struct {
	assignments   AssignmentRepository
	courseRecords CourseRecordRepository
}

func NewPermissionValidator(assignments AssignmentRepository, courseRecords CourseRecordRepository) *PermissionValidator {
	return &PermissionValidator{
		assignments:   assignments,
		courseRecords: courseRecords,
	}
}

// EnsureTeacherAssignment учитель должен быть активно назначен в филиал
func (v *PermissionValidator) EnsureTeacherAssignment(ctx context.Context, teacherID, branchID int64) error {
	a, err := v.assignments.GetTeacherBranch(ctx, teacherID, branchID)
	if err != nil {
		return fmt.Errorf("get teacher branch assignment: %w", err)
	}
	if a == nil || !a.IsActive {
		return model.NewError(model.CodeForbidden, "teacher %d is not assigned to branch %d", teacherID, branchID)
	}
	return nil
}

// EnsureAssistantAssignment ассистент должен быть активно закреплён за учителем
func (v *PermissionValidator) EnsureAssistantAssignment(ctx context.Context, assistantID, teacherID int64) error {
	a, err := v.assignments.GetTeacherAssistant(ctx, teacherID, assistantID)
	if err != nil {
		return fmt.Errorf("get teacher assistant assignment: %w", err)
	}
	if a == nil || !a.IsActive {
		return model.NewError(model.CodeForbidden, "assistant %d is not assigned to teacher %d", assistantID, teacherID)
	}
	return nil
}

// EnsureStudentAccess у студента должен быть активный курс у учителя в филиале
func (v *PermissionValidator) EnsureStudentAccess(ctx context.Context, studentID, teacherID, branchID int64) error {
	ok, err := v.courseRecords.HasActive(ctx, studentID, teacherID, branchID)
	if err != nil {
		return fmt.Errorf("check student course: %w", err)
	}
	if !ok {
		return model.NewError(model.CodeForbidden, "student %d has no active course with teacher %d in branch %d",
			studentID, teacherID, branchID)
	}
	return nil
}

// EnsureStaffAccess участник либо сам учитель, либо закреплённый за ним ассистент
func (v *PermissionValidator) EnsureStaffAccess(ctx context.Context, principal model.Principal, teacherID int64) error {
	switch {
	case principal.IsTeacher() && principal.ID == teacherID:
		return nil
	case principal.IsAssistant():
		return v.EnsureAssistantAssignment(ctx, principal.ID, teacherID)
	default:
		return model.NewError(model.CodeForbidden, "%s %d has no staff access to teacher %d",
			principal.Role, principal.ID, teacherID)
	}
}

// EnsureViewAccess расписание учителя видят его сотрудники и студенты с активным курсом у него
func (v *PermissionValidator) EnsureViewAccess(ctx context.Context, principal model.Principal, teacherID int64) error {
	if !principal.IsStudent() {
		return v.EnsureStaffAccess(ctx, principal, teacherID)
	}

	records, err := v.courseRecords.GetByStudentID(ctx, principal.ID)
	if err != nil {
		return fmt.Errorf("get student course records: %w", err)
	}
	for _, r := range records {
		if r.IsActive && r.TeacherID == teacherID {
			return nil
		}
	}
	return model.NewError(model.CodeForbidden, "student %d has no course with teacher %d", principal.ID, teacherID)
}
