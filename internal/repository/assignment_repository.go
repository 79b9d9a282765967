package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/repository/base"
)

// AssignmentRepository читает назначения учителей в филиалы и закрепления ассистентов
type AssignmentRepository struct {
	*base.Repository
}

func NewAssignmentRepository(pool *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{Repository: base.NewRepository(pool)}
}

// GetTeacherBranch получает назначение учителя в филиал
func (r *AssignmentRepository) GetTeacherBranch(ctx context.Context, teacherID, branchID int64) (*model.TeacherBranchAssignment, error) {
	query := `
		SELECT teacher_id, branch_id, is_active
		FROM teacher_branch_assignments
		WHERE teacher_id = $1 AND branch_id = $2
	`

	var a model.TeacherBranchAssignment
	err := r.QueryRow(ctx, query, teacherID, branchID).Scan(&a.TeacherID, &a.BranchID, &a.IsActive)
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher branch assignment: %w", err)
	}

	return &a, nil
}

// GetTeacherAssistant получает закрепление ассистента за учителем
func (r *AssignmentRepository) GetTeacherAssistant(ctx context.Context, teacherID, assistantID int64) (*model.TeacherAssistantAssignment, error) {
	query := `
		SELECT teacher_id, assistant_id, is_active
		FROM teacher_assistant_assignments
		WHERE teacher_id = $1 AND assistant_id = $2
	`

	var a model.TeacherAssistantAssignment
	err := r.QueryRow(ctx, query, teacherID, assistantID).Scan(&a.TeacherID, &a.AssistantID, &a.IsActive)
	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get teacher assistant assignment: %w", err)
	}

	return &a, nil
}
