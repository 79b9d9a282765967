package memory

import (
	"context"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

type AssignmentRepository struct {
	db *DB
}

func NewAssignmentRepository(db *DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) GetTeacherBranch(ctx context.Context, teacherID, branchID int64) (*model.TeacherBranchAssignment, error) {
	defer r.db.lock(ctx)()

	a, ok := r.db.data.branchAssignments[pairKey{teacherID, branchID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AssignmentRepository) GetTeacherAssistant(ctx context.Context, teacherID, assistantID int64) (*model.TeacherAssistantAssignment, error) {
	defer r.db.lock(ctx)()

	a, ok := r.db.data.assistantAssignments[pairKey{teacherID, assistantID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
