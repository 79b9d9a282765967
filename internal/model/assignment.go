package model

// TeacherBranchAssignment назначение учителя в филиал
type TeacherBranchAssignment struct {
	TeacherID int64 `json:"teacher_id"`
	BranchID  int64 `json:"branch_id"`
	IsActive  bool  `json:"is_active"`
}

// TeacherAssistantAssignment закрепление ассистента за учителем
type TeacherAssistantAssignment struct {
	TeacherID   int64 `json:"teacher_id"`
	AssistantID int64 `json:"assistant_id"`
	IsActive    bool  `json:"is_active"`
}
