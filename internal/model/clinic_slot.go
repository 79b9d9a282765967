package model

import "time"

// ClinicSlot еженедельный шаблон клиники учителя
type ClinicSlot struct {
	ID              int64        `json:"id"`
	TeacherID       int64        `json:"teacher_id"`
	CreatorID       int64        `json:"creator_id"`
	BranchID        int64        `json:"branch_id"`
	DayOfWeek       time.Weekday `json:"day_of_week"` // 0 = Sunday, 6 = Saturday
	StartTime       TimeOfDay    `json:"start_time"`
	EndTime         TimeOfDay    `json:"end_time"`
	DefaultCapacity int          `json:"default_capacity"`
	IsActive        bool         `json:"is_active"`
	DeactivatedAt   *time.Time   `json:"deactivated_at"` // только для истории, состояние хранит IsActive
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}
