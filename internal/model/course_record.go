package model

// StudentCourseRecord связывает студента с курсом учителя.
// Таблицей владеет внешний модуль, ядро пишет только default_clinic_slot_id.
type StudentCourseRecord struct {
	ID                  int64  `json:"id"`
	StudentID           int64  `json:"student_id"`
	CourseID            int64  `json:"course_id"`
	TeacherID           int64  `json:"teacher_id"`
	BranchID            int64  `json:"branch_id"`
	DefaultClinicSlotID *int64 `json:"default_clinic_slot_id"`
	IsActive            bool   `json:"is_active"`
}
