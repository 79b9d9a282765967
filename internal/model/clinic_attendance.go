package model

import "time"

// ClinicAttendance запись курса студента на занятие
type ClinicAttendance struct {
	ID                    int64     `json:"id"`
	ClinicSessionID       int64     `json:"clinic_session_id"`
	StudentCourseRecordID int64     `json:"student_course_record_id"`
	CreatedBy             int64     `json:"created_by"`
	CreatedAt             time.Time `json:"created_at"`

	// Дополнительные поля для удобства (не из БД)
	Session *ClinicSession `json:"session,omitempty"`
}
