package model

import "time"

// ClinicRecord заметка по итогам занятия, не больше одной на запись
type ClinicRecord struct {
	ID                 int64     `json:"id"`
	ClinicAttendanceID int64     `json:"clinic_attendance_id"`
	WriterID           int64     `json:"writer_id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	HomeworkProgress   string    `json:"homework_progress"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
