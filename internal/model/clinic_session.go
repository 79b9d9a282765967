package model

import "time"

type SessionType string

const (
	SessionTypeRegular   SessionType = "REGULAR"   // Создана из слота
	SessionTypeEmergency SessionType = "EMERGENCY" // Разовая, создана вручную
)

// ClinicSession конкретное занятие клиники в календарную дату
type ClinicSession struct {
	ID          int64       `json:"id"`
	SlotID      *int64      `json:"slot_id"` // nil для экстренных занятий
	TeacherID   int64       `json:"teacher_id"`
	BranchID    int64       `json:"branch_id"`
	SessionType SessionType `json:"session_type"`
	CreatorID   *int64      `json:"creator_id"` // заполняется только для EMERGENCY
	Date        time.Time   `json:"date"`
	StartTime   TimeOfDay   `json:"start_time"`
	EndTime     TimeOfDay   `json:"end_time"`
	Capacity    int         `json:"capacity"`
	IsCanceled  bool        `json:"is_canceled"`
	CanceledAt  *time.Time  `json:"canceled_at"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (s *ClinicSession) IsRegular() bool {
	return s.SessionType == SessionTypeRegular
}

// StartsAt момент начала занятия в часовом поясе платформы
func (s *ClinicSession) StartsAt(loc *time.Location) time.Time {
	return s.StartTime.On(s.Date, loc)
}

// EndsAt момент окончания занятия в часовом поясе платформы
func (s *ClinicSession) EndsAt(loc *time.Location) time.Time {
	return s.EndTime.On(s.Date, loc)
}
