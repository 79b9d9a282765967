package model

// Role роль аутентифицированного пользователя
type Role string

const (
	RoleTeacher   Role = "TEACHER"
	RoleAssistant Role = "ASSISTANT"
	RoleStudent   Role = "STUDENT"
)

// Valid проверяет что роль известна
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleAssistant, RoleStudent:
		return true
	}
	return false
}

// Principal аутентифицированный участник, от имени которого выполняется операция
type Principal struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (p Principal) IsTeacher() bool   { return p.Role == RoleTeacher }
func (p Principal) IsAssistant() bool { return p.Role == RoleAssistant }
func (p Principal) IsStudent() bool   { return p.Role == RoleStudent }

// IsStaff учитель или ассистент
func (p Principal) IsStaff() bool {
	return p.IsTeacher() || p.IsAssistant()
}
