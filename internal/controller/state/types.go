package state

// UserState шаг диалога пользователя
type UserState string

const (
	StateNone UserState = "" // Нет активного диалога

	// Запись клиники по шагам: заголовок, содержание, домашнее задание
	StateNoteTitle    UserState = "note_title"
	StateNoteContent  UserState = "note_content"
	StateNoteHomework UserState = "note_homework"
)

// NoteDraft черновик записи клиники, собираемый в диалоге
type NoteDraft struct {
	AttendanceID int64
	Title        string
	Content      string
	// Update true, если запись для посещения уже есть и её нужно перезаписать
	Update bool
}

// UserData состояние диалога пользователя
type UserData struct {
	State UserState
	Note  NoteDraft
}
