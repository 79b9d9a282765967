package handlers

import (
	"errors"
	"strings"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// errUsage неверные аргументы команды, текст подсказки хранит usageError
var errUsage = errors.New("invalid command arguments")

type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }
func (e *usageError) Unwrap() error { return errUsage }

func usage(text string) error {
	return &usageError{usage: text}
}

var errorMessages = map[model.ErrorCode]string{
	model.CodeInvalidTimeRange:          "❌ Время начала должно быть раньше времени окончания",
	model.CodeBadRequest:                "❌ Неверные данные",
	model.CodeSessionInPast:             "⏰ Занятие уже началось или прошло",
	model.CodeSlotConflict:              "⚠️ Слот пересекается с другим активным слотом в этот день",
	model.CodeSessionAlreadyExists:      "⚠️ Занятие по этому слоту на эту дату уже создано",
	model.CodeSessionFull:               "😔 На занятии нет свободных мест",
	model.CodeAttendanceAlreadyExists:   "ℹ️ Студент уже записан на это занятие",
	model.CodeStudentTimeConflict:       "⚠️ У студента в это время уже есть другое занятие",
	model.CodeCapacityConflict:          "⚠️ Вместимость меньше числа закреплённых студентов",
	model.CodeSessionTimeConflict:       "⚠️ В это время у учителя уже есть занятие",
	model.CodeConcurrentModification:    "🔄 Занятие изменилось, попробуйте ещё раз",
	model.CodeSessionCanceled:           "🚫 Занятие отменено",
	model.CodeAttendanceMoveForbidden:   "🚫 Перенести запись можно только в пределах одной недели",
	model.CodeClinicRecordAlreadyExists: "ℹ️ Запись по этому посещению уже есть",
	model.CodeSlotInactive:              "🚫 Слот выключен",
	model.CodeSlotHasSessions:           "🚫 По слоту уже есть занятия, его можно только выключить: /slotoff",
	model.CodeForbidden:                 "🔒 Недостаточно прав",
	model.CodeSlotNotFound:              "❌ Слот не найден",
	model.CodeSessionNotFound:           "❌ Занятие не найдено",
	model.CodeAttendanceNotFound:        "❌ Запись на занятие не найдена",
	model.CodeClinicRecordNotFound:      "❌ Запись клиники не найдена",
	model.CodeCourseRecordNotFound:      "❌ Курс студента не найден",
}

// ErrorMessage переводит ошибку сервиса в сообщение пользователю.
// Внутренние ошибки не раскрываются.
func ErrorMessage(err error) string {
	var ue *usageError
	if errors.As(err, &ue) {
		return "❌ Неверный формат команды\n\nИспользование: " + ue.usage
	}

	code := model.CodeOf(err)
	msg, ok := errorMessages[code]
	if !ok {
		return "❌ Произошла ошибка. Попробуйте позже."
	}

	var ce *model.ClinicError
	if code == model.CodeBadRequest && errors.As(err, &ce) && ce.Message != "" {
		return msg + ": " + strings.TrimSpace(ce.Message)
	}
	return msg
}

// isInternal true для ошибок без кода, их нужно логировать как Error
func isInternal(err error) bool {
	return model.CodeOf(err) == "" && !errors.Is(err, errUsage)
}
