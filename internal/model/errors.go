package model

import (
	"errors"
	"fmt"
)

// ErrorCode машиночитаемый код отказа в операции
type ErrorCode string

// Ошибки валидации
const (
	CodeInvalidTimeRange ErrorCode = "INVALID_TIME_RANGE"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeSessionInPast    ErrorCode = "SESSION_IN_PAST"
)

// Конфликты
const (
	CodeSlotConflict            ErrorCode = "SLOT_CONFLICT"
	CodeSessionAlreadyExists    ErrorCode = "SESSION_ALREADY_EXISTS"
	CodeSessionFull             ErrorCode = "SESSION_FULL"
	CodeAttendanceAlreadyExists ErrorCode = "ATTENDANCE_ALREADY_EXISTS"
	CodeStudentTimeConflict     ErrorCode = "STUDENT_TIME_CONFLICT"
	CodeCapacityConflict        ErrorCode = "CAPACITY_CONFLICT"
	CodeSessionTimeConflict     ErrorCode = "SESSION_TIME_CONFLICT"
	CodeConcurrentModification  ErrorCode = "CONCURRENT_MODIFICATION"
)

// Ошибки состояния
const (
	CodeSessionCanceled           ErrorCode = "SESSION_CANCELED"
	CodeAttendanceMoveForbidden   ErrorCode = "ATTENDANCE_MOVE_FORBIDDEN"
	CodeClinicRecordAlreadyExists ErrorCode = "CLINIC_RECORD_ALREADY_EXISTS"
	CodeSlotInactive              ErrorCode = "SLOT_INACTIVE"
	CodeSlotHasSessions           ErrorCode = "SLOT_HAS_SESSIONS"
)

// Авторизация
const (
	CodeForbidden ErrorCode = "FORBIDDEN"
)

// Не найдено
const (
	CodeSlotNotFound         ErrorCode = "SLOT_NOT_FOUND"
	CodeSessionNotFound      ErrorCode = "SESSION_NOT_FOUND"
	CodeAttendanceNotFound   ErrorCode = "ATTENDANCE_NOT_FOUND"
	CodeClinicRecordNotFound ErrorCode = "CLINIC_RECORD_NOT_FOUND"
	CodeCourseRecordNotFound ErrorCode = "COURSE_RECORD_NOT_FOUND"
)

// ErrorKind группа кодов
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConflict      ErrorKind = "conflict"
	KindState         ErrorKind = "state"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
)

// Kind возвращает группу, к которой относится код
func (c ErrorCode) Kind() ErrorKind {
	switch c {
	case CodeInvalidTimeRange, CodeBadRequest, CodeSessionInPast:
		return KindValidation
	case CodeSessionCanceled, CodeAttendanceMoveForbidden, CodeClinicRecordAlreadyExists,
		CodeSlotInactive, CodeSlotHasSessions:
		return KindState
	case CodeForbidden:
		return KindAuthorization
	case CodeSlotNotFound, CodeSessionNotFound, CodeAttendanceNotFound,
		CodeClinicRecordNotFound, CodeCourseRecordNotFound:
		return KindNotFound
	default:
		return KindConflict
	}
}

// ClinicError типизированная ошибка, которую видит вызывающая сторона.
// errors.Is сравнивает ошибки по коду.
type ClinicError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *ClinicError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

func (e *ClinicError) Unwrap() error {
	return e.Err
}

func (e *ClinicError) Is(target error) bool {
	t, ok := target.(*ClinicError)
	return ok && t.Code == e.Code
}

// NewError создаёт ошибку с кодом и сообщением
func NewError(code ErrorCode, format string, args ...any) *ClinicError {
	return &ClinicError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError оборачивает причину в ошибку с кодом
func WrapError(code ErrorCode, err error, message string) *ClinicError {
	return &ClinicError{Code: code, Message: message, Err: err}
}

// CodeOf извлекает код из цепочки ошибок, пустая строка если кода нет
func CodeOf(err error) ErrorCode {
	var ce *ClinicError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// Сентинелы для errors.Is
var (
	ErrInvalidTimeRange = &ClinicError{Code: CodeInvalidTimeRange}
	ErrBadRequest       = &ClinicError{Code: CodeBadRequest}
	ErrSessionInPast    = &ClinicError{Code: CodeSessionInPast}

	ErrSlotConflict            = &ClinicError{Code: CodeSlotConflict}
	ErrSessionAlreadyExists    = &ClinicError{Code: CodeSessionAlreadyExists}
	ErrSessionFull             = &ClinicError{Code: CodeSessionFull}
	ErrAttendanceAlreadyExists = &ClinicError{Code: CodeAttendanceAlreadyExists}
	ErrStudentTimeConflict     = &ClinicError{Code: CodeStudentTimeConflict}
	ErrCapacityConflict        = &ClinicError{Code: CodeCapacityConflict}
	ErrSessionTimeConflict     = &ClinicError{Code: CodeSessionTimeConflict}
	ErrConcurrentModification  = &ClinicError{Code: CodeConcurrentModification}

	ErrSessionCanceled           = &ClinicError{Code: CodeSessionCanceled}
	ErrAttendanceMoveForbidden   = &ClinicError{Code: CodeAttendanceMoveForbidden}
	ErrClinicRecordAlreadyExists = &ClinicError{Code: CodeClinicRecordAlreadyExists}
	ErrSlotInactive              = &ClinicError{Code: CodeSlotInactive}
	ErrSlotHasSessions           = &ClinicError{Code: CodeSlotHasSessions}

	ErrForbidden = &ClinicError{Code: CodeForbidden}

	ErrSlotNotFound         = &ClinicError{Code: CodeSlotNotFound}
	ErrSessionNotFound      = &ClinicError{Code: CodeSessionNotFound}
	ErrAttendanceNotFound   = &ClinicError{Code: CodeAttendanceNotFound}
	ErrClinicRecordNotFound = &ClinicError{Code: CodeClinicRecordNotFound}
	ErrCourseRecordNotFound = &ClinicError{Code: CodeCourseRecordNotFound}
)
