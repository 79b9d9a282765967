// Package schedule содержит чистую логику расписания: пересечение интервалов и границы недели.
package schedule

import (
	"cmp"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// Overlaps проверяет пересечение полуоткрытых интервалов [startA, endA) и [startB, endB).
// Интервалы с end <= start вызывающая сторона отклоняет заранее.
func Overlaps[T cmp.Ordered](startA, endA, startB, endB T) bool {
	return startA < endB && startB < endA
}

// ValidRange проверяет что интервал лежит в сутках и не пустой
func ValidRange(start, end model.TimeOfDay) bool {
	return start.Valid() && end.Valid() && start < end
}

// FirstSlotConflict возвращает первый активный слот того же учителя и дня недели,
// пересекающийся с candidate. Слот с тем же ID не учитывается.
func FirstSlotConflict(candidate *model.ClinicSlot, slots []*model.ClinicSlot) *model.ClinicSlot {
	for _, other := range slots {
		if other.ID == candidate.ID && candidate.ID != 0 {
			continue
		}
		if !other.IsActive || other.TeacherID != candidate.TeacherID || other.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if Overlaps(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			return other
		}
	}
	return nil
}

// FirstSessionConflict возвращает первое неотменённое занятие в ту же дату,
// пересекающееся с интервалом. excludeID исключает само занятие.
func FirstSessionConflict(date time.Time, start, end model.TimeOfDay, sessions []*model.ClinicSession, excludeID int64) *model.ClinicSession {
	day := DateOf(date)
	for _, other := range sessions {
		if other.ID == excludeID || other.IsCanceled {
			continue
		}
		if !DateOf(other.Date).Equal(day) {
			continue
		}
		if Overlaps(start, end, other.StartTime, other.EndTime) {
			return other
		}
	}
	return nil
}
