package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// WeekPolicy определяет, с какого дня начинается неделя платформы.
// От неё зависит перенос записи "в пределах недели" и целевая неделя пакетной генерации.
type WeekPolicy struct {
	Start time.Weekday
}

// DefaultWeekPolicy неделя с понедельника
func DefaultWeekPolicy() WeekPolicy {
	return WeekPolicy{Start: time.Monday}
}

// WeekStart возвращает первый день недели, содержащей t
func (p WeekPolicy) WeekStart(t time.Time) time.Time {
	day := DateOf(t)
	offset := (int(day.Weekday()) - int(p.Start) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// SameWeek проверяет что обе даты попадают в одну неделю
func (p WeekPolicy) SameWeek(a, b time.Time) bool {
	return p.WeekStart(a).Equal(p.WeekStart(b))
}

// DateInWeek возвращает дату с днём недели day в неделе, содержащей anyDay
func (p WeekPolicy) DateInWeek(anyDay time.Time, day time.Weekday) time.Time {
	offset := (int(day) - int(p.Start) + 7) % 7
	return p.WeekStart(anyDay).AddDate(0, 0, offset)
}

// Days возвращает семь дат недели, содержащей anyDay, начиная с первого дня
func (p WeekPolicy) Days(anyDay time.Time) []time.Time {
	start := p.WeekStart(anyDay)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// DateOf отбрасывает время суток и возвращает календарную дату в UTC
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate разбирает дату формата YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate форматирует дату как YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekday принимает имя дня (MONDAY, mon) или число 0-6, где 0 = воскресенье
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if day, ok := weekdayNames[s]; ok {
		return day, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}
