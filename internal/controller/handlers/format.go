package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

var shortWeekdayNames = map[time.Weekday]string{
	time.Monday:    "Пн",
	time.Tuesday:   "Вт",
	time.Wednesday: "Ср",
	time.Thursday:  "Чт",
	time.Friday:    "Пт",
	time.Saturday:  "Сб",
	time.Sunday:    "Вс",
}

func formatSlot(slot *model.ClinicSlot) string {
	status := "✅"
	if !slot.IsActive {
		status = "⏸"
	}
	return fmt.Sprintf("%s #%d %s %s-%s, мест: %d, филиал %d",
		status, slot.ID, weekdayNames[slot.DayOfWeek], slot.StartTime, slot.EndTime,
		slot.DefaultCapacity, slot.BranchID)
}

func formatSlots(slots []*model.ClinicSlot) string {
	if len(slots) == 0 {
		return "📭 Слотов клиники пока нет.\n\nДобавить: /addslot <филиал> <день> <HH:MM> <HH:MM> <мест>"
	}

	var sb strings.Builder
	sb.WriteString("🗓 Слоты клиники:\n\n")
	for _, slot := range slots {
		sb.WriteString(formatSlot(slot))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatSession(session *model.ClinicSession) string {
	kind := "📘"
	if !session.IsRegular() {
		kind = "🚑"
	}
	text := fmt.Sprintf("%s Занятие #%d\n📅 %s (%s) %s-%s\n👥 Мест: %d",
		kind, session.ID, session.Date.Format("02.01.2006"), weekdayNames[session.Date.Weekday()],
		session.StartTime, session.EndTime, session.Capacity)
	if session.IsCanceled {
		text += "\n🚫 Отменено"
	}
	return text
}

func formatAttendance(attendance *model.ClinicAttendance) string {
	text := fmt.Sprintf("🎫 Запись #%d (курс %d)", attendance.ID, attendance.StudentCourseRecordID)
	if attendance.Session != nil {
		text += "\n" + formatSession(attendance.Session)
	}
	return text
}

func formatAttendances(title string, attendances []*model.ClinicAttendance) string {
	if len(attendances) == 0 {
		return title + "\n\n📭 Записей нет."
	}

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, a := range attendances {
		sb.WriteString("\n")
		sb.WriteString(formatAttendance(a))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatRecord(record *model.ClinicRecord) string {
	text := fmt.Sprintf("📝 %s", record.Title)
	if record.Content != "" {
		text += "\n\n" + record.Content
	}
	if record.HomeworkProgress != "" {
		text += "\n\n📚 Домашнее задание: " + record.HomeworkProgress
	}
	return text
}

func formatWeekCaption(teacherID int64, days []time.Time, sessions []*model.ClinicSession) string {
	canceled := 0
	for _, s := range sessions {
		if s.IsCanceled {
			canceled++
		}
	}
	return fmt.Sprintf("🗓 Учитель %d, неделя %s - %s\nЗанятий: %d, отменено: %d",
		teacherID, schedule.FormatDate(days[0]), schedule.FormatDate(days[len(days)-1]),
		len(sessions), canceled)
}
