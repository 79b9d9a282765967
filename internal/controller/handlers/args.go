package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
)

// commandArgs отделяет аргументы от команды, "/cmd@bot a b" -> ["a", "b"]
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return nil
	}
	return fields[1:]
}

// commandRest текст после команды целиком, для аргументов с пробелами
func commandRest(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseCapacity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid capacity %q", s)
	}
	return n, nil
}

// parseWeekday понимает английские имена, числа и русские сокращения (пн, вт, ...)
func parseWeekday(s string) (time.Weekday, error) {
	if day, ok := russianWeekdays[strings.ToLower(s)]; ok {
		return day, nil
	}
	return schedule.ParseWeekday(s)
}

var russianWeekdays = map[string]time.Weekday{
	"пн": time.Monday,
	"вт": time.Tuesday,
	"ср": time.Wednesday,
	"чт": time.Thursday,
	"пт": time.Friday,
	"сб": time.Saturday,
	"вс": time.Sunday,
}

// slotArgs разбирает "<day> <HH:MM> <HH:MM> <cap>"
type slotArgs struct {
	day      time.Weekday
	start    model.TimeOfDay
	end      model.TimeOfDay
	capacity int
}

func parseSlotArgs(args []string) (slotArgs, error) {
	var out slotArgs
	if len(args) != 4 {
		return out, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}

	var err error
	if out.day, err = parseWeekday(args[0]); err != nil {
		return out, err
	}
	if out.start, err = model.ParseTimeOfDay(args[1]); err != nil {
		return out, err
	}
	if out.end, err = model.ParseTimeOfDay(args[2]); err != nil {
		return out, err
	}
	if out.capacity, err = parseCapacity(args[3]); err != nil {
		return out, err
	}
	return out, nil
}

// parseNote разбирает "<title> | <content> | <homework>", пустые части допустимы
func parseNote(text string) (title, content, homework string) {
	parts := strings.SplitN(text, "|", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
}
