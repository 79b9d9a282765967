package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/render"
	"github.com/Freeeeeet/clinic_bot/internal/schedule"
	"github.com/Freeeeeet/clinic_bot/internal/service"
)

// HandleOpenSession обрабатывает /opensession <слот> <YYYY-MM-DD>
func (h *Handlers) HandleOpenSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/opensession <слот> <YYYY-MM-DD>"

	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.replyError(ctx, b, chatID, "create regular session", usage(help))
		return
	}
	slotID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "create regular session", usage(help))
		return
	}
	date, err := schedule.ParseDate(args[1])
	if err != nil {
		h.replyError(ctx, b, chatID, "create regular session", usage(help))
		return
	}

	session, err := h.sessions.CreateRegularSession(ctx, user.Principal(), slotID, date)
	if err != nil {
		h.replyError(ctx, b, chatID, "create regular session", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Занятие создано\n\n"+formatSession(session))
}

// HandleEmergency обрабатывает /emergency <филиал> <YYYY-MM-DD> <HH:MM> <HH:MM> <мест> [учитель]
func (h *Handlers) HandleEmergency(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/emergency <филиал> <YYYY-MM-DD> <HH:MM> <HH:MM> <мест> [учитель]"

	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) < 5 || len(args) > 6 {
		h.replyError(ctx, b, chatID, "create emergency session", usage(help))
		return
	}

	in, err := parseEmergencyArgs(args)
	if err != nil {
		h.replyError(ctx, b, chatID, "create emergency session", usage(help))
		return
	}

	session, err := h.sessions.CreateEmergencySession(ctx, user.Principal(), in)
	if err != nil {
		h.replyError(ctx, b, chatID, "create emergency session", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Экстренное занятие создано\n\n"+formatSession(session))
}

func parseEmergencyArgs(args []string) (service.EmergencySessionInput, error) {
	var in service.EmergencySessionInput
	var err error

	if in.BranchID, err = parseID(args[0]); err != nil {
		return in, err
	}
	if in.Date, err = schedule.ParseDate(args[1]); err != nil {
		return in, err
	}
	if in.StartTime, err = model.ParseTimeOfDay(args[2]); err != nil {
		return in, err
	}
	if in.EndTime, err = model.ParseTimeOfDay(args[3]); err != nil {
		return in, err
	}
	if in.Capacity, err = parseCapacity(args[4]); err != nil {
		return in, err
	}
	if len(args) == 6 {
		if in.TeacherID, err = parseID(args[5]); err != nil {
			return in, err
		}
	}
	return in, nil
}

// HandleCancelSession обрабатывает /cancelsession <занятие>
func (h *Handlers) HandleCancelSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "cancel session", usage("/cancelsession <занятие>"))
		return
	}
	sessionID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "cancel session", usage("/cancelsession <занятие>"))
		return
	}

	session, err := h.sessions.CancelSession(ctx, user.Principal(), sessionID)
	if err != nil {
		h.replyError(ctx, b, chatID, "cancel session", err)
		return
	}
	h.sendMessage(ctx, b, chatID, formatSession(session)+"\n\nЗаписи студентов сохранены.")
}

// HandleWeek обрабатывает /week [YYYY-MM-DD] [учитель] и присылает неделю картинкой
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/week [YYYY-MM-DD] [учитель]"

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	day := time.Now()
	if len(args) > 0 {
		if parsed, err := schedule.ParseDate(args[0]); err == nil {
			day = parsed
			args = args[1:]
		}
	}
	if len(args) > 1 {
		h.replyError(ctx, b, chatID, "list week", usage(help))
		return
	}
	teacherID, err := teacherArg(user, args, 0)
	if err != nil {
		h.replyError(ctx, b, chatID, "list week", usage(help))
		return
	}

	week, err := h.sessions.ListTeacherWeek(ctx, user.Principal(), teacherID, day)
	if err != nil {
		h.replyError(ctx, b, chatID, "list week", err)
		return
	}

	image, err := render.WeekImage(render.WeekGrid{
		Days:     week.Days,
		Sessions: week.Sessions,
		Enrolled: week.Enrolled,
		Today:    time.Now(),
	})
	if err != nil {
		h.replyError(ctx, b, chatID, "render week", err)
		return
	}
	h.sendPhoto(ctx, b, chatID, image, formatWeekCaption(teacherID, week.Days, week.Sessions))
}

// HandleAttendees обрабатывает /attendees <занятие>
func (h *Handlers) HandleAttendees(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "list attendances", usage("/attendees <занятие>"))
		return
	}
	sessionID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "list attendances", usage("/attendees <занятие>"))
		return
	}

	attendances, err := h.attendances.ListSessionAttendances(ctx, user.Principal(), sessionID)
	if err != nil {
		h.replyError(ctx, b, chatID, "list attendances", err)
		return
	}
	h.sendMessage(ctx, b, chatID, formatAttendances("👥 Записаны на занятие:", attendances))
}
