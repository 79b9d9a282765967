package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/clinic_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// HandleEnroll обрабатывает /enroll <занятие> <курс>. Студент записывается сам,
// сотрудник записывает студента. С одним аргументом предлагает занятия недели кнопками.
func (h *Handlers) HandleEnroll(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/enroll <занятие> <курс> или /enroll <курс>"

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 1 {
		h.offerEnrollableSessions(ctx, b, chatID, user, args[0])
		return
	}
	if len(args) != 2 {
		h.replyError(ctx, b, chatID, "enroll", usage(help))
		return
	}
	sessionID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "enroll", usage(help))
		return
	}
	recordID, err := parseID(args[1])
	if err != nil {
		h.replyError(ctx, b, chatID, "enroll", usage(help))
		return
	}

	h.enroll(ctx, b, chatID, user, sessionID, recordID)
}

func (h *Handlers) enroll(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, sessionID, recordID int64) {
	principal := user.Principal()
	var (
		attendance *model.ClinicAttendance
		err        error
	)
	if principal.IsStudent() {
		attendance, err = h.attendances.RequestAttendance(ctx, principal, sessionID, recordID)
	} else {
		attendance, err = h.attendances.AddAttendance(ctx, principal, sessionID, recordID)
	}
	if err != nil {
		h.replyError(ctx, b, chatID, "enroll", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Запись создана\n\n"+formatAttendance(attendance))
}

// offerEnrollableSessions показывает занятия текущей недели, на которые можно записать курс
func (h *Handlers) offerEnrollableSessions(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, arg string) {
	recordID, err := parseID(arg)
	if err != nil {
		h.replyError(ctx, b, chatID, "enroll", usage("/enroll <курс>"))
		return
	}

	sessions, err := h.attendances.ListEnrollableSessions(ctx, user.Principal(), recordID, time.Now())
	if err != nil {
		h.replyError(ctx, b, chatID, "list enrollable sessions", err)
		return
	}
	if len(sessions) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 На этой неделе нет занятий со свободными местами.")
		return
	}

	markup := sessionPicker(sessions, func(session *model.ClinicSession) string {
		return keyboard.Data(callbackEnroll, session.ID, recordID)
	})
	h.sendKeyboard(ctx, b, chatID, fmt.Sprintf("✍️ Выберите занятие для курса %d:", recordID), markup)
}

// HandleLeave обрабатывает /leave <запись>
func (h *Handlers) HandleLeave(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "delete attendance", usage("/leave <запись>"))
		return
	}
	attendanceID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "delete attendance", usage("/leave <запись>"))
		return
	}

	principal := user.Principal()
	if principal.IsStudent() {
		err = h.attendances.CancelStudentAttendance(ctx, principal, attendanceID)
	} else {
		err = h.attendances.DeleteAttendance(ctx, principal, attendanceID)
	}
	if err != nil {
		h.replyError(ctx, b, chatID, "delete attendance", err)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Запись #%d удалена", attendanceID))
}

// HandleMove обрабатывает /move <занятие> <занятие>, с одним аргументом предлагает куда перенести
func (h *Handlers) HandleMove(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/move <откуда> <куда> или /move <откуда>"

	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 1 {
		h.offerMoveTargets(ctx, b, chatID, user, args[0])
		return
	}
	if len(args) != 2 {
		h.replyError(ctx, b, chatID, "move attendance", usage(help))
		return
	}
	fromID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "move attendance", usage(help))
		return
	}
	toID, err := parseID(args[1])
	if err != nil {
		h.replyError(ctx, b, chatID, "move attendance", usage(help))
		return
	}

	h.move(ctx, b, chatID, user, fromID, toID)
}

func (h *Handlers) move(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, fromID, toID int64) {
	attendance, err := h.attendances.MoveAttendance(ctx, user.Principal(), fromID, toID)
	if err != nil {
		h.replyError(ctx, b, chatID, "move attendance", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "🔁 Запись перенесена\n\n"+formatAttendance(attendance))
}

func (h *Handlers) offerMoveTargets(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, arg string) {
	fromID, err := parseID(arg)
	if err != nil {
		h.replyError(ctx, b, chatID, "move attendance", usage("/move <откуда>"))
		return
	}

	targets, err := h.attendances.ListMoveTargets(ctx, user.Principal(), fromID)
	if err != nil {
		h.replyError(ctx, b, chatID, "list move targets", err)
		return
	}
	if len(targets) == 0 {
		h.sendMessage(ctx, b, chatID, "📭 На этой неделе некуда перенести запись.")
		return
	}

	markup := sessionPicker(targets, func(session *model.ClinicSession) string {
		return keyboard.Data(callbackMove, fromID, session.ID)
	})
	h.sendKeyboard(ctx, b, chatID, fmt.Sprintf("🔁 Куда перенести запись с занятия #%d?", fromID), markup)
}

// HandleMyClinic обрабатывает /myclinic <курс>
func (h *Handlers) HandleMyClinic(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "list course attendances", usage("/myclinic <курс>"))
		return
	}
	recordID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "list course attendances", usage("/myclinic <курс>"))
		return
	}

	attendances, err := h.attendances.ListStudentAttendances(ctx, user.Principal(), recordID)
	if err != nil {
		h.replyError(ctx, b, chatID, "list course attendances", err)
		return
	}
	h.sendMessage(ctx, b, chatID, formatAttendances(fmt.Sprintf("📋 Записи по курсу %d:", recordID), attendances))
}
