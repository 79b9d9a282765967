package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/service"
)

// HandleNote обрабатывает /note <запись> [тема | текст | дз].
// Без текста запускает пошаговый диалог.
func (h *Handlers) HandleNote(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/note <запись> [тема | текст | дз]"

	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	rest := commandRest(update.Message.Text)
	idPart, notePart, _ := strings.Cut(rest, " ")
	attendanceID, err := parseID(idPart)
	if err != nil {
		h.replyError(ctx, b, chatID, "write clinic record", usage(help))
		return
	}

	existing, err := h.records.GetRecord(ctx, user.Principal(), attendanceID)
	switch {
	case model.CodeOf(err) == model.CodeClinicRecordNotFound:
	case err != nil:
		h.replyError(ctx, b, chatID, "write clinic record", err)
		return
	}
	exists := existing != nil

	if strings.TrimSpace(notePart) == "" {
		h.stateManager.Set(update.Message.From.ID, state.UserData{
			State: state.StateNoteTitle,
			Note:  state.NoteDraft{AttendanceID: attendanceID, Update: exists},
		})
		h.sendMessage(ctx, b, chatID, "📝 Введите тему занятия:\n\nОтменить: /cancel")
		return
	}

	title, content, homework := parseNote(notePart)
	h.saveNote(ctx, b, chatID, user.Principal(), state.NoteDraft{
		AttendanceID: attendanceID,
		Title:        title,
		Content:      content,
		Update:       exists,
	}, homework)
}

// continueNoteDialog принимает следующий шаг диалога записи клиники
func (h *Handlers) continueNoteDialog(ctx context.Context, b *bot.Bot, update *models.Update, current state.UserData) {
	chatID := update.Message.Chat.ID
	telegramID := update.Message.From.ID
	text := strings.TrimSpace(update.Message.Text)
	if text == "-" {
		text = ""
	}

	switch current.State {
	case state.StateNoteTitle:
		if text == "" {
			h.sendMessage(ctx, b, chatID, "❌ Тема не может быть пустой. Введите тему занятия:")
			return
		}
		current.Note.Title = text
		current.State = state.StateNoteContent
		h.stateManager.Set(telegramID, current)
		h.sendMessage(ctx, b, chatID, "✍️ Что делали на занятии? (или \"-\" чтобы пропустить)")

	case state.StateNoteContent:
		current.Note.Content = text
		current.State = state.StateNoteHomework
		h.stateManager.Set(telegramID, current)
		h.sendMessage(ctx, b, chatID, "📚 Как с домашним заданием? (или \"-\" чтобы пропустить)")

	case state.StateNoteHomework:
		h.stateManager.Clear(telegramID)
		user, ok := h.requireStaff(ctx, b, update)
		if !ok {
			return
		}
		h.saveNote(ctx, b, chatID, user.Principal(), current.Note, text)

	default:
		h.logger.Warn("Unknown dialog state", zap.String("state", string(current.State)))
		h.stateManager.Clear(telegramID)
	}
}

func (h *Handlers) saveNote(ctx context.Context, b *bot.Bot, chatID int64, principal model.Principal, draft state.NoteDraft, homework string) {
	in := service.RecordInput{
		Title:            draft.Title,
		Content:          draft.Content,
		HomeworkProgress: homework,
	}

	var (
		record *model.ClinicRecord
		err    error
	)
	if draft.Update {
		record, err = h.records.UpdateRecord(ctx, principal, draft.AttendanceID, in)
	} else {
		record, err = h.records.CreateRecord(ctx, principal, draft.AttendanceID, in)
	}
	if err != nil {
		h.replyError(ctx, b, chatID, "write clinic record", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Запись клиники сохранена\n\n"+formatRecord(record))
}

// HandleDeleteNote обрабатывает /delnote <запись>
func (h *Handlers) HandleDeleteNote(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "delete clinic record", usage("/delnote <запись>"))
		return
	}
	attendanceID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "delete clinic record", usage("/delnote <запись>"))
		return
	}

	if err := h.records.DeleteRecord(ctx, user.Principal(), attendanceID); err != nil {
		h.replyError(ctx, b, chatID, "delete clinic record", err)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Запись клиники по посещению #%d удалена", attendanceID))
}

// HandleRecord обрабатывает /record <запись>
func (h *Handlers) HandleRecord(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "get clinic record", usage("/record <запись>"))
		return
	}
	attendanceID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "get clinic record", usage("/record <запись>"))
		return
	}

	record, err := h.records.GetRecord(ctx, user.Principal(), attendanceID)
	if err != nil {
		h.replyError(ctx, b, chatID, "get clinic record", err)
		return
	}
	h.sendMessage(ctx, b, chatID, formatRecord(record))
}
