package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/clinic_bot/internal/model"
)

// Callback data кнопок выбора занятия
const (
	callbackEnroll = "enroll" // enroll:session_id:record_id
	callbackMove   = "move"   // move:from_session_id:to_session_id
)

// CallbackPrefixes префиксы callback data, которые обрабатывает HandleCallbackQuery
var CallbackPrefixes = []string{callbackEnroll + ":", callbackMove + ":"}

// sessionPicker клавиатура с кнопкой на каждое занятие, по две в ряд
func sessionPicker(sessions []*model.ClinicSession, data func(*model.ClinicSession) string) *models.InlineKeyboardMarkup {
	buttons := make([]models.InlineKeyboardButton, 0, len(sessions))
	for _, session := range sessions {
		buttons = append(buttons, keyboard.Button(sessionButtonText(session), data(session)))
	}
	return keyboard.NewBuilder().Columns(2, buttons...).Build()
}

func sessionButtonText(session *model.ClinicSession) string {
	return fmt.Sprintf("#%d %s %s %s", session.ID, shortWeekdayNames[session.Date.Weekday()],
		session.Date.Format("02.01"), session.StartTime)
}

// HandleCallbackQuery обрабатывает нажатия на кнопки выбора занятия
func (h *Handlers) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	callback := update.CallbackQuery

	h.logger.Info("Callback received",
		zap.String("data", callback.Data),
		zap.Int64("user_id", callback.From.ID),
	)

	// снимает индикатор загрузки с кнопки
	h.answerCallback(ctx, b, callback.ID, "")

	message := callback.Message.Message
	if message == nil {
		h.logger.Warn("Callback without accessible message", zap.String("data", callback.Data))
		return
	}
	chatID := message.Chat.ID

	action, ids, err := keyboard.ParseData(callback.Data, 2)
	if err != nil {
		h.logger.Warn("Invalid callback data", zap.String("data", callback.Data), zap.Error(err))
		return
	}

	user, err := h.users.GetByTelegramID(ctx, callback.From.ID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", callback.From.ID), zap.Error(err))
		h.sendMessage(ctx, b, chatID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if user == nil {
		h.sendMessage(ctx, b, chatID, "❌ Пользователь не найден. Используйте /start для регистрации.")
		return
	}

	switch action {
	case callbackEnroll:
		h.enroll(ctx, b, chatID, user, ids[0], ids[1])
	case callbackMove:
		h.move(ctx, b, chatID, user, ids[0], ids[1])
	default:
		h.logger.Warn("Unknown callback action", zap.String("action", action))
	}
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, callbackID, text string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	if err != nil {
		h.logger.Warn("Failed to answer callback", zap.Error(err))
	}
}
