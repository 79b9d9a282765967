package controller

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/Freeeeeet/clinic_bot/internal/controller/handlers"
	"github.com/Freeeeeet/clinic_bot/internal/controller/state"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

// NewBotController создаёт telegram бота. Сообщения без команды уходят в диалоги.
func NewBotController(token string, services handlers.Services, logger *zap.Logger) (*BotController, error) {
	h := handlers.NewHandlers(services, state.NewManager(), logger)

	botInstance, err := bot.New(token, bot.WithDefaultHandler(h.HandleTextMessage))
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &BotController{
		bot:      botInstance,
		handlers: h,
		logger:   logger,
	}, nil
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	exact := map[string]bot.HandlerFunc{
		"/start":  c.handlers.HandleStart,
		"/help":   c.handlers.HandleHelp,
		"/cancel": c.handlers.HandleCancel,
	}
	for pattern, handler := range exact {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypeExact, handler)
	}

	// Команды с аргументами
	prefixed := map[string]bot.HandlerFunc{
		"/slots":         c.handlers.HandleSlots,
		"/addslot":       c.handlers.HandleAddSlot,
		"/editslot":      c.handlers.HandleEditSlot,
		"/slotoff":       c.handlers.HandleSlotOff,
		"/sloton":        c.handlers.HandleSlotOn,
		"/delslot":       c.handlers.HandleDeleteSlot,
		"/defaultslot":   c.handlers.HandleDefaultSlot,
		"/opensession":   c.handlers.HandleOpenSession,
		"/emergency":     c.handlers.HandleEmergency,
		"/cancelsession": c.handlers.HandleCancelSession,
		"/attendees":     c.handlers.HandleAttendees,
		"/week":          c.handlers.HandleWeek,
		"/enroll":        c.handlers.HandleEnroll,
		"/leave":         c.handlers.HandleLeave,
		"/move":          c.handlers.HandleMove,
		"/myclinic":      c.handlers.HandleMyClinic,
		"/note":          c.handlers.HandleNote,
		"/delnote":       c.handlers.HandleDeleteNote,
		"/record":        c.handlers.HandleRecord,
	}
	for pattern, handler := range prefixed {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypePrefix, handler)
	}

	// Кнопки выбора занятия для /enroll и /move
	for _, prefix := range handlers.CallbackPrefixes {
		c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, prefix, bot.MatchTypePrefix, c.handlers.HandleCallbackQuery)
	}

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "help", Description: "❓ Справка по командам"},
		{Command: "week", Description: "🗓 Неделя занятий клиники"},
		{Command: "enroll", Description: "✍️ Записаться на занятие"},
		{Command: "move", Description: "🔁 Перенести запись в пределах недели"},
		{Command: "leave", Description: "🗑 Отменить запись"},
		{Command: "myclinic", Description: "📋 Мои записи по курсу"},
		{Command: "slots", Description: "📅 Слоты клиники (учитель)"},
		{Command: "cancel", Description: "❌ Отменить диалог"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
