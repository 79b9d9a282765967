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
)

const staffHelp = "Для учителей и ассистентов:\n" +
	"/slots [учитель] - Слоты клиники\n" +
	"/addslot <филиал> <день> <HH:MM> <HH:MM> <мест> [учитель] - Новый слот\n" +
	"/editslot <слот> <день> <HH:MM> <HH:MM> <мест> - Изменить слот\n" +
	"/slotoff <слот>, /sloton <слот> - Выключить или включить слот\n" +
	"/delslot <слот> - Удалить слот без занятий\n" +
	"/defaultslot <курс> <слот|none> - Слот по умолчанию для курса\n" +
	"/opensession <слот> <YYYY-MM-DD> - Создать занятие из слота\n" +
	"/emergency <филиал> <YYYY-MM-DD> <HH:MM> <HH:MM> <мест> [учитель] - Экстренное занятие\n" +
	"/cancelsession <занятие> - Отменить занятие\n" +
	"/attendees <занятие> - Кто записан\n" +
	"/enroll <занятие> <курс> - Записать студента\n" +
	"/leave <запись> - Удалить запись\n" +
	"/note <запись> [тема | текст | дз] - Запись по итогам занятия\n" +
	"/delnote <запись> - Удалить запись клиники\n"

const studentHelp = "Для студентов:\n" +
	"/week [YYYY-MM-DD] <учитель> - Расписание учителя на неделю\n" +
	"/enroll <занятие> <курс> - Записаться на занятие\n" +
	"/enroll <курс> - Выбрать занятие недели кнопкой\n" +
	"/move <занятие> <занятие> - Перенести запись в пределах недели\n" +
	"/move <занятие> - Выбрать, куда перенести\n" +
	"/leave <запись> - Отменить запись\n" +
	"/myclinic <курс> - Мои записи по курсу\n" +
	"/record <запись> - Запись клиники по занятию\n"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.users.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName, from.LanguageCode)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	welcome := fmt.Sprintf("👋 Привет, %s!\n\n"+
		"Это бот клиники: дополнительные занятия по расписанию учителя.\n"+
		"Ваш id: %d, роль: %s\n\n", user.FirstName, user.ID, roleName(user.Role))

	h.sendMessage(ctx, b, update.Message.Chat.ID, welcome+helpFor(user.Principal()))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "📚 Справка по командам:\n\n"+helpFor(user.Principal()))
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	if !h.stateManager.Clear(update.Message.From.ID) {
		h.sendMessage(ctx, b, update.Message.Chat.ID, "❌ Нет активных операций для отмены.")
		return
	}
	h.sendMessage(ctx, b, update.Message.Chat.ID, "✅ Операция отменена.")
}

// HandleTextMessage продолжает диалог записи клиники
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	telegramID := update.Message.From.ID
	current := h.stateManager.Get(telegramID)
	if current.State == state.StateNone {
		return
	}

	h.logger.Debug("Dialog step",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(current.State)),
	)

	h.continueNoteDialog(ctx, b, update, current)
}

func helpFor(principal model.Principal) string {
	if principal.IsStaff() {
		return staffHelp + "\n/week [YYYY-MM-DD] [учитель] - Неделя занятий картинкой\n/cancel - Отменить диалог"
	}
	return studentHelp + "\n/cancel - Отменить диалог"
}

func roleName(role model.Role) string {
	switch role {
	case model.RoleTeacher:
		return "учитель"
	case model.RoleAssistant:
		return "ассистент"
	default:
		return "студент"
	}
}
