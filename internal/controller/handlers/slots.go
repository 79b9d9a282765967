package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/Freeeeeet/clinic_bot/internal/model"
	"github.com/Freeeeeet/clinic_bot/internal/service"
)

// teacherArg учитель из необязательного аргумента, по умолчанию сам пользователь
func teacherArg(user *model.User, args []string, index int) (int64, error) {
	if len(args) > index {
		return parseID(args[index])
	}
	if user.Role != model.RoleTeacher {
		return 0, fmt.Errorf("teacher id is required")
	}
	return user.ID, nil
}

// HandleSlots обрабатывает /slots [учитель]
func (h *Handlers) HandleSlots(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	teacherID, err := teacherArg(user, commandArgs(update.Message.Text), 0)
	if err != nil {
		h.replyError(ctx, b, chatID, "list slots", usage("/slots [учитель]"))
		return
	}

	slots, err := h.slots.ListTeacherSlots(ctx, teacherID)
	if err != nil {
		h.replyError(ctx, b, chatID, "list slots", err)
		return
	}
	h.sendMessage(ctx, b, chatID, formatSlots(slots))
}

// HandleAddSlot обрабатывает /addslot <филиал> <день> <HH:MM> <HH:MM> <мест> [учитель]
func (h *Handlers) HandleAddSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/addslot <филиал> <день> <HH:MM> <HH:MM> <мест> [учитель]"

	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) < 5 {
		h.replyError(ctx, b, chatID, "create slot", usage(help))
		return
	}
	branchID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "create slot", usage(help))
		return
	}
	parsed, err := parseSlotArgs(args[1:5])
	if err != nil {
		h.replyError(ctx, b, chatID, "create slot", usage(help))
		return
	}
	teacherID, err := teacherArg(user, args, 5)
	if err != nil {
		h.replyError(ctx, b, chatID, "create slot", usage(help))
		return
	}

	slot, err := h.slots.CreateSlot(ctx, user.Principal(), service.CreateSlotInput{
		TeacherID:       teacherID,
		BranchID:        branchID,
		DayOfWeek:       parsed.day,
		StartTime:       parsed.start,
		EndTime:         parsed.end,
		DefaultCapacity: parsed.capacity,
	})
	if err != nil {
		h.replyError(ctx, b, chatID, "create slot", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Слот создан\n\n"+formatSlot(slot))
}

// HandleEditSlot обрабатывает /editslot <слот> <день> <HH:MM> <HH:MM> <мест>
func (h *Handlers) HandleEditSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/editslot <слот> <день> <HH:MM> <HH:MM> <мест>"

	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 5 {
		h.replyError(ctx, b, chatID, "update slot", usage(help))
		return
	}
	slotID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "update slot", usage(help))
		return
	}
	parsed, err := parseSlotArgs(args[1:])
	if err != nil {
		h.replyError(ctx, b, chatID, "update slot", usage(help))
		return
	}

	slot, err := h.slots.UpdateSlot(ctx, user.Principal(), slotID, service.UpdateSlotInput{
		DayOfWeek:       &parsed.day,
		StartTime:       &parsed.start,
		EndTime:         &parsed.end,
		DefaultCapacity: &parsed.capacity,
	})
	if err != nil {
		h.replyError(ctx, b, chatID, "update slot", err)
		return
	}
	h.sendMessage(ctx, b, chatID, "✅ Слот обновлён\n\n"+formatSlot(slot))
}

// HandleSlotOff обрабатывает /slotoff <слот>
func (h *Handlers) HandleSlotOff(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.toggleSlot(ctx, b, update, false)
}

// HandleSlotOn обрабатывает /sloton <слот>
func (h *Handlers) HandleSlotOn(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.toggleSlot(ctx, b, update, true)
}

func (h *Handlers) toggleSlot(ctx context.Context, b *bot.Bot, update *models.Update, active bool) {
	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	command, operation := "/slotoff", "deactivate slot"
	if active {
		command, operation = "/sloton", "activate slot"
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, operation, usage(command+" <слот>"))
		return
	}
	slotID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, operation, usage(command+" <слот>"))
		return
	}

	var slot *model.ClinicSlot
	if active {
		slot, err = h.slots.Activate(ctx, user.Principal(), slotID)
	} else {
		slot, err = h.slots.Deactivate(ctx, user.Principal(), slotID)
	}
	if err != nil {
		h.replyError(ctx, b, chatID, operation, err)
		return
	}
	h.sendMessage(ctx, b, chatID, formatSlot(slot))
}

// HandleDeleteSlot обрабатывает /delslot <слот>
func (h *Handlers) HandleDeleteSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.replyError(ctx, b, chatID, "delete slot", usage("/delslot <слот>"))
		return
	}
	slotID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "delete slot", usage("/delslot <слот>"))
		return
	}

	if err := h.slots.DeleteSlot(ctx, user.Principal(), slotID); err != nil {
		h.replyError(ctx, b, chatID, "delete slot", err)
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("🗑 Слот #%d удалён", slotID))
}

// HandleDefaultSlot обрабатывает /defaultslot <курс> <слот|none>
func (h *Handlers) HandleDefaultSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	const help = "/defaultslot <курс> <слот|none>"

	user, ok := h.requireStaff(ctx, b, update)
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.replyError(ctx, b, chatID, "assign default slot", usage(help))
		return
	}
	recordID, err := parseID(args[0])
	if err != nil {
		h.replyError(ctx, b, chatID, "assign default slot", usage(help))
		return
	}

	var slotID *int64
	if !strings.EqualFold(args[1], "none") {
		id, err := parseID(args[1])
		if err != nil {
			h.replyError(ctx, b, chatID, "assign default slot", usage(help))
			return
		}
		slotID = &id
	}

	record, err := h.slots.AssignDefaultSlot(ctx, user.Principal(), recordID, slotID)
	if err != nil {
		h.replyError(ctx, b, chatID, "assign default slot", err)
		return
	}

	if record.DefaultClinicSlotID == nil {
		h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ У курса %d больше нет слота по умолчанию", record.ID))
		return
	}
	h.sendMessage(ctx, b, chatID, fmt.Sprintf("✅ Курс %d будет записываться на слот #%d каждую неделю",
		record.ID, *record.DefaultClinicSlotID))
}
