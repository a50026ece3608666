package handlers

import (
	tele "gopkg.in/telebot.v4"

	tg "crmbot/core/telegram"
)

// Command aliases for the main menu buttons.

func (h *Handlers) onAddClientCommand(c tele.Context) error {
	ctx := tg.BuildContext(c)
	if !h.requireAccess(ctx, c) {
		return nil
	}
	return h.promptAddClient(c)
}

func (h *Handlers) onClientsCommand(c tele.Context) error {
	ctx := tg.BuildContext(c)
	if !h.requireAccess(ctx, c) {
		return nil
	}
	return h.listClients(ctx, c)
}

func (h *Handlers) onAddOrderCommand(c tele.Context) error {
	ctx := tg.BuildContext(c)
	if !h.requireAccess(ctx, c) {
		return nil
	}
	return h.promptAddOrder(c)
}

func (h *Handlers) onExportCommand(c tele.Context) error {
	ctx := tg.BuildContext(c)
	if !h.requireAccess(ctx, c) {
		return nil
	}
	return h.exportOrders(ctx, c)
}
