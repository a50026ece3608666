package handlers

import (
	"context"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/telegram/keyboard"
)

// Main menu button labels.
const (
	BtnAddClient = "➕ Add client"
	BtnClients   = "📋 Clients"
	BtnAddOrder  = "📦 Add order"
	BtnOrders    = "🧾 Orders"
	BtnExport    = "📤 Export"
	BtnDelete    = "🗑 Delete"
	BtnSettings  = "⚙️ Settings"
)

// Settings and delete-chooser callback payloads.
const (
	cbChangePhone        = "change_phone"
	cbChangePassword     = "change_password"
	cbBackToMain         = "back_to_main"
	cbDeleteChooseClient = "delete_choose_client"
	cbDeleteChooseOrder  = "delete_choose_order"
)

// MainMenu builds the authenticated reply keyboard.
func MainMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{BtnAddClient, BtnClients},
		[]string{BtnAddOrder, BtnOrders},
		[]string{BtnExport, BtnDelete},
		[]string{BtnSettings},
	)
}

func settingsMenu() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "Change phone", Data: cbChangePhone}},
		[]keyboard.InlineBtn{{Text: "Change password", Data: cbChangePassword}},
		[]keyboard.InlineBtn{{Text: "Back", Data: cbBackToMain}},
	)
}

func deleteChooser() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "Client", Data: cbDeleteChooseClient},
			{Text: "Order", Data: cbDeleteChooseOrder},
		},
		[]keyboard.InlineBtn{{Text: "Back", Data: cbBackToMain}},
	)
}

// menuDispatch routes authenticated main-menu presses and free-form entry.
func (h *Handlers) menuDispatch(ctx context.Context, c tele.Context, text string) error {
	if !h.requireAccess(ctx, c) {
		return nil
	}
	switch text {
	case BtnAddClient:
		return h.promptAddClient(c)
	case BtnClients:
		return h.listClients(ctx, c)
	case BtnAddOrder:
		return h.promptAddOrder(c)
	case BtnOrders:
		return h.listOrders(ctx, c)
	case BtnExport:
		return h.exportOrders(ctx, c)
	case BtnDelete:
		return c.Send("What do you want to delete?", deleteChooser())
	case BtnSettings:
		return c.Send("Settings", settingsMenu())
	default:
		return h.handleEntry(ctx, c, text)
	}
}
