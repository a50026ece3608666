package handlers

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/telegram/keyboard"
)

// maxButtonLabel keeps inline button captions readable on small screens.
const maxButtonLabel = 50

func truncateLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= maxButtonLabel {
		return s
	}
	return string(runes[:maxButtonLabel-1]) + "…"
}

// listClients prints all clients with the 1-based numbers order entry uses.
func (h *Handlers) listClients(ctx context.Context, c tele.Context) error {
	clients, err := h.store.ListClients(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if len(clients) == 0 {
		return c.Send("No clients yet. " + BtnAddClient + " to add one.")
	}
	var b strings.Builder
	b.WriteString("Clients:\n")
	for i, cl := range clients {
		fmt.Fprintf(&b, "%d. %s, %s", i+1, cl.Name, cl.Phone)
		if cl.Address != "" {
			fmt.Fprintf(&b, ", %s", cl.Address)
		}
		b.WriteString("\n")
	}
	return c.Send(b.String())
}

// chooseClientToDelete lists clients as inline delete buttons.
func (h *Handlers) chooseClientToDelete(ctx context.Context, c tele.Context) error {
	clients, err := h.store.ListClients(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if len(clients) == 0 {
		return c.Send("No clients to delete.")
	}
	buttons := make([]keyboard.InlineBtn, 0, len(clients))
	for _, cl := range clients {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: truncateLabel(fmt.Sprintf("%s, %s", cl.Name, cl.Phone)),
			Data: fmt.Sprintf("del_client:%d", cl.ID),
		})
	}
	return c.Send("Choose the client to delete. Their orders are removed too.",
		keyboard.InlineButtons(buttons))
}

func (h *Handlers) deleteClient(ctx context.Context, c tele.Context, id int64) error {
	ok, err := h.store.DeleteClient(ctx, id)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if !ok {
		return c.Send("The client is already gone.")
	}
	return c.Send("Client deleted together with their orders.")
}
