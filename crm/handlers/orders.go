package handlers

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/telegram/keyboard"
)

func (h *Handlers) listOrders(ctx context.Context, c tele.Context) error {
	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if len(orders) == 0 {
		return c.Send("No orders yet. " + BtnAddOrder + " to add one.")
	}
	var b strings.Builder
	b.WriteString("Orders:\n")
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. %s: %s x%d (%s)\n",
			i+1, o.ClientName, o.Product, o.Amount, o.CreatedAt.Format("2006-01-02"))
	}
	return c.Send(b.String())
}

func (h *Handlers) chooseOrderToDelete(ctx context.Context, c tele.Context) error {
	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if len(orders) == 0 {
		return c.Send("No orders to delete.")
	}
	buttons := make([]keyboard.InlineBtn, 0, len(orders))
	for _, o := range orders {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: truncateLabel(fmt.Sprintf("%s: %s x%d", o.ClientName, o.Product, o.Amount)),
			Data: fmt.Sprintf("del_order:%d", o.ID),
		})
	}
	return c.Send("Choose the order to delete.", keyboard.InlineButtons(buttons))
}

func (h *Handlers) deleteOrder(ctx context.Context, c tele.Context, id int64) error {
	ok, err := h.store.DeleteOrder(ctx, id)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if !ok {
		return c.Send("The order is already gone.")
	}
	return c.Send("Order deleted.")
}
