package handlers

import (
	"context"
	"log/slog"
	"os"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/logger"
	"crmbot/crm/export"
)

// exportOrders builds the orders workbook and sends it as a document.
func (h *Handlers) exportOrders(ctx context.Context, c tele.Context) error {
	orders, err := h.store.ListOrders(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if len(orders) == 0 {
		return c.Send("There are no orders to export.")
	}

	path, err := export.Orders(orders)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	defer os.Remove(path)

	logger.LogEvent(ctx, logger.SVCOrders, slog.LevelInfo, "orders.exported",
		slog.Int("rows", len(orders)))
	doc := &tele.Document{
		File:     tele.FromDisk(path),
		FileName: "orders.xlsx",
	}
	return c.Send(doc)
}
