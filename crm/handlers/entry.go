package handlers

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"crmbot/crm/crmerr"
	"crmbot/crm/entry"
)

// handleEntry is the authenticated free-form fallback: one comma-separated
// line adds either a client or an order.
func (h *Handlers) handleEntry(ctx context.Context, c tele.Context, text string) error {
	rec, err := entry.Parse(text)
	if err != nil {
		return h.replyError(ctx, c, err)
	}

	if rec.Client != nil {
		id, err := h.store.AddClient(ctx, rec.Client.Name, rec.Client.Phone, rec.Client.Address)
		if err != nil {
			return h.replyError(ctx, c, err)
		}
		return c.Send(fmt.Sprintf("Client #%d %s added.", id, rec.Client.Name))
	}

	// Order: the 1-based index refers to the current client listing.
	clients, err := h.store.ListClients(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if rec.Order.ClientIndex > len(clients) {
		return h.replyError(ctx, c, &crmerr.ValidationError{
			Reason: fmt.Sprintf("client number %d is out of range, there are %d clients", rec.Order.ClientIndex, len(clients)),
		})
	}
	client := clients[rec.Order.ClientIndex-1]
	id, err := h.store.AddOrder(ctx, client.ID, rec.Order.Product, rec.Order.Amount)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	return c.Send(fmt.Sprintf("Order #%d for %s added.", id, client.Name))
}

func (h *Handlers) promptAddClient(c tele.Context) error {
	return c.Send("Send the client as \"Name, phone\" or \"Name, phone, address\".")
}

func (h *Handlers) promptAddOrder(c tele.Context) error {
	return c.Send("Send the order as \"client number, product, amount\".\nUse " + BtnClients + " to see client numbers.")
}
