// Package handlers binds the Telegram endpoints to the CRM flows, the record
// entry grammar, moderation and export.
package handlers

import (
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/logger"
	tg "crmbot/core/telegram"
	"crmbot/crm/authz"
	"crmbot/crm/crmerr"
	"crmbot/crm/flows"
	"crmbot/crm/storage"
)

// Options wires the handler set.
type Options struct {
	AdminID       int64
	AdminUsername string
}

// Handlers owns every bot endpoint.
type Handlers struct {
	opts    Options
	store   storage.Store
	machine *flows.Machine
	gate    *authz.Gate
}

func New(opts Options, store storage.Store, machine *flows.Machine, gate *authz.Gate) *Handlers {
	return &Handlers{opts: opts, store: store, machine: machine, gate: gate}
}

// Routes lists every endpoint the bot handles.
func (h *Handlers) Routes() []tg.Route {
	return []tg.Route{
		{Endpoint: "/start", Handler: h.onStart},
		{Endpoint: "/add_client", Handler: h.onAddClientCommand},
		{Endpoint: "/clients", Handler: h.onClientsCommand},
		{Endpoint: "/add_order", Handler: h.onAddOrderCommand},
		{Endpoint: "/export", Handler: h.onExportCommand},
		{Endpoint: "/users", Handler: h.onUsers},
		{Endpoint: tele.OnText, Handler: h.onText},
		{Endpoint: tele.OnCallback, Handler: h.onCallback},
	}
}

// Commands describes the command menu shown by Telegram clients.
func (h *Handlers) Commands() []tele.Command {
	return []tele.Command{
		{Text: "start", Description: "Start or show the main menu"},
		{Text: "add_client", Description: "Add a client"},
		{Text: "clients", Description: "List clients"},
		{Text: "add_order", Description: "Add an order"},
		{Text: "export", Description: "Export orders to Excel"},
	}
}

func (h *Handlers) onStart(c tele.Context) error {
	ctx := tg.BuildContext(c)
	replies, err := h.machine.HandleStart(ctx, eventFrom(c))
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	return h.send(c, replies)
}

func (h *Handlers) onText(c tele.Context) error {
	ctx := tg.BuildContext(c)
	ev := eventFrom(c)

	replies, handled, err := h.machine.HandleText(ctx, ev)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if handled {
		return h.send(c, replies)
	}
	return h.menuDispatch(ctx, c, ev.Text)
}

func eventFrom(c tele.Context) flows.Event {
	sender := c.Sender()
	ev := flows.Event{Text: c.Text()}
	if sender != nil {
		ev.UserID = sender.ID
		ev.Username = sender.Username
		ev.FirstName = sender.FirstName
		ev.LastName = sender.LastName
	}
	return ev
}

func (h *Handlers) send(c tele.Context, replies []flows.Reply) error {
	for _, r := range replies {
		var err error
		if r.Markup != nil {
			err = c.Send(r.Text, r.Markup)
		} else {
			err = c.Send(r.Text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// requireAccess runs the full authorization gate and answers rejections.
// It returns true when the caller may proceed.
func (h *Handlers) requireAccess(ctx context.Context, c tele.Context) bool {
	sender := c.Sender()
	if sender == nil {
		return false
	}
	err := h.gate.Check(ctx, sender.ID)
	if err == nil {
		return true
	}
	_ = h.replyError(ctx, c, err)
	return false
}

func (h *Handlers) isAdmin(c tele.Context) bool {
	sender := c.Sender()
	return sender != nil && sender.ID == h.opts.AdminID
}

// replyError maps the error taxonomy onto user-facing messages. Store and
// unknown failures are logged and answered generically.
func (h *Handlers) replyError(ctx context.Context, c tele.Context, err error) error {
	var (
		verr *crmerr.ValidationError
		aerr *crmerr.AuthorizationError
		nerr *crmerr.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return c.Send(verr.Reason)
	case errors.As(err, &aerr):
		if aerr.Banned {
			return c.Send("You are banned.")
		}
		return c.Send("Please log in first. Send /start.")
	case errors.As(err, &nerr):
		return c.Send("Record not found. It may have been deleted already.")
	default:
		logger.LogEvent(ctx, logger.BOT, slog.LevelError, "handler.failed",
			slog.String("err", err.Error()))
		return c.Send("Something went wrong. Please try again.")
	}
}
