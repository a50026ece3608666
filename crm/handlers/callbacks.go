package handlers

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	tg "crmbot/core/telegram"
	"crmbot/crm/flows"
)

// splitCallback normalizes a raw callback payload into an action and an
// optional numeric argument. Two token shapes exist: `action:<id>` for record
// deletion and `action_<id>` for moderation; everything else is an exact key.
func splitCallback(data string) (action string, id int64, ok bool) {
	data = strings.TrimPrefix(data, "\f")
	data = strings.TrimSpace(data)

	if action, arg, found := strings.Cut(data, ":"); found {
		n, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return "", 0, false
		}
		return action, n, true
	}
	if i := strings.LastIndex(data, "_"); i > 0 {
		suffix := data[i+1:]
		if n, err := strconv.ParseInt(suffix, 10, 64); err == nil {
			return data[:i], n, true
		}
	}
	return data, 0, true
}

func (h *Handlers) onCallback(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	defer func() { _ = c.Respond() }()

	ctx := tg.BuildContext(c)
	action, id, ok := splitCallback(cb.Data)
	if !ok {
		return nil
	}
	userID := int64(0)
	if sender := c.Sender(); sender != nil {
		userID = sender.ID
	}

	switch action {
	case flows.CbLogin:
		return h.send(c, h.machine.PromptLogin())
	case flows.CbForgotPassword:
		replies, err := h.machine.StartReset(ctx, userID)
		if err != nil {
			return h.replyError(ctx, c, err)
		}
		return h.send(c, replies)
	case flows.CbContinueReset:
		replies, err := h.machine.ResumeReset(ctx, userID)
		if err != nil {
			return h.replyError(ctx, c, err)
		}
		return h.send(c, replies)
	case flows.CbCancelReset:
		return h.send(c, h.machine.CancelReset(userID))

	case cbChangePhone:
		replies, err := h.machine.StartPhoneChange(ctx, userID)
		if err != nil {
			return h.replyError(ctx, c, err)
		}
		return h.send(c, replies)
	case cbChangePassword:
		replies, err := h.machine.StartPasswordChange(ctx, userID)
		if err != nil {
			return h.replyError(ctx, c, err)
		}
		return h.send(c, replies)
	case cbBackToMain:
		if !h.requireAccess(ctx, c) {
			return nil
		}
		return c.Send("Main menu.", MainMenu())

	case cbDeleteChooseClient:
		if !h.requireAccess(ctx, c) {
			return nil
		}
		return h.chooseClientToDelete(ctx, c)
	case cbDeleteChooseOrder:
		if !h.requireAccess(ctx, c) {
			return nil
		}
		return h.chooseOrderToDelete(ctx, c)
	case "del_client":
		if !h.requireAccess(ctx, c) {
			return nil
		}
		return h.deleteClient(ctx, c, id)
	case "del_order":
		if !h.requireAccess(ctx, c) {
			return nil
		}
		return h.deleteOrder(ctx, c, id)

	case "ban":
		if !h.isAdmin(c) {
			return nil
		}
		return h.banUser(ctx, c, id)
	case "unban":
		if !h.isAdmin(c) {
			return nil
		}
		return h.unbanUser(ctx, c, id)
	case "delete":
		if !h.isAdmin(c) {
			return nil
		}
		return h.deleteUser(ctx, c, id)
	}
	return nil
}
