package handlers

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"crmbot/core/logger"
	tg "crmbot/core/telegram"
	"crmbot/core/telegram/keyboard"
	"crmbot/crm/models"
)

// onUsers lists the user directory with moderation buttons. Admin only.
func (h *Handlers) onUsers(c tele.Context) error {
	ctx := tg.BuildContext(c)
	if !h.isAdmin(c) {
		return c.Send("This command is for the administrator only.")
	}
	users, err := h.store.ListUsers(ctx)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if len(users) == 0 {
		return c.Send("No users yet.")
	}
	for _, u := range users {
		if err := c.Send(userLine(u), moderationButtons(u)); err != nil {
			return err
		}
	}
	return nil
}

func userLine(u models.User) string {
	name := u.FullName
	if name == "" {
		name = u.FirstName + " " + u.LastName
	}
	line := fmt.Sprintf("%s (id %d)", name, u.ID)
	if u.Username != "" {
		line += " @" + u.Username
	}
	if u.Phone != "" {
		line += ", " + u.Phone
	}
	if u.IsBanned {
		line += " [banned]"
	}
	return line
}

func moderationButtons(u models.User) *tele.ReplyMarkup {
	banBtn := keyboard.InlineBtn{Text: "Ban", Data: fmt.Sprintf("ban_%d", u.ID)}
	if u.IsBanned {
		banBtn = keyboard.InlineBtn{Text: "Unban", Data: fmt.Sprintf("unban_%d", u.ID)}
	}
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		banBtn,
		{Text: "Delete", Data: fmt.Sprintf("delete_%d", u.ID)},
	})
}

// banUser flips the flag and revokes the session immediately.
func (h *Handlers) banUser(ctx context.Context, c tele.Context, id int64) error {
	ok, err := h.store.SetUserBanned(ctx, id, true)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if !ok {
		return c.Send("No such user.")
	}
	h.gate.Evict(id)
	logger.LogEvent(ctx, logger.SVCUsers, slog.LevelInfo, "moderation.banned",
		slog.Int64("target_id", id))
	return c.Send(fmt.Sprintf("User %d banned.", id))
}

// unbanUser lifts the ban. The user still has to log in again.
func (h *Handlers) unbanUser(ctx context.Context, c tele.Context, id int64) error {
	ok, err := h.store.SetUserBanned(ctx, id, false)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if !ok {
		return c.Send("No such user.")
	}
	logger.LogEvent(ctx, logger.SVCUsers, slog.LevelInfo, "moderation.unbanned",
		slog.Int64("target_id", id))
	return c.Send(fmt.Sprintf("User %d unbanned. They need to log in again.", id))
}

// deleteUser removes the row for good.
func (h *Handlers) deleteUser(ctx context.Context, c tele.Context, id int64) error {
	ok, err := h.store.DeleteUser(ctx, id)
	if err != nil {
		return h.replyError(ctx, c, err)
	}
	if !ok {
		return c.Send("No such user.")
	}
	h.gate.Evict(id)
	logger.LogEvent(ctx, logger.SVCUsers, slog.LevelInfo, "moderation.deleted",
		slog.Int64("target_id", id))
	return c.Send(fmt.Sprintf("User %d deleted.", id))
}
