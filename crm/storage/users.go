package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"crmbot/core/logger"
	"crmbot/crm/crmerr"
	"crmbot/crm/models"
)

// GetUser returns the user row, or (nil, nil) when the user is unknown.
func (p *Postgres) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	var u models.User
	err := p.db.GetContext(ctx, &u, `
		SELECT user_id, username, first_name, last_name, is_banned, joined_at, phone, full_name
		FROM users WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &crmerr.StoreError{Op: "users.get", Err: err}
	}
	return &u, nil
}

// UpsertUser inserts the user or refreshes the Telegram identity fields of an
// existing row. Profile fields (phone, full name) and the ban flag are left
// untouched on conflict.
func (p *Postgres) UpsertUser(ctx context.Context, u models.User) error {
	if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now().UTC()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO users (user_id, username, first_name, last_name, is_banned, joined_at, phone, full_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name`,
		u.ID, u.Username, u.FirstName, u.LastName, u.IsBanned, u.JoinedAt, u.Phone, u.FullName)
	if err != nil {
		return &crmerr.StoreError{Op: "users.upsert", Err: err}
	}
	logger.LogEvent(ctx, logger.SVCUsers, slog.LevelDebug, "users.upsert",
		slog.Int64("user_id", u.ID))
	return nil
}

// UpdateUserProfile stores the registration fields for an existing user.
func (p *Postgres) UpdateUserProfile(ctx context.Context, userID int64, phone, fullName string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET phone = $2, full_name = $3 WHERE user_id = $1`,
		userID, phone, fullName)
	if err != nil {
		return &crmerr.StoreError{Op: "users.update_profile", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &crmerr.NotFoundError{Entity: "user", ID: userID}
	}
	logger.LogEvent(ctx, logger.SVCUsers, slog.LevelInfo, "users.profile_updated",
		slog.Int64("user_id", userID))
	return nil
}

// SetUserBanned flips the ban flag and reports whether a row was touched.
func (p *Postgres) SetUserBanned(ctx context.Context, userID int64, banned bool) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET is_banned = $2 WHERE user_id = $1`, userID, banned)
	if err != nil {
		return false, &crmerr.StoreError{Op: "users.set_banned", Err: err}
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logger.LogEvent(ctx, logger.SVCUsers, slog.LevelInfo, "users.ban_changed",
			slog.Int64("user_id", userID), slog.Bool("banned", banned))
	}
	return n > 0, nil
}

// DeleteUser removes the user row and reports whether it existed.
func (p *Postgres) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return false, &crmerr.StoreError{Op: "users.delete", Err: err}
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logger.LogEvent(ctx, logger.SVCUsers, slog.LevelInfo, "users.deleted",
			slog.Int64("user_id", userID))
	}
	return n > 0, nil
}

// ListUsers returns all users ordered by join time.
func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := p.db.SelectContext(ctx, &users, `
		SELECT user_id, username, first_name, last_name, is_banned, joined_at, phone, full_name
		FROM users ORDER BY joined_at, user_id`)
	if err != nil {
		return nil, &crmerr.StoreError{Op: "users.list", Err: err}
	}
	return users, nil
}
