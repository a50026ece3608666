package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"crmbot/core/logger"
	"crmbot/crm/crmerr"
)

// GetSetting returns the value stored under key, or an empty string when the
// row is absent. An empty value and an absent row are deliberately
// indistinguishable: both mean "not configured".
func (p *Postgres) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := p.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", &crmerr.StoreError{Op: "settings.get", Err: err}
	}
	return value, nil
}

// SetSetting writes the value under key, inserting the row when missing.
func (p *Postgres) SetSetting(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		key, value)
	if err != nil {
		return &crmerr.StoreError{Op: "settings.set", Err: err}
	}
	logger.LogEvent(ctx, logger.DB, slog.LevelDebug, "settings.set",
		slog.String("key", key))
	return nil
}
