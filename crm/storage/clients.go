package storage

import (
	"context"
	"log/slog"

	"crmbot/core/logger"
	"crmbot/crm/crmerr"
	"crmbot/crm/models"
)

// AddClient inserts a client and returns its id.
func (p *Postgres) AddClient(ctx context.Context, name, phone, address string) (int64, error) {
	var id int64
	err := p.db.GetContext(ctx, &id, `
		INSERT INTO clients (name, phone, address) VALUES ($1, $2, $3)
		RETURNING id`, name, phone, address)
	if err != nil {
		return 0, &crmerr.StoreError{Op: "clients.add", Err: err}
	}
	logger.LogEvent(ctx, logger.SVCClients, slog.LevelInfo, "clients.added",
		slog.Int64("client_id", id))
	return id, nil
}

// ListClients returns all clients in insertion order. Listing position is the
// 1-based index order entry refers to, so the ordering must be stable.
func (p *Postgres) ListClients(ctx context.Context) ([]models.Client, error) {
	var clients []models.Client
	err := p.db.SelectContext(ctx, &clients,
		`SELECT id, name, phone, address FROM clients ORDER BY id`)
	if err != nil {
		return nil, &crmerr.StoreError{Op: "clients.list", Err: err}
	}
	return clients, nil
}

// DeleteClient removes a client and, through the foreign key cascade, all of
// its orders. It reports whether the client existed.
func (p *Postgres) DeleteClient(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return false, &crmerr.StoreError{Op: "clients.delete", Err: err}
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logger.LogEvent(ctx, logger.SVCClients, slog.LevelInfo, "clients.deleted",
			slog.Int64("client_id", id))
	}
	return n > 0, nil
}
