package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lib/pq"

	"crmbot/core/logger"
	"crmbot/crm/crmerr"
	"crmbot/crm/models"
)

// AddOrder inserts an order for an existing client and returns its id.
// A missing client surfaces as NotFoundError via the foreign key violation.
func (p *Postgres) AddOrder(ctx context.Context, clientID int64, product string, amount int64) (int64, error) {
	var id int64
	err := p.db.GetContext(ctx, &id, `
		INSERT INTO orders (client_id, product, amount) VALUES ($1, $2, $3)
		RETURNING id`, clientID, product, amount)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, &crmerr.NotFoundError{Entity: "client", ID: clientID}
		}
		return 0, &crmerr.StoreError{Op: "orders.add", Err: err}
	}
	logger.LogEvent(ctx, logger.SVCOrders, slog.LevelInfo, "orders.added",
		slog.Int64("order_id", id), slog.Int64("client_id", clientID))
	return id, nil
}

// ListOrders returns all orders joined with their clients, oldest first.
func (p *Postgres) ListOrders(ctx context.Context) ([]models.OrderWithClient, error) {
	var orders []models.OrderWithClient
	err := p.db.SelectContext(ctx, &orders, `
		SELECT o.id, c.name AS client_name, c.phone AS client_phone,
		       c.address AS client_address, o.product, o.amount, o.created_at
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		ORDER BY o.id`)
	if err != nil {
		return nil, &crmerr.StoreError{Op: "orders.list", Err: err}
	}
	return orders, nil
}

// DeleteOrder removes one order and reports whether it existed.
func (p *Postgres) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, &crmerr.StoreError{Op: "orders.delete", Err: err}
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		logger.LogEvent(ctx, logger.SVCOrders, slog.LevelInfo, "orders.deleted",
			slog.Int64("order_id", id))
	}
	return n > 0, nil
}
