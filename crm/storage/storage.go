// Package storage persists CRM records in PostgreSQL.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"

	"crmbot/crm/models"
)

// Store is the full persistence surface the bot depends on. Consumers should
// declare narrower interfaces over the subset they use.
type Store interface {
	// Settings.
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Users.
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpsertUser(ctx context.Context, u models.User) error
	UpdateUserProfile(ctx context.Context, userID int64, phone, fullName string) error
	SetUserBanned(ctx context.Context, userID int64, banned bool) (bool, error)
	DeleteUser(ctx context.Context, userID int64) (bool, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// Clients.
	AddClient(ctx context.Context, name, phone, address string) (int64, error)
	ListClients(ctx context.Context) ([]models.Client, error)
	DeleteClient(ctx context.Context, id int64) (bool, error)

	// Orders.
	AddOrder(ctx context.Context, clientID int64, product string, amount int64) (int64, error)
	ListOrders(ctx context.Context) ([]models.OrderWithClient, error)
	DeleteOrder(ctx context.Context, id int64) (bool, error)
}

// Postgres implements Store over sqlx.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)
