// Package models declares the persistent entities of the CRM.
package models

import "time"

// Well-known settings keys. Both rows exist from the first migration and are
// mutable at runtime.
const (
	SettingPasswordHash = "password_hash"
	SettingAdminPhone   = "admin_phone"
)

// User is a Telegram account known to the bot. Created on first successful
// password entry; removed only by an explicit admin delete.
type User struct {
	ID        int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	IsBanned  bool      `db:"is_banned"`
	JoinedAt  time.Time `db:"joined_at"`
	Phone     string    `db:"phone"`
	FullName  string    `db:"full_name"`
}

// Registered reports whether the profile completion gate has been passed.
func (u *User) Registered() bool {
	return u.Phone != "" && u.FullName != ""
}

// Client is a CRM customer record. Address is optional.
type Client struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Phone   string `db:"phone"`
	Address string `db:"address"`
}

// Order references a client and is cascade-deleted with it.
type Order struct {
	ID        int64     `db:"id"`
	ClientID  int64     `db:"client_id"`
	Product   string    `db:"product"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// OrderWithClient is an order row joined with its client, as listed and exported.
type OrderWithClient struct {
	ID            int64     `db:"id"`
	ClientName    string    `db:"client_name"`
	ClientPhone   string    `db:"client_phone"`
	ClientAddress string    `db:"client_address"`
	Product       string    `db:"product"`
	Amount        int64     `db:"amount"`
	CreatedAt     time.Time `db:"created_at"`
}

// Setting is a key/value configuration row.
type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
