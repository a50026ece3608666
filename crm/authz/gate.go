// Package authz decides whether a user may reach the authenticated part of
// the bot. Two independent checks apply: the user must have logged in during
// the current process lifetime, and the user must not be banned.
package authz

import (
	"context"
	"sync"

	"crmbot/crm/crmerr"
	"crmbot/crm/models"
)

// UserGetter is the slice of the store the gate needs. A nil user with a nil
// error means the user is unknown, which the gate treats as not banned.
type UserGetter interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// Gate tracks which users are logged in and enforces bans on every check.
// The authenticated set is process-local: a restart logs everyone out.
type Gate struct {
	store UserGetter

	mu            sync.Mutex
	authenticated map[int64]bool
}

func NewGate(store UserGetter) *Gate {
	return &Gate{store: store, authenticated: make(map[int64]bool)}
}

// Authenticate marks the user as logged in.
func (g *Gate) Authenticate(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.authenticated[userID] = true
}

// IsAuthenticated reports whether the user logged in this process lifetime.
// It does not consult the ban flag; use Check for the full gate.
func (g *Gate) IsAuthenticated(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authenticated[userID]
}

// Evict removes the user from the authenticated set. Evicting an absent user
// is a no-op.
func (g *Gate) Evict(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.authenticated, userID)
}

// Check enforces the full gate: authenticated and not banned. The ban flag is
// read from the store on every call so a ban takes effect immediately, even
// mid-session; a banned user is also dropped from the authenticated set.
func (g *Gate) Check(ctx context.Context, userID int64) error {
	if !g.IsAuthenticated(userID) {
		return &crmerr.AuthorizationError{}
	}
	u, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u != nil && u.IsBanned {
		g.Evict(userID)
		return &crmerr.AuthorizationError{Banned: true}
	}
	return nil
}
