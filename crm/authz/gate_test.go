package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmbot/crm/crmerr"
	"crmbot/crm/models"
)

type fakeUsers struct {
	users map[int64]*models.User
	err   error
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func TestCheckRequiresLogin(t *testing.T) {
	g := NewGate(&fakeUsers{})
	err := g.Check(context.Background(), 1)

	var authErr *crmerr.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.False(t, authErr.Banned)
}

func TestCheckPassesForAuthenticatedUser(t *testing.T) {
	g := NewGate(&fakeUsers{users: map[int64]*models.User{}})
	g.Authenticate(1)
	assert.NoError(t, g.Check(context.Background(), 1))
}

func TestBanTakesEffectImmediately(t *testing.T) {
	store := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1},
	}}
	g := NewGate(store)
	g.Authenticate(1)
	require.NoError(t, g.Check(context.Background(), 1))

	// Ban lands in the store; the very next check fails and evicts.
	store.users[1].IsBanned = true
	err := g.Check(context.Background(), 1)
	var authErr *crmerr.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.Banned)
	assert.False(t, g.IsAuthenticated(1))
}

func TestUnbanDoesNotRestoreLogin(t *testing.T) {
	store := &fakeUsers{users: map[int64]*models.User{
		1: {ID: 1, IsBanned: true},
	}}
	g := NewGate(store)
	g.Authenticate(1)
	_ = g.Check(context.Background(), 1)

	store.users[1].IsBanned = false
	err := g.Check(context.Background(), 1)
	var authErr *crmerr.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.False(t, authErr.Banned)
}

func TestCheckPropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	g := NewGate(&fakeUsers{err: boom})
	g.Authenticate(1)
	assert.ErrorIs(t, g.Check(context.Background(), 1), boom)
}

func TestEvictIsIdempotent(t *testing.T) {
	g := NewGate(&fakeUsers{})
	g.Evict(1)
	g.Authenticate(1)
	g.Evict(1)
	g.Evict(1)
	assert.False(t, g.IsAuthenticated(1))
}
