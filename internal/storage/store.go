// Package storage provides abstractions for the entity store.
package storage

import (
	"context"
	"errors"

	"github.com/Design-Arena-Gens/splittab/internal/models"
	"github.com/Design-Arena-Gens/splittab/internal/money"
)

// ErrNotFound is returned when an addressed friend, group, or transaction
// does not exist. Callers match it with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the entity store: the canonical owner of the Friend, Group,
// and Transaction collections. This abstraction allows swapping storage
// backends (in-memory, SQLite, ...) without changing the ledger.
//
// Stores hand out copies of records, never shared references. Create methods
// assign the record's ID (UUID) and CreatedAt; no two live records share an
// ID within a session.
type Store interface {
	// CreateFriend persists a new friend, populating ID and CreatedAt.
	CreateFriend(ctx context.Context, f *models.Friend) error

	// GetFriend retrieves a friend by ID. Returns ErrNotFound if absent.
	GetFriend(ctx context.Context, id string) (*models.Friend, error)

	// FindFriendByName retrieves a friend by exact, case-sensitive name.
	// Returns ErrNotFound if absent.
	FindFriendByName(ctx context.Context, name string) (*models.Friend, error)

	// ListFriends returns all friends in insertion order.
	ListFriends(ctx context.Context) ([]models.Friend, error)

	// CreateGroup persists a new group, populating ID and CreatedAt.
	CreateGroup(ctx context.Context, g *models.Group) error

	// GetGroup retrieves a group by ID. Returns ErrNotFound if absent.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// ListGroups returns all groups in insertion order.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// CreateTransaction persists a new transaction at the head of the
	// collection, populating ID and CreatedAt.
	CreateTransaction(ctx context.Context, t *models.Transaction) error

	// GetTransaction retrieves a transaction by ID. Returns ErrNotFound if
	// absent.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns all transactions, most recent first.
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	// ApplyBalanceDelta adds a signed delta to a friend's running balance.
	// Returns ErrNotFound if the friend does not exist.
	ApplyBalanceDelta(ctx context.Context, friendID string, delta money.Amount) error

	// Close releases any resources held by the store.
	Close() error
}
