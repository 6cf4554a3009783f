// Package memory provides an in-memory implementation of the storage.Store
// interface. State lives for the process lifetime only, matching the
// single-session model the ledger was designed around.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Design-Arena-Gens/splittab/internal/models"
	"github.com/Design-Arena-Gens/splittab/internal/money"
	"github.com/Design-Arena-Gens/splittab/internal/storage"
)

// Ensure MemoryStore implements storage.Store
var _ storage.Store = (*MemoryStore)(nil)

// MemoryStore implements storage.Store with process-lifetime collections.
type MemoryStore struct {
	mu sync.RWMutex

	friends      []models.Friend      // insertion order
	groups       []models.Group       // insertion order
	transactions []models.Transaction // most recent first

	friendIndex map[string]int // friend ID -> index in friends
	groupIndex  map[string]int // group ID -> index in groups
}

// New creates an empty MemoryStore.
func New() *MemoryStore {
	return &MemoryStore{
		friendIndex: make(map[string]int),
		groupIndex:  make(map[string]int),
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// CreateFriend appends a friend, assigning ID and CreatedAt.
func (s *MemoryStore) CreateFriend(_ context.Context, f *models.Friend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}
	if _, exists := s.friendIndex[f.ID]; exists {
		return fmt.Errorf("friend %s already exists", f.ID)
	}
	s.friendIndex[f.ID] = len(s.friends)
	s.friends = append(s.friends, copyFriend(*f))
	return nil
}

// GetFriend retrieves a friend by ID.
func (s *MemoryStore) GetFriend(_ context.Context, id string) (*models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.friendIndex[id]
	if !ok {
		return nil, fmt.Errorf("friend %s: %w", id, storage.ErrNotFound)
	}
	f := copyFriend(s.friends[i])
	return &f, nil
}

// FindFriendByName retrieves a friend by exact, case-sensitive name. With
// duplicate names the earliest-created friend wins.
func (s *MemoryStore) FindFriendByName(_ context.Context, name string) (*models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.friends {
		if s.friends[i].Name == name {
			f := copyFriend(s.friends[i])
			return &f, nil
		}
	}
	return nil, fmt.Errorf("friend named %q: %w", name, storage.ErrNotFound)
}

// ListFriends returns all friends in insertion order.
func (s *MemoryStore) ListFriends(_ context.Context) ([]models.Friend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Friend, len(s.friends))
	for i, f := range s.friends {
		out[i] = copyFriend(f)
	}
	return out, nil
}

// CreateGroup appends a group, assigning ID and CreatedAt.
func (s *MemoryStore) CreateGroup(_ context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}
	if _, exists := s.groupIndex[g.ID]; exists {
		return fmt.Errorf("group %s already exists", g.ID)
	}
	s.groupIndex[g.ID] = len(s.groups)
	s.groups = append(s.groups, copyGroup(*g))
	return nil
}

// GetGroup retrieves a group by ID.
func (s *MemoryStore) GetGroup(_ context.Context, id string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.groupIndex[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	g := copyGroup(s.groups[i])
	return &g, nil
}

// ListGroups returns all groups in insertion order.
func (s *MemoryStore) ListGroups(_ context.Context) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = copyGroup(g)
	}
	return out, nil
}

// CreateTransaction prepends a transaction, assigning ID and CreatedAt.
func (s *MemoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	s.transactions = slices.Insert(s.transactions, 0, copyTransaction(*t))
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *MemoryStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			t := copyTransaction(s.transactions[i])
			return &t, nil
		}
	}
	return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
}

// ListTransactions returns all transactions, most recent first.
func (s *MemoryStore) ListTransactions(_ context.Context) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, len(s.transactions))
	for i, t := range s.transactions {
		out[i] = copyTransaction(t)
	}
	return out, nil
}

// ApplyBalanceDelta adds a signed delta to a friend's balance.
func (s *MemoryStore) ApplyBalanceDelta(_ context.Context, friendID string, delta money.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.friendIndex[friendID]
	if !ok {
		return fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	s.friends[i].Balance = s.friends[i].Balance.Add(delta)
	return nil
}

// Records are value-like: the slices they carry are cloned on every boundary
// crossing so callers never alias store state.

func copyFriend(f models.Friend) models.Friend { return f }

func copyGroup(g models.Group) models.Group {
	g.Members = slices.Clone(g.Members)
	return g
}

func copyTransaction(t models.Transaction) models.Transaction {
	t.Splits = slices.Clone(t.Splits)
	return t
}
