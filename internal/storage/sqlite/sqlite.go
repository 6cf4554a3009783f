// Package sqlite provides a SQLite-backed implementation of the storage.Store
// interface, the injectable persistence adapter for the ledger.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/Design-Arena-Gens/splittab/internal/models"
	"github.com/Design-Arena-Gens/splittab/internal/money"
	"github.com/Design-Arena-Gens/splittab/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateFriend persists a new friend, assigning ID and CreatedAt.
func (s *SQLiteStore) CreateFriend(ctx context.Context, f *models.Friend) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friends (id, name, balance, created_at) VALUES (?, ?, ?, ?)",
		f.ID, f.Name, f.Balance.String(), f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert friend: %w", err)
	}
	return nil
}

// GetFriend retrieves a friend by ID.
func (s *SQLiteStore) GetFriend(ctx context.Context, id string) (*models.Friend, error) {
	return s.scanFriend(s.db.QueryRowContext(ctx,
		"SELECT id, name, balance, created_at FROM friends WHERE id = ?", id,
	), fmt.Sprintf("friend %s", id))
}

// FindFriendByName retrieves a friend by exact, case-sensitive name. With
// duplicate names the earliest-created friend wins.
func (s *SQLiteStore) FindFriendByName(ctx context.Context, name string) (*models.Friend, error) {
	return s.scanFriend(s.db.QueryRowContext(ctx,
		"SELECT id, name, balance, created_at FROM friends WHERE name = ? ORDER BY rowid LIMIT 1", name,
	), fmt.Sprintf("friend named %q", name))
}

func (s *SQLiteStore) scanFriend(row *sql.Row, what string) (*models.Friend, error) {
	f := &models.Friend{}
	var balance string
	err := row.Scan(&f.ID, &f.Name, &balance, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	if f.Balance, err = money.Parse(balance); err != nil {
		return nil, fmt.Errorf("failed to parse balance of %s: %w", what, err)
	}
	return f, nil
}

// ListFriends returns all friends in insertion order.
func (s *SQLiteStore) ListFriends(ctx context.Context) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, balance, created_at FROM friends ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []models.Friend
	for rows.Next() {
		var f models.Friend
		var balance string
		if err := rows.Scan(&f.ID, &f.Name, &balance, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		if f.Balance, err = money.Parse(balance); err != nil {
			return nil, fmt.Errorf("failed to parse balance: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}

// CreateGroup persists a new group and its member list.
func (s *SQLiteStore) CreateGroup(ctx context.Context, g *models.Group) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt == 0 {
		g.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		g.ID, g.Name, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i, ref := range g.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, position, ref) VALUES (?, ?, ?)",
			g.ID, i, ref,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including its ordered member list.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	g := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?", id,
	).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	g.Members, err = s.groupMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *SQLiteStore) groupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ref FROM group_members WHERE group_id = ? ORDER BY position", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}
	return members, nil
}

// ListGroups returns all groups in insertion order.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, created_at FROM groups ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for i := range groups {
		if groups[i].Members, err = s.groupMembers(ctx, groups[i].ID); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// CreateTransaction persists a new transaction and its split list.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, description, amount, date, category, type, paid_by, group_id, ref, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.String(), t.Date, t.Category, string(t.Type),
		t.PaidBy, nullable(t.GroupID), nullable(t.Ref), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	for i, split := range t.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO transaction_splits (transaction_id, position, ref, share) VALUES (?, ?, ?, ?)",
			t.ID, i, split.Ref, split.Share.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, description, amount, date, category, type, paid_by, group_id, ref, created_at
		 FROM transactions WHERE id = ?`, id,
	)
	t, err := scanTransaction(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if t.Splits, err = s.transactionSplits(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *SQLiteStore) transactionSplits(ctx context.Context, transactionID string) ([]models.Split, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT ref, share FROM transaction_splits WHERE transaction_id = ? ORDER BY position", transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction splits: %w", err)
	}
	defer rows.Close()

	var splits []models.Split
	for rows.Next() {
		var split models.Split
		var share string
		if err := rows.Scan(&split.Ref, &share); err != nil {
			return nil, fmt.Errorf("failed to scan transaction split: %w", err)
		}
		if split.Share, err = money.Parse(share); err != nil {
			return nil, fmt.Errorf("failed to parse split share: %w", err)
		}
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transaction splits: %w", err)
	}
	return splits, nil
}

// ListTransactions returns all transactions, most recent first.
func (s *SQLiteStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, description, amount, date, category, type, paid_by, group_id, ref, created_at
		 FROM transactions ORDER BY seq DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	for i := range transactions {
		if transactions[i].Splits, err = s.transactionSplits(ctx, transactions[i].ID); err != nil {
			return nil, err
		}
	}
	return transactions, nil
}

// ApplyBalanceDelta adds a signed delta to a friend's balance inside a
// database transaction.
func (s *SQLiteStore) ApplyBalanceDelta(ctx context.Context, friendID string, delta money.Amount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance string
	err = tx.QueryRowContext(ctx,
		"SELECT balance FROM friends WHERE id = ?", friendID,
	).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("friend %s: %w", friendID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}

	current, err := money.Parse(balance)
	if err != nil {
		return fmt.Errorf("failed to parse balance: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE friends SET balance = ? WHERE id = ?",
		current.Add(delta).String(), friendID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanTransaction(scan func(...any) error) (*models.Transaction, error) {
	t := &models.Transaction{}
	var amount, typ string
	var groupID, ref sql.NullString
	err := scan(&t.ID, &t.Description, &amount, &t.Date, &t.Category, &typ,
		&t.PaidBy, &groupID, &ref, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if t.Amount, err = money.Parse(amount); err != nil {
		return nil, err
	}
	t.Type = models.TransactionType(typ)
	t.GroupID = groupID.String
	t.Ref = ref.String
	return t, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
