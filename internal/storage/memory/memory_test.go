package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/Design-Arena-Gens/splittab/internal/models"
	"github.com/Design-Arena-Gens/splittab/internal/money"
	"github.com/Design-Arena-Gens/splittab/internal/storage"
)

func TestMemoryStore(t *testing.T) {
	store := New()
	defer store.Close()
	ctx := context.Background()

	t.Run("CreateFriend assigns ID and CreatedAt", func(t *testing.T) {
		f := &models.Friend{Name: "Sarah Chen"}
		if err := store.CreateFriend(ctx, f); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}
		if f.ID == "" {
			t.Error("expected friend ID to be generated")
		}
		if f.CreatedAt == 0 {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("FindFriendByName is exact and case-sensitive", func(t *testing.T) {
		if _, err := store.FindFriendByName(ctx, "Sarah Chen"); err != nil {
			t.Errorf("expected exact match to succeed: %v", err)
		}
		if _, err := store.FindFriendByName(ctx, "sarah chen"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected case mismatch to fail with ErrNotFound, got %v", err)
		}
	})

	t.Run("GetFriend unknown ID", func(t *testing.T) {
		if _, err := store.GetFriend(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("ApplyBalanceDelta accumulates", func(t *testing.T) {
		f := &models.Friend{Name: "Mike Johnson"}
		if err := store.CreateFriend(ctx, f); err != nil {
			t.Fatalf("CreateFriend failed: %v", err)
		}
		if err := store.ApplyBalanceDelta(ctx, f.ID, money.FromCents(3000)); err != nil {
			t.Fatalf("ApplyBalanceDelta failed: %v", err)
		}
		if err := store.ApplyBalanceDelta(ctx, f.ID, money.FromCents(-1250)); err != nil {
			t.Fatalf("ApplyBalanceDelta failed: %v", err)
		}
		got, err := store.GetFriend(ctx, f.ID)
		if err != nil {
			t.Fatalf("GetFriend failed: %v", err)
		}
		if !got.Balance.Equal(money.FromCents(1750)) {
			t.Errorf("balance = %s, want 17.50", got.Balance)
		}

		if err := store.ApplyBalanceDelta(ctx, "nope", money.FromCents(1)); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("transactions are most recent first", func(t *testing.T) {
		for _, desc := range []string{"first", "second", "third"} {
			txn := &models.Transaction{
				Description: desc,
				Amount:      money.FromCents(1000),
				Type:        models.TypeExpense,
				PaidBy:      models.OwnerRef,
			}
			if err := store.CreateTransaction(ctx, txn); err != nil {
				t.Fatalf("CreateTransaction(%s) failed: %v", desc, err)
			}
		}
		txns, err := store.ListTransactions(ctx)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if len(txns) != 3 {
			t.Fatalf("got %d transactions, want 3", len(txns))
		}
		for i, want := range []string{"third", "second", "first"} {
			if txns[i].Description != want {
				t.Errorf("txns[%d] = %s, want %s", i, txns[i].Description, want)
			}
		}
	})

	t.Run("records are copies, not aliases", func(t *testing.T) {
		g := &models.Group{Name: "Roommates", Members: []string{models.OwnerRef, "f1"}}
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		got, err := store.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		got.Members[0] = "mutated"

		again, err := store.GetGroup(ctx, g.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if again.Members[0] != models.OwnerRef {
			t.Error("mutating a returned record leaked into the store")
		}
	})
}
