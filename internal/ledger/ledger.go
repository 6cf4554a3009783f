// Package ledger implements the balance ledger engine: it turns a stream of
// expense and payment events into per-friend running balances, derives group
// balances from transaction history, and reconciles balances through
// settle-up payments.
//
// Every transaction produces a vector of (participant, signed delta) pairs
// relative to the owner as the fixed observer, applied in one pass:
//
//   - expense paid by the owner: each split participant owes their share more
//   - expense paid by a friend with the owner in the split: the payer's
//     balance drops by the owner's share
//   - expense among friends only: no balance change (neither side's position
//     against the owner moves)
//   - payment: the full amount transfers between the owner and the single
//     counterpart
//
// All mutations run under a single lock, so one operation always completes
// before another observes the store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/Design-Arena-Gens/splittab/internal/models"
	"github.com/Design-Arena-Gens/splittab/internal/money"
	"github.com/Design-Arena-Gens/splittab/internal/split"
	"github.com/Design-Arena-Gens/splittab/internal/storage"
)

// Ledger is the session context object: it owns access to the entity store
// and serializes all balance mutations.
type Ledger struct {
	mu     sync.Mutex
	store  storage.Store
	policy split.RemainderPolicy

	// refs maps submission idempotency keys to transaction IDs, so a retried
	// submission returns the stored record instead of re-applying deltas.
	refs map[string]string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithRemainderPolicy sets where split rounding remainders go. The default
// is split.RemainderDrift: up to one cent per transaction is left
// unallocated.
func WithRemainderPolicy(p split.RemainderPolicy) Option {
	return func(l *Ledger) { l.policy = p }
}

// New creates a Ledger backed by the given store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		policy: split.RemainderDrift,
		refs:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Participant names one person sharing a cost in a submission, with the
// strategy-specific inputs. Percent is read by the percentage strategy,
// Weight by the shares strategy.
type Participant struct {
	Name    string
	Percent float64
	Weight  int64
}

// SubmitRequest describes a transaction to record. Participants are named by
// display name; models.OwnerName denotes the local user.
type SubmitRequest struct {
	Description string
	Amount      money.Amount
	Date        string // YYYY-MM-DD; today if empty
	Category    string
	Type        models.TransactionType
	PaidBy      string
	SplitWith   []Participant
	Strategy    split.Strategy // expenses only; split.Equal if empty
	GroupID     string
	Ref         string // optional idempotency key
}

// SubmitTransaction validates the request, computes shares, records the
// transaction, and applies the balance deltas. The returned transaction is
// the stored record.
//
// Split participant names that resolve to no friend are skipped and reported:
// the transaction is still recorded, the remaining valid deltas are still
// applied, and the joined UnknownFriendError values come back alongside the
// non-nil transaction. All other errors are fatal and record nothing.
func (l *Ledger) SubmitTransaction(ctx context.Context, req SubmitRequest) (*models.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if req.Ref != "" {
		if id, ok := l.refs[req.Ref]; ok {
			slog.Debug("duplicate submission suppressed", "ref", req.Ref, "transaction_id", id)
			return l.store.GetTransaction(ctx, id)
		}
	}

	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown transaction type %q", split.ErrInvalidSplit, req.Type)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", split.ErrInvalidSplit, req.Amount)
	}
	if req.Type == models.TypePayment && len(req.SplitWith) != 1 {
		return nil, fmt.Errorf("%w: a payment needs exactly one counterpart, got %d", split.ErrInvalidSplit, len(req.SplitWith))
	}
	if req.GroupID != "" {
		if _, err := l.store.GetGroup(ctx, req.GroupID); err != nil {
			return nil, err
		}
	}

	payerRef, err := l.resolveRef(ctx, req.PaidBy)
	if err != nil {
		return nil, err
	}

	// Resolve split names to participant refs. Unresolved names keep their
	// raw name as a placeholder ref so they still count toward the share
	// divisor, then drop out before storage and delta application.
	var unknown []error
	dropped := make(map[string]bool)
	participants := make([]split.Participant, 0, len(req.SplitWith))
	for _, p := range req.SplitWith {
		ref, err := l.resolveRef(ctx, p.Name)
		if err != nil {
			var unknownErr *UnknownFriendError
			if !errors.As(err, &unknownErr) {
				return nil, err
			}
			slog.Warn("skipping unknown split participant", "name", p.Name)
			unknown = append(unknown, err)
			ref = p.Name
			dropped[ref] = true
		}
		participants = append(participants, split.Participant{
			Ref:     ref,
			Percent: p.Percent,
			Weight:  p.Weight,
		})
	}

	var splits []models.Split
	switch req.Type {
	case models.TypePayment:
		if !dropped[participants[0].Ref] {
			splits = []models.Split{{Ref: participants[0].Ref, Share: req.Amount.RoundCents()}}
		}
	case models.TypeExpense:
		strategy := req.Strategy
		if strategy == "" {
			strategy = split.Equal
		}
		shares, err := split.Compute(req.Amount, payerRef, participants, strategy, l.policy)
		if err != nil {
			return nil, err
		}
		for _, s := range shares {
			if dropped[s.Ref] {
				continue
			}
			splits = append(splits, models.Split{Ref: s.Ref, Share: s.Amount})
		}
	}

	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	txn := &models.Transaction{
		Description: req.Description,
		Amount:      req.Amount.RoundCents(),
		Date:        date,
		Category:    req.Category,
		Type:        req.Type,
		PaidBy:      payerRef,
		Splits:      splits,
		GroupID:     req.GroupID,
		Ref:         req.Ref,
	}

	// The transaction is appended even when it yields no deltas; the
	// activity feed shows every event.
	if err := l.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}
	if req.Ref != "" {
		l.refs[req.Ref] = txn.ID
	}

	if err := l.applyDeltas(ctx, txn); err != nil {
		return nil, err
	}

	slog.Info("transaction recorded",
		"transaction_id", txn.ID,
		"type", txn.Type,
		"amount", txn.Amount,
		"paid_by", txn.PaidBy,
		"splits", len(txn.Splits),
	)
	return txn, errors.Join(unknown...)
}

// SettleUp reconciles a friend's balance to exactly zero. It synthesizes a
// payment for the absolute balance, directed by the balance sign, runs it
// through the ordinary transaction pipeline, then applies an authoritative
// residual correction so the post-condition holds regardless of any rounding
// drift accumulated by earlier splits. A zero balance is a no-op.
func (l *Ledger) SettleUp(ctx context.Context, friendID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	friend, err := l.store.GetFriend(ctx, friendID)
	if err != nil {
		return err
	}
	if friend.Balance.IsZero() {
		return nil
	}

	txn := &models.Transaction{
		Description: "Settlement",
		Amount:      friend.Balance.Abs().RoundCents(),
		Date:        time.Now().Format("2006-01-02"),
		Category:    models.CategoryPayment,
		Type:        models.TypePayment,
	}
	if friend.Balance.IsPositive() {
		txn.PaidBy = friend.ID
		txn.Splits = []models.Split{{Ref: models.OwnerRef, Share: txn.Amount}}
	} else {
		txn.PaidBy = models.OwnerRef
		txn.Splits = []models.Split{{Ref: friend.ID, Share: txn.Amount}}
	}

	if err := l.store.CreateTransaction(ctx, txn); err != nil {
		return fmt.Errorf("record settlement: %w", err)
	}
	if err := l.applyDeltas(ctx, txn); err != nil {
		return err
	}

	// Authoritative zeroing: the payment delta already lands on zero in
	// exact arithmetic, but the stored balance is the source of truth, so
	// any residual is corrected here.
	settled, err := l.store.GetFriend(ctx, friendID)
	if err != nil {
		return err
	}
	if !settled.Balance.IsZero() {
		if err := l.store.ApplyBalanceDelta(ctx, friendID, settled.Balance.Neg()); err != nil {
			return err
		}
	}

	slog.Info("settled up", "friend_id", friendID, "amount", txn.Amount, "paid_by", txn.PaidBy)
	return nil
}

// AddFriend creates a friend with a zero balance.
func (l *Ledger) AddFriend(ctx context.Context, name string) (*models.Friend, error) {
	if name == "" || name == models.OwnerName {
		return nil, fmt.Errorf("invalid friend name %q", name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	friend := &models.Friend{Name: name}
	if err := l.store.CreateFriend(ctx, friend); err != nil {
		return nil, err
	}
	slog.Info("friend created", "friend_id", friend.ID, "name", name)
	return friend, nil
}

// AddGroup creates a group from member display names. Every member must be
// the owner or an existing friend.
func (l *Ledger) AddGroup(ctx context.Context, name string, memberNames []string) (*models.Group, error) {
	if name == "" {
		return nil, fmt.Errorf("invalid group name %q", name)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	members := make([]string, 0, len(memberNames))
	for _, m := range memberNames {
		ref, err := l.resolveRef(ctx, m)
		if err != nil {
			return nil, err
		}
		members = append(members, ref)
	}

	group := &models.Group{Name: name, Members: members}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}
	slog.Info("group created", "group_id", group.ID, "name", name, "members", len(members))
	return group, nil
}

// ListFriends returns a snapshot of all friends in insertion order.
func (l *Ledger) ListFriends(ctx context.Context) ([]models.Friend, error) {
	return l.store.ListFriends(ctx)
}

// ListGroups returns a snapshot of all groups in insertion order.
func (l *Ledger) ListGroups(ctx context.Context) ([]models.Group, error) {
	return l.store.ListGroups(ctx)
}

// ListTransactions returns a snapshot of all transactions, most recent first.
func (l *Ledger) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	return l.store.ListTransactions(ctx)
}

// FriendTransactions returns a lazy sequence of the transactions a friend
// appears in, as payer or split participant, most recent first. The name
// may be models.OwnerName.
func (l *Ledger) FriendTransactions(ctx context.Context, name string) (iter.Seq[models.Transaction], error) {
	ref, err := l.resolveRef(ctx, name)
	if err != nil {
		return nil, err
	}
	txns, err := l.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(models.Transaction) bool) {
		for _, t := range txns {
			if _, ok := t.SplitFor(ref); !ok && t.PaidBy != ref {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}, nil
}

// GroupTransactions returns a lazy sequence of a group's transactions, most
// recent first.
func (l *Ledger) GroupTransactions(ctx context.Context, groupID string) (iter.Seq[models.Transaction], error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	txns, err := l.store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(models.Transaction) bool) {
		for _, t := range txns {
			if t.GroupID != groupID {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}, nil
}

// GroupBalance derives the owner's net position against a group by summing
// the owner-relative deltas of the group's transactions. Positive = the
// group's members owe the owner. The balance is a materialized view of the
// transaction history, never an independently stored field, so it cannot
// drift from the transactions that produced it.
func (l *Ledger) GroupBalance(ctx context.Context, groupID string) (money.Amount, error) {
	txns, err := l.GroupTransactions(ctx, groupID)
	if err != nil {
		return money.Zero, err
	}
	balance := money.Zero
	for t := range txns {
		for _, d := range ownerDeltas(&t) {
			balance = balance.Add(d.amount)
		}
	}
	return balance, nil
}

// TransactionView is a display projection of a transaction with participant
// refs resolved back to names.
type TransactionView struct {
	ID          string                 `json:"id"`
	Description string                 `json:"description"`
	Amount      money.Amount           `json:"amount"`
	Date        string                 `json:"date"`
	Category    string                 `json:"category"`
	Type        models.TransactionType `json:"type"`
	PaidBy      string                 `json:"paidBy"`
	SplitWith   []string               `json:"splitWith"`
	GroupID     string                 `json:"groupId,omitempty"`
	CreatedAt   int64                  `json:"createdAt"`
}

// View projects a transaction for display, resolving refs to current names.
func (l *Ledger) View(ctx context.Context, t models.Transaction) TransactionView {
	names := make([]string, len(t.Splits))
	for i, s := range t.Splits {
		names[i] = l.displayName(ctx, s.Ref)
	}
	return TransactionView{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.Date,
		Category:    t.Category,
		Type:        t.Type,
		PaidBy:      l.displayName(ctx, t.PaidBy),
		SplitWith:   names,
		GroupID:     t.GroupID,
		CreatedAt:   t.CreatedAt,
	}
}

// GroupView is a display projection of a group with member refs resolved to
// names and the balance derived from the group's transactions.
type GroupView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Members   []string     `json:"members"`
	Balance   money.Amount `json:"balance"`
	CreatedAt int64        `json:"createdAt"`
}

// ViewGroup projects a group for display, resolving member refs to current
// names and recomputing the derived balance.
func (l *Ledger) ViewGroup(ctx context.Context, g models.Group) (GroupView, error) {
	balance, err := l.GroupBalance(ctx, g.ID)
	if err != nil {
		return GroupView{}, err
	}
	members := make([]string, len(g.Members))
	for i, ref := range g.Members {
		members[i] = l.displayName(ctx, ref)
	}
	return GroupView{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		Balance:   balance,
		CreatedAt: g.CreatedAt,
	}, nil
}

// resolveRef maps a display name to a participant ref. The owner token maps
// to OwnerRef; anything else must be an existing friend's exact name.
func (l *Ledger) resolveRef(ctx context.Context, name string) (string, error) {
	if name == models.OwnerName {
		return models.OwnerRef, nil
	}
	friend, err := l.store.FindFriendByName(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", &UnknownFriendError{Name: name}
		}
		return "", err
	}
	return friend.ID, nil
}

func (l *Ledger) displayName(ctx context.Context, ref string) string {
	if models.IsOwner(ref) {
		return models.OwnerName
	}
	friend, err := l.store.GetFriend(ctx, ref)
	if err != nil {
		return ref
	}
	return friend.Name
}

type delta struct {
	friendID string
	amount   money.Amount
}

// ownerDeltas computes the signed balance deltas a transaction produces,
// relative to the owner as the fixed observer.
func ownerDeltas(t *models.Transaction) []delta {
	switch t.Type {
	case models.TypePayment:
		if len(t.Splits) != 1 {
			return nil
		}
		counterpart := t.Splits[0]
		switch {
		case models.IsOwner(t.PaidBy) && !models.IsOwner(counterpart.Ref):
			// The owner paid the friend down: the owner owes less.
			return []delta{{friendID: counterpart.Ref, amount: counterpart.Share}}
		case models.IsOwner(counterpart.Ref) && !models.IsOwner(t.PaidBy):
			// The friend paid the owner: the friend owes less.
			return []delta{{friendID: t.PaidBy, amount: counterpart.Share.Neg()}}
		}
		return nil

	case models.TypeExpense:
		if models.IsOwner(t.PaidBy) {
			var deltas []delta
			for _, s := range t.Splits {
				if models.IsOwner(s.Ref) {
					continue
				}
				deltas = append(deltas, delta{friendID: s.Ref, amount: s.Share})
			}
			return deltas
		}
		// A friend paid. Only the owner's own share moves a balance: the
		// payer is owed it, so the payer's position against the owner drops.
		if share, ok := t.SplitFor(models.OwnerRef); ok {
			return []delta{{friendID: t.PaidBy, amount: share.Neg()}}
		}
		return nil
	}
	return nil
}

func (l *Ledger) applyDeltas(ctx context.Context, t *models.Transaction) error {
	for _, d := range ownerDeltas(t) {
		if err := l.store.ApplyBalanceDelta(ctx, d.friendID, d.amount); err != nil {
			return fmt.Errorf("apply delta for %s: %w", d.friendID, err)
		}
	}
	return nil
}
