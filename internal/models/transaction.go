package models

import "github.com/Design-Arena-Gens/splittab/internal/money"

// TransactionType distinguishes cost-sharing expenses from settlement
// payments.
type TransactionType string

const (
	// TypeExpense is a shared cost divided among participants.
	TypeExpense TransactionType = "expense"
	// TypePayment is a direct transfer between the owner and one friend.
	TypePayment TransactionType = "payment"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TypeExpense || t == TypePayment
}

// CategoryPayment is the category assigned to settlement payments.
const CategoryPayment = "Payment"

// Split records one participant's materialized share of a transaction
// amount. For a payment the single split carries the full amount.
type Split struct {
	// Ref is the participant ref (friend ID or OwnerRef).
	Ref string

	// Share is this participant's portion of the transaction amount.
	Share money.Amount
}

// Transaction is a single expense or payment event. Transactions are
// immutable once created.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// Description is the human-readable label (e.g. "Grocery shopping").
	Description string

	// Amount is the total transaction amount. Always positive, two-decimal
	// currency semantics.
	Amount money.Amount

	// Date is the transaction date in YYYY-MM-DD form.
	Date string

	// Category is a free-form spending category (e.g. "Groceries").
	Category string

	// Type is expense or payment.
	Type TransactionType

	// PaidBy is the participant ref of the payer.
	PaidBy string

	// Splits are the ordered materialized shares, one per participant
	// sharing the cost, excluding the payer. Non-empty for an expense;
	// exactly one entry for a payment (the settlement counterpart).
	Splits []Split

	// GroupID attributes the transaction to a group. Empty if none.
	GroupID string

	// Ref is an optional caller-supplied idempotency key. Empty if none.
	Ref string

	// CreatedAt is the Unix timestamp when the transaction was recorded.
	CreatedAt int64
}

// SplitFor returns the share for one participant ref and whether the
// participant appears in the splits.
func (t *Transaction) SplitFor(ref string) (money.Amount, bool) {
	for _, s := range t.Splits {
		if s.Ref == ref {
			return s.Share, true
		}
	}
	return money.Zero, false
}
