package models

// Group is a reusable participant list. Transactions can be attributed to a
// group, giving it its own history and a derived balance.
//
// A group carries no stored balance: the owner-relative group balance is
// recomputed from the group's transactions, so it can never drift from the
// transaction history.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Roommates").
	Name string

	// Members is the ordered list of participant refs, including the owner.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
