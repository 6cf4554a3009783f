package models

import "github.com/Design-Arena-Gens/splittab/internal/money"

// OwnerName is the display name of the local user in submissions and views.
const OwnerName = "You"

// OwnerRef is the reserved participant ref for the local user. It is never a
// valid friend ID.
const OwnerRef = "you"

// IsOwner reports whether a participant ref is the local user.
func IsOwner(ref string) bool { return ref == OwnerRef }

// Friend is a person the owner splits costs with.
type Friend struct {
	// ID is the unique identifier for the friend (UUID format), assigned at
	// creation and immutable thereafter.
	ID string

	// Name is the display name. Lookups by name are exact and case-sensitive.
	Name string

	// Balance is the friend's running net position relative to the owner.
	// Positive = the friend owes the owner; negative = the owner owes the
	// friend. It is the signed sum of all unsettled deltas ever applied.
	Balance money.Amount

	// CreatedAt is the Unix timestamp when the friend was created.
	CreatedAt int64
}
