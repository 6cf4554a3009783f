package ledger

import "fmt"

// UnknownFriendError reports a submitted participant name that is neither the
// owner token nor an existing friend. For split participants it is non-fatal:
// the unresolved name is skipped, the remaining valid shares are still
// applied, and the joined error is returned alongside the recorded
// transaction. For the payer it is fatal.
type UnknownFriendError struct {
	Name string
}

func (e *UnknownFriendError) Error() string {
	return fmt.Sprintf("unknown friend %q", e.Name)
}
