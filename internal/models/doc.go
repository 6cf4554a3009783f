// Package models defines the core domain records for Splittab.
//
// # Models
//
//   - Friend: a person the owner splits costs with, carrying a running balance
//   - Group: a reusable participant list with its own transaction history
//   - Transaction: an immutable expense or payment event
//
// # Participant references
//
// Transactions and group member lists reference people by participant ref: the
// friend's entity ID, or the reserved owner ref for the local user. Display
// names are a projection resolved at read time, so renaming a friend never
// orphans historical transactions from balance computation.
//
// # Design principles
//
//  1. Records are value-like: stores hand out copies, never shared pointers
//  2. Relationships use ID strings, not pointers, to avoid circular references
//  3. Transactions are immutable once created; there is no edit or delete
package models
