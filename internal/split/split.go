// Package split computes per-participant shares of a transaction amount
// under a chosen split strategy.
package split

import (
	"errors"
	"fmt"
	"math"

	"github.com/Design-Arena-Gens/splittab/internal/money"
)

// ErrInvalidSplit reports a split request that cannot be computed: amount not
// positive, no participants, percentages not summing to 100, or non-positive
// share weights. Wrapped errors carry the specific reason.
var ErrInvalidSplit = errors.New("invalid split")

// Strategy selects the rule used to divide an amount among participants.
type Strategy string

const (
	// Equal divides the amount evenly across the participants plus the
	// payer: each of the n listed participants owes amount/(n+1), with the
	// payer keeping the remaining equal share.
	Equal Strategy = "equal"

	// Percentage gives each participant amount*pct/100. Percentages must sum
	// to 100 within PercentEpsilon.
	Percentage Strategy = "percentage"

	// Shares gives each participant amount*weight/Σweights, with positive
	// integer weights.
	Shares Strategy = "shares"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == Equal || s == Percentage || s == Shares
}

// RemainderPolicy decides where the sub-cent rounding remainder of a split
// goes. Rounding each share to cents can leave the share total up to one cent
// away from the amount.
type RemainderPolicy string

const (
	// RemainderDrift leaves the remainder unallocated. Drift of at most one
	// cent per transaction is a documented property of this policy.
	RemainderDrift RemainderPolicy = "drift"

	// RemainderFirst adds the remainder to the first listed participant's
	// share so that the shares sum to the amount exactly.
	RemainderFirst RemainderPolicy = "first"

	// RemainderPayer leaves the remainder with the payer's own share.
	// Materialized shares are unchanged; the payer absorbs the drift.
	RemainderPayer RemainderPolicy = "payer"
)

// PercentEpsilon is the tolerance on the percentage sum check.
const PercentEpsilon = 0.01

// Participant is one person sharing a cost, with the inputs the chosen
// strategy needs. Percent is read by Percentage, Weight by Shares.
type Participant struct {
	Ref     string
	Percent float64
	Weight  int64
}

// Share is one participant's computed portion of the amount.
type Share struct {
	Ref    string
	Amount money.Amount
}

// Compute calculates each participant's share of amount under the given
// strategy. Participants exclude the payer; a payer ref appearing in the list
// is skipped rather than materialized. Every share is rounded half-up to
// cents, then the remainder policy settles the sub-cent difference between
// the rounded shares and the amount.
func Compute(amount money.Amount, payer string, participants []Participant, strategy Strategy, policy RemainderPolicy) ([]Share, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidSplit, amount)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}

	var shares []Share
	// covered is the rounded total across all n+1 (or all percentage/weight)
	// slots, including the payer's own share, used to find the remainder.
	covered := money.Zero

	switch strategy {
	case Equal:
		n := int64(len(participants)) + 1 // payer always holds one equal share
		per := amount.Div(n).RoundCents()
		covered = per.MulInt(n)
		for _, p := range participants {
			if p.Ref == payer {
				continue
			}
			shares = append(shares, Share{Ref: p.Ref, Amount: per})
		}

	case Percentage:
		sum := 0.0
		for _, p := range participants {
			if p.Percent <= 0 {
				return nil, fmt.Errorf("%w: percentage for %s must be positive, got %v", ErrInvalidSplit, p.Ref, p.Percent)
			}
			sum += p.Percent
		}
		if math.Abs(sum-100) > PercentEpsilon {
			return nil, fmt.Errorf("%w: percentages sum to %v, want 100", ErrInvalidSplit, sum)
		}
		for _, p := range participants {
			share := amount.MulPercent(p.Percent).RoundCents()
			covered = covered.Add(share)
			if p.Ref == payer {
				continue
			}
			shares = append(shares, Share{Ref: p.Ref, Amount: share})
		}

	case Shares:
		var total int64
		for _, p := range participants {
			if p.Weight <= 0 {
				return nil, fmt.Errorf("%w: share weight for %s must be positive, got %d", ErrInvalidSplit, p.Ref, p.Weight)
			}
			total += p.Weight
		}
		for _, p := range participants {
			share := amount.MulFrac(p.Weight, total).RoundCents()
			covered = covered.Add(share)
			if p.Ref == payer {
				continue
			}
			shares = append(shares, Share{Ref: p.Ref, Amount: share})
		}

	default:
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidSplit, strategy)
	}

	if policy == RemainderFirst && len(shares) > 0 {
		remainder := amount.Sub(covered)
		if !remainder.IsZero() {
			shares[0].Amount = shares[0].Amount.Add(remainder)
		}
	}
	// RemainderDrift and RemainderPayer leave materialized shares as rounded.

	return shares, nil
}

// ShareFor returns the computed share for one participant ref, or zero if the
// ref holds no materialized share (e.g. the payer).
func ShareFor(shares []Share, ref string) money.Amount {
	for _, s := range shares {
		if s.Ref == ref {
			return s.Amount
		}
	}
	return money.Zero
}
