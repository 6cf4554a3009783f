package split

import (
	"errors"
	"testing"

	"github.com/Design-Arena-Gens/splittab/internal/money"
)

func cents(c int64) money.Amount { return money.FromCents(c) }

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		amount       money.Amount
		payer        string
		participants []Participant
		strategy     Strategy
		policy       RemainderPolicy
		wantErr      bool
		validateFunc func(t *testing.T, shares []Share)
	}{
		{
			name:         "equal three-way split",
			amount:       cents(9000), // 90.00 across A, B, and the payer
			payer:        "you",
			participants: []Participant{{Ref: "a"}, {Ref: "b"}},
			strategy:     Equal,
			policy:       RemainderDrift,
			validateFunc: func(t *testing.T, shares []Share) {
				if len(shares) != 2 {
					t.Fatalf("got %d shares, want 2", len(shares))
				}
				for _, s := range shares {
					if !s.Amount.Equal(cents(3000)) {
						t.Errorf("%s share = %s, want 30.00", s.Ref, s.Amount)
					}
				}
			},
		},
		{
			name:         "equal split leaves at most one cent of drift",
			amount:       cents(10000), // 100.00 / 3 = 33.33...
			payer:        "you",
			participants: []Participant{{Ref: "a"}, {Ref: "b"}},
			strategy:     Equal,
			policy:       RemainderDrift,
			validateFunc: func(t *testing.T, shares []Share) {
				for _, s := range shares {
					if !s.Amount.Equal(cents(3333)) {
						t.Errorf("%s share = %s, want 33.33", s.Ref, s.Amount)
					}
				}
			},
		},
		{
			name:         "equal split remainder assigned to first participant",
			amount:       cents(10000),
			payer:        "you",
			participants: []Participant{{Ref: "a"}, {Ref: "b"}},
			strategy:     Equal,
			policy:       RemainderFirst,
			validateFunc: func(t *testing.T, shares []Share) {
				// 3 rounded shares cover 99.99; the cent goes to A.
				if !shares[0].Amount.Equal(cents(3334)) {
					t.Errorf("first share = %s, want 33.34", shares[0].Amount)
				}
				if !shares[1].Amount.Equal(cents(3333)) {
					t.Errorf("second share = %s, want 33.33", shares[1].Amount)
				}
			},
		},
		{
			name:         "payer listed among participants is skipped",
			amount:       cents(9000),
			payer:        "you",
			participants: []Participant{{Ref: "you"}, {Ref: "a"}},
			strategy:     Equal,
			policy:       RemainderDrift,
			validateFunc: func(t *testing.T, shares []Share) {
				if len(shares) != 1 || shares[0].Ref != "a" {
					t.Fatalf("got shares %+v, want only a", shares)
				}
				if !shares[0].Amount.Equal(cents(3000)) {
					t.Errorf("a share = %s, want 30.00", shares[0].Amount)
				}
			},
		},
		{
			name:         "percentage split 60/40",
			amount:       cents(10000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Percent: 60}, {Ref: "b", Percent: 40}},
			strategy:     Percentage,
			policy:       RemainderDrift,
			validateFunc: func(t *testing.T, shares []Share) {
				if !ShareFor(shares, "a").Equal(cents(6000)) {
					t.Errorf("a share = %s, want 60.00", ShareFor(shares, "a"))
				}
				if !ShareFor(shares, "b").Equal(cents(4000)) {
					t.Errorf("b share = %s, want 40.00", ShareFor(shares, "b"))
				}
			},
		},
		{
			name:         "percentages summing to 99.9 rejected",
			amount:       cents(10000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Percent: 59.9}, {Ref: "b", Percent: 40}},
			strategy:     Percentage,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "percentages summing to 100.2 rejected",
			amount:       cents(10000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Percent: 60}, {Ref: "b", Percent: 40.2}},
			strategy:     Percentage,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "percentages summing to 101 rejected",
			amount:       cents(10000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Percent: 60}, {Ref: "b", Percent: 41}},
			strategy:     Percentage,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "non-positive percentage rejected",
			amount:       cents(10000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Percent: 100}, {Ref: "b", Percent: 0}},
			strategy:     Percentage,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "weighted split 1:2",
			amount:       cents(9000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Weight: 1}, {Ref: "b", Weight: 2}},
			strategy:     Shares,
			policy:       RemainderDrift,
			validateFunc: func(t *testing.T, shares []Share) {
				if !ShareFor(shares, "a").Equal(cents(3000)) {
					t.Errorf("a share = %s, want 30.00", ShareFor(shares, "a"))
				}
				if !ShareFor(shares, "b").Equal(cents(6000)) {
					t.Errorf("b share = %s, want 60.00", ShareFor(shares, "b"))
				}
			},
		},
		{
			name:         "non-positive weight rejected",
			amount:       cents(9000),
			payer:        "you",
			participants: []Participant{{Ref: "a", Weight: 0}, {Ref: "b", Weight: 2}},
			strategy:     Shares,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "zero amount rejected",
			amount:       money.Zero,
			payer:        "you",
			participants: []Participant{{Ref: "a"}},
			strategy:     Equal,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "negative amount rejected",
			amount:       cents(-100),
			payer:        "you",
			participants: []Participant{{Ref: "a"}},
			strategy:     Equal,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "no participants rejected",
			amount:       cents(9000),
			payer:        "you",
			participants: nil,
			strategy:     Equal,
			policy:       RemainderDrift,
			wantErr:      true,
		},
		{
			name:         "unknown strategy rejected",
			amount:       cents(9000),
			payer:        "you",
			participants: []Participant{{Ref: "a"}},
			strategy:     Strategy("halvsies"),
			policy:       RemainderDrift,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Compute(tt.amount, tt.payer, tt.participants, tt.strategy, tt.policy)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalidSplit) {
					t.Errorf("error %v does not wrap ErrInvalidSplit", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, shares)
			}
		})
	}
}

func TestComputeConservation(t *testing.T) {
	// Under equal split the materialized shares must total
	// amount * n / (n+1): the whole amount minus the payer's own share.
	amount := cents(9000)
	shares, err := Compute(amount, "you", []Participant{{Ref: "a"}, {Ref: "b"}}, Equal, RemainderDrift)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	total := money.Zero
	for _, s := range shares {
		total = total.Add(s.Amount)
	}
	if want := cents(6000); !total.Equal(want) {
		t.Errorf("materialized total = %s, want %s", total, want)
	}
}
