package money

import "testing"

func mustParse(t *testing.T, s string) Amount {
	t.Helper()
	a, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return a
}

func TestRoundCents(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "exact cents untouched", in: "45.50", want: "45.50"},
		{name: "half rounds up", in: "33.335", want: "33.34"},
		{name: "below half rounds down", in: "33.334", want: "33.33"},
		{name: "negative half rounds away from zero", in: "-33.335", want: "-33.34"},
		{name: "repeating decimal", in: "33.333333333333", want: "33.33"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.in).RoundCents()
			if want := mustParse(t, tt.want); !got.Equal(want) {
				t.Errorf("RoundCents(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	a := FromCents(9000) // 90.00

	if got := a.Div(3); !got.Equal(FromCents(3000)) {
		t.Errorf("90 / 3 = %s, want 30", got)
	}
	if got := a.MulPercent(40).RoundCents(); !got.Equal(FromCents(3600)) {
		t.Errorf("40%% of 90 = %s, want 36", got)
	}
	if got := a.MulFrac(2, 3).RoundCents(); !got.Equal(FromCents(6000)) {
		t.Errorf("90 * 2/3 = %s, want 60", got)
	}
	if got := a.Sub(FromCents(4550)); !got.Equal(FromCents(4450)) {
		t.Errorf("90 - 45.50 = %s, want 44.50", got)
	}
	if got := FromCents(-3200).Abs(); !got.Equal(FromCents(3200)) {
		t.Errorf("|-32| = %s, want 32", got)
	}
	if got := FromCents(-3200).Neg(); !got.Equal(FromCents(3200)) {
		t.Errorf("-(-32) = %s, want 32", got)
	}
	if !Zero.IsZero() || FromCents(1).IsZero() {
		t.Error("IsZero misreports")
	}
}

func TestComparisons(t *testing.T) {
	a, b := FromCents(3000), FromCents(4550)

	if !a.LessThan(b) || b.LessThan(a) {
		t.Error("LessThan misreports")
	}
	if !b.GreaterThan(a) || a.GreaterThan(b) {
		t.Error("GreaterThan misreports")
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Error("Cmp misreports")
	}
	if !FromFloat(45.5).Equal(b) {
		t.Errorf("FromFloat(45.5) = %s, want 45.50", FromFloat(45.5))
	}
	if got := b.Float64(); got != 45.5 {
		t.Errorf("Float64(45.50) = %v, want 45.5", got)
	}
}

func TestParseRoundTrip(t *testing.T) {
	// Stores persist amounts as strings; Parse(String()) must be lossless.
	for _, s := range []string{"0", "45.5", "45.50", "-32", "0.01", "1234567.89"} {
		a := mustParse(t, s)
		back, err := Parse(a.String())
		if err != nil {
			t.Fatalf("Parse(String(%s)) failed: %v", s, err)
		}
		if !back.Equal(a) {
			t.Errorf("round trip of %s: got %s", s, back)
		}
	}

	if _, err := Parse("not-money"); err == nil {
		t.Error("Parse accepted garbage input")
	}
}

func TestDisplay(t *testing.T) {
	if got := FromCents(4550).Display(); got != "$45.50" {
		t.Errorf("Display(45.50) = %q, want $45.50", got)
	}
}
