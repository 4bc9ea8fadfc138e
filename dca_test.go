package trader

import (
	"testing"
)

// monthlyBuys builds n buys of the same amount, one month apart.
func monthlyBuys(ticker string, n int, amount float64) []*Action {
	out := make([]*Action, 0, n)
	on := day("2025-01-05")
	for i := 0; i < n; i++ {
		a := testBuy(on.Add(i*30).String(), ticker, amount/100, 100, amount)
		out = append(out, &a)
	}
	return out
}

func TestDetectDCA_MonthlySchedule(t *testing.T) {
	buys := monthlyBuys("VWRL", 6, 500)
	seqs := DetectDCA("VWRL", buys, nil)

	if len(seqs) != 1 {
		t.Fatalf("len(seqs) = %d, want 1", len(seqs))
	}
	s := seqs[0]
	if got := len(s.ActionIDs); got != 6 {
		t.Errorf("members = %d, want 6", got)
	}
	if got, want := s.IntervalLabel, "monthly"; got != want {
		t.Errorf("IntervalLabel = %q, want %q", got, want)
	}
	if s.Consistency < 99 {
		t.Errorf("Consistency = %v, want near 100 for identical amounts and gaps", s.Consistency)
	}
	if s.HasReturns {
		t.Error("HasReturns = true, want false without market data")
	}
}

func TestDetectDCA_MinimumMembers(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{3, 0},
		{4, 1},
	}
	for _, tc := range tests {
		seqs := DetectDCA("X", monthlyBuys("X", tc.n, 500), nil)
		if got := len(seqs); got != tc.want {
			t.Errorf("DetectDCA with %d buys found %d sequences, want %d", tc.n, got, tc.want)
		}
	}
}

func TestDetectDCA_AmountBreak(t *testing.T) {
	// a one-off large buy interrupts the schedule
	buys := monthlyBuys("X", 4, 500)
	outlier := testBuy(day("2025-01-05").Add(4*30).String(), "X", 50, 100, 5000)
	buys = append(buys, &outlier)

	seqs := DetectDCA("X", buys, nil)
	if len(seqs) != 1 {
		t.Fatalf("len(seqs) = %d, want 1", len(seqs))
	}
	if got := len(seqs[0].ActionIDs); got != 4 {
		t.Errorf("members = %d, want 4 (outlier excluded)", got)
	}
	for _, id := range seqs[0].ActionIDs {
		if id == outlier.ID {
			t.Error("the outlier buy must not join the sequence")
		}
	}
}

func TestDetectDCA_GapBreak(t *testing.T) {
	// monthly cadence, then a ten-month silence, then monthly again: the
	// two runs are separate sequences and share no member
	var buys []*Action
	on := day("2025-01-05")
	for i := 0; i < 4; i++ {
		a := testBuy(on.Add(i*30).String(), "X", 5, 100, 500)
		buys = append(buys, &a)
	}
	on = on.Add(3*30 + 300)
	for i := 0; i < 4; i++ {
		a := testBuy(on.Add(i*30).String(), "X", 5, 100, 500)
		buys = append(buys, &a)
	}

	seqs := DetectDCA("X", buys, nil)
	if len(seqs) != 2 {
		t.Fatalf("len(seqs) = %d, want 2", len(seqs))
	}
	seen := make(map[string]bool)
	for _, s := range seqs {
		if len(s.ActionIDs) < minDCAMembers {
			t.Errorf("sequence with %d members, want >= %d", len(s.ActionIDs), minDCAMembers)
		}
		for _, id := range s.ActionIDs {
			if seen[id] {
				t.Errorf("action %s belongs to two sequences", id)
			}
			seen[id] = true
		}
	}
}

func TestDetectDCA_Returns(t *testing.T) {
	// flat schedule at price 100 while the instrument climbed from 80:
	// lump sum at the first buy's price beats averaging in
	buys := make([]*Action, 0, 4)
	on := day("2025-01-05")
	prices := []float64{80, 90, 100, 110}
	for i, p := range prices {
		a := testBuy(on.Add(i*30).String(), "X", 500/p, p, 500)
		buys = append(buys, &a)
	}
	ins := testInstrument("X", "2025-04-10", 120)

	seqs := DetectDCA("X", buys, ins)
	if len(seqs) != 1 {
		t.Fatalf("len(seqs) = %d, want 1", len(seqs))
	}
	s := seqs[0]
	if !s.HasReturns {
		t.Fatal("HasReturns = false, want returns with market data")
	}
	if s.LumpSumReturn <= s.DCAReturn {
		t.Errorf("LumpSumReturn = %v, DCAReturn = %v; lump sum at 80 must beat averaging up", s.LumpSumReturn, s.DCAReturn)
	}
}

func TestIntervalLabel(t *testing.T) {
	tests := []struct {
		gap  float64
		want string
	}{
		{1, "daily"},
		{7, "weekly"},
		{14, "biweekly"},
		{30, "monthly"},
		{3, "irregular"},
		{50, "irregular"},
	}
	for _, tc := range tests {
		if got := intervalLabel(tc.gap); got != tc.want {
			t.Errorf("intervalLabel(%v) = %q, want %q", tc.gap, got, tc.want)
		}
	}
}
