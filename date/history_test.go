package date

import (
	"testing"
	"time"
)

func sampleHistory() *History[float64] {
	h := &History[float64]{}
	h.Append(New(2024, time.March, 4), 100)
	h.Append(New(2024, time.March, 5), 101)
	h.Append(New(2024, time.March, 7), 99)
	h.Append(New(2024, time.March, 8), 103)
	return h
}

func TestHistoryValueAsOf(t *testing.T) {
	h := sampleHistory()

	testCases := []struct {
		name   string
		on     Date
		want   float64
		wantOK bool
	}{
		{name: "exact day", on: New(2024, time.March, 5), want: 101, wantOK: true},
		{name: "gap day falls back", on: New(2024, time.March, 6), want: 101, wantOK: true},
		{name: "after the end", on: New(2024, time.March, 20), want: 103, wantOK: true},
		{name: "before the start", on: New(2024, time.March, 1), wantOK: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := h.ValueAsOf(tc.on)
			if ok != tc.wantOK {
				t.Fatalf("ValueAsOf(%v) ok = %v, want %v", tc.on, ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("ValueAsOf(%v) = %v, want %v", tc.on, got, tc.want)
			}
		})
	}
}

func TestHistoryAfterBefore(t *testing.T) {
	h := sampleHistory()

	days, values := h.After(New(2024, time.March, 5), 2)
	if len(days) != 2 || values[0] != 99 || values[1] != 103 {
		t.Errorf("After() = %v %v, want the two bars after March 5", days, values)
	}

	days, values = h.Before(New(2024, time.March, 8), 2)
	if len(days) != 2 || values[0] != 101 || values[1] != 99 {
		t.Errorf("Before() = %v %v, want the two bars before March 8", days, values)
	}

	days, _ = h.Between(New(2024, time.March, 5), New(2024, time.March, 7))
	if len(days) != 2 {
		t.Errorf("Between() returned %d days, want 2", len(days))
	}
}

func TestHistoryAppendOverwrites(t *testing.T) {
	h := sampleHistory()
	h.Append(New(2024, time.March, 5), 200)
	if got, _ := h.Get(New(2024, time.March, 5)); got != 200 {
		t.Errorf("Get() after overwrite = %v, want 200", got)
	}
	if h.Len() != 4 {
		t.Errorf("Len() = %d, want 4", h.Len())
	}
}
