package date

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-06-05", want: New(2024, time.June, 5)},
		{in: "2024-6-5", want: New(2024, time.June, 5)},
		{in: "not-a-date", wantErr: true},
		{in: "2024-13-40", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) expected an error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q) returned unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSub(t *testing.T) {
	a := New(2024, time.January, 1)
	b := New(2024, time.January, 31)
	if got := b.Sub(a); got != 30 {
		t.Errorf("Sub() = %d, want 30", got)
	}
	if got := a.Sub(b); got != -30 {
		t.Errorf("Sub() = %d, want -30", got)
	}
}

func TestAddNormalizes(t *testing.T) {
	got := New(2024, time.January, 31).Add(1)
	want := New(2024, time.February, 1)
	if got != want {
		t.Errorf("Add(1) = %v, want %v", got, want)
	}
}
