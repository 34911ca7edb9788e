package finbook

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2025-07-01", want: NewDate(2025, time.July, 1)},
		{in: "2025-7-1", want: NewDate(2025, time.July, 1)},
		{in: "2024-02-29", want: NewDate(2024, time.February, 29)},
		{in: "2025-13-01", wantErr: true},
		{in: "01/07/2025", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDate_Ordering(t *testing.T) {
	a := NewDate(2025, time.January, 31)
	b := a.Add(1)
	if b != NewDate(2025, time.February, 1) {
		t.Errorf("Add(1) across month = %s, want 2025-02-01", b)
	}
	if !a.Before(b) || !b.After(a) {
		t.Error("Before/After disagree with Add")
	}
	if a.Before(a) || a.After(a) {
		t.Error("a date compares against itself")
	}
	var zero Date
	if !zero.IsZero() || a.IsZero() {
		t.Error("IsZero misreports")
	}
}
