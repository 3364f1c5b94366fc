package period

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{in: "2025", want: NewYear(2025)},
		{in: "2025-03", want: NewMonth(2025, time.March)},
		{in: "2025-12", want: NewMonth(2025, time.December)},
		{in: "2025-Q1", want: NewQuarter(2025, 1)},
		{in: "2025-q4", want: NewQuarter(2025, 4)},
		{in: "2025-13", wantErr: true},
		{in: "2025-Q5", wantErr: true},
		{in: "2025-00", wantErr: true},
		{in: "garbage", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"2025", "2025-03", "2025-Q1"} {
		p := MustParse(s)
		if p.String() != s {
			t.Errorf("round trip %q -> %q", s, p.String())
		}
	}
}

func TestRange(t *testing.T) {
	from, to := NewMonth(2025, time.March).Range()
	if !from.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month from = %v", from)
	}
	if !to.Equal(time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("month to = %v", to)
	}

	from, to = NewQuarter(2025, 4).Range()
	if !from.Equal(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("quarter from = %v", from)
	}
	if !to.Equal(time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("quarter to = %v", to)
	}
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		in   Period
		want Period
	}{
		{NewMonth(2025, time.March), NewMonth(2025, time.February)},
		{NewMonth(2025, time.January), NewMonth(2024, time.December)},
		{NewQuarter(2025, 1), NewQuarter(2024, 4)},
		{NewQuarter(2025, 3), NewQuarter(2025, 2)},
		{NewYear(2025), NewYear(2024)},
	}

	for _, tt := range tests {
		if got := tt.in.Previous(); !got.Equal(tt.want) {
			t.Errorf("Previous(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFirstOfYear(t *testing.T) {
	if !NewMonth(2025, time.January).FirstOfYear() {
		t.Error("January should be first of year")
	}
	if NewMonth(2025, time.February).FirstOfYear() {
		t.Error("February should not be first of year")
	}
	if !NewQuarter(2025, 1).FirstOfYear() {
		t.Error("Q1 should be first of year")
	}
	if !NewYear(2025).FirstOfYear() {
		t.Error("year period has no within-year predecessor")
	}
}

func TestDescriptorOverride(t *testing.T) {
	custom := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	d := Descriptor{Period: NewMonth(2025, time.March), ToDate: &custom}

	from, to := d.Range()
	if !from.Equal(time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(custom) {
		t.Errorf("to override ignored: %v", to)
	}
}
