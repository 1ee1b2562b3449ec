package compare

import "testing"

func TestParseBudget(t *testing.T) {
	cases := []struct {
		in    string
		total int
		limit int
	}{
		{"0", 10000, 0},
		{"250", 10000, 250},
		{"250", 100, 250}, // absolute budgets ignore the image area
		{"2.5%", 10000, 250},
		{"100%", 640, 640},
		{"0%", 10000, 0},
	}
	for _, tc := range cases {
		b, err := ParseBudget(tc.in)
		if err != nil {
			t.Errorf("parse %q: %v", tc.in, err)
			continue
		}
		if got := b.PixelLimit(tc.total); got != tc.limit {
			t.Errorf("parse %q: limit(%d) = %d, want %d", tc.in, tc.total, got, tc.limit)
		}
	}
}

func TestParseBudget_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "1.5", "101%", "-3%", "5%%", "%"} {
		if _, err := ParseBudget(in); err == nil {
			t.Errorf("parse %q: expected error", in)
		}
	}
}

func TestBudget_String(t *testing.T) {
	if s := AbsoluteBudget(12).String(); s != "12" {
		t.Errorf("absolute: got %q", s)
	}
	if s := RatioBudget(0.5).String(); s != "50%" {
		t.Errorf("ratio: got %q", s)
	}
	if s := (Budget{}).String(); s != "0" {
		t.Errorf("zero value: got %q", s)
	}
}
