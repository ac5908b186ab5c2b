package stats

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{90 * time.Second, "00:01:30"},
		{2*time.Hour + 5*time.Minute + 9*time.Second, "02:05:09"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestFormatRate(t *testing.T) {
	cases := []struct {
		rate float64
		want string
	}{
		{0, "0.00"},
		{0.005, "0.00"},
		{1.5, "1.50"},
		{12.333, "12.33"},
	}
	for _, tc := range cases {
		if got := FormatRate(tc.rate); got != tc.want {
			t.Errorf("FormatRate(%v) = %q, want %q", tc.rate, got, tc.want)
		}
	}
}
