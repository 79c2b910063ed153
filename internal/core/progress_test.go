package core

import "testing"

func TestClampProgress(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"-5", 0},
		{"150", 100},
		{"42", 42},
		{"abc", 0},
		{"", 0},
		{"0", 0},
		{"100", 100},
		{"99.6", 100}, // click-derived fractional input rounds to nearest
		{"42.4", 42},
		{" 42 ", 42},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ClampProgress(tt.raw); got != tt.want {
				t.Errorf("ClampProgress(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClampProgressValue(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{-5, 0},
		{150, 100},
		{42, 42},
		{42.5, 43},
		{0, 0},
	}
	for _, tt := range tests {
		if got := ClampProgressValue(tt.v); got != tt.want {
			t.Errorf("ClampProgressValue(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}
