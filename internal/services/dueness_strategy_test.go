package services

import (
	"testing"
	"time"

	"planboard/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestDailyChecker(t *testing.T) {
	checker := DailyChecker{}

	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2026, 3, 10), true},
		{"ran yesterday", date(2026, 3, 9), date(2026, 3, 10), true},
		{"ran today", date(2026, 3, 10), date(2026, 3, 10), false},
		{"ran last month", date(2026, 2, 10), date(2026, 3, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker(t *testing.T) {
	checker := WeeklyChecker{}

	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2026, 3, 10), true},
		{"6 days ago", date(2026, 3, 4), date(2026, 3, 10), false},
		{"exactly 7 days ago", date(2026, 3, 3), date(2026, 3, 10), true},
		{"10 days ago", date(2026, 2, 28), date(2026, 3, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker(t *testing.T) {
	checker := MonthlyChecker{}

	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, date(2026, 3, 10), true},
		{"same month", date(2026, 3, 1), date(2026, 3, 28), false},
		{"previous month", date(2026, 2, 28), date(2026, 3, 1), true},
		{"same month last year", date(2025, 3, 10), date(2026, 3, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now); got != tt.want {
				t.Errorf("IsDue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, freq := range []core.Frequency{core.Daily, core.Weekly, core.Monthly} {
		if _, err := GetDuenessChecker(freq); err != nil {
			t.Errorf("GetDuenessChecker(%s) error = %v", freq, err)
		}
	}

	if _, err := GetDuenessChecker("hourly"); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestRegisterDuenessChecker(t *testing.T) {
	custom := core.Frequency("always")
	RegisterDuenessChecker(custom, alwaysDue{})
	defer delete(duenessStrategies, custom)

	checker, err := GetDuenessChecker(custom)
	if err != nil {
		t.Fatalf("GetDuenessChecker() error = %v", err)
	}
	if !checker.IsDue(date(2026, 3, 10), date(2026, 3, 10)) {
		t.Error("custom checker should report due")
	}
}

type alwaysDue struct{}

func (alwaysDue) IsDue(_, _ time.Time) bool { return true }
