// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for report schedule dueness
// checking. Each frequency (daily, weekly, monthly) has its own strategy
// that encapsulates the logic for determining if a schedule should fire.

package services

import (
	"fmt"
	"time"

	"planboard/internal/core"
)

// DuenessChecker is the strategy interface for checking if a report schedule
// is due. Each implementation encapsulates the algorithm for one frequency.
type DuenessChecker interface {
	// IsDue returns true if the schedule should fire based on its last run
	// time and the current time.
	IsDue(lastRun, now time.Time) bool
}

// DailyChecker implements DuenessChecker for daily schedules.
type DailyChecker struct{}

// IsDue returns true if the last run was before today.
func (DailyChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Format("2006-01-02") != now.Format("2006-01-02")
}

// WeeklyChecker implements DuenessChecker for weekly schedules.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since the last run.
func (WeeklyChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	daysSince := now.Sub(lastRun).Hours() / 24
	return daysSince >= 7
}

// MonthlyChecker implements DuenessChecker for monthly schedules.
type MonthlyChecker struct{}

// IsDue returns true once per calendar month.
func (MonthlyChecker) IsDue(lastRun, now time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Year() != now.Year() || lastRun.Month() != now.Month()
}

// duenessStrategies maps frequencies to their corresponding checkers.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
}

// GetDuenessChecker returns the checker for a frequency, or an error if the
// frequency is not supported.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker registers a custom checker for a new frequency.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
