package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// PlanningStatus is the lifecycle vocabulary used by the planning board.
type PlanningStatus string

const (
	StatusIdea        PlanningStatus = "idea"
	StatusPlanning    PlanningStatus = "planning"
	StatusDevelopment PlanningStatus = "development"
	StatusTesting     PlanningStatus = "testing"
	StatusLaunching   PlanningStatus = "launching"
	StatusLaunched    PlanningStatus = "launched"
)

// ReportingStatus is the separate vocabulary used by the reporting view.
// The two vocabularies are kept distinct on purpose; they describe the same
// project from two different screens and must not be merged.
type ReportingStatus string

const (
	StatusActive    ReportingStatus = "active"
	StatusReview    ReportingStatus = "review"
	StatusCompleted ReportingStatus = "completed"
	StatusOnHold    ReportingStatus = "on-hold"
	StatusCancelled ReportingStatus = "cancelled"
)

// Valid reports whether s is one of the planning vocabulary values.
func (s PlanningStatus) Valid() bool {
	switch s {
	case StatusIdea, StatusPlanning, StatusDevelopment, StatusTesting, StatusLaunching, StatusLaunched:
		return true
	}
	return false
}

// Valid reports whether s is one of the reporting vocabulary values.
func (s ReportingStatus) Valid() bool {
	switch s {
	case StatusActive, StatusReview, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

// Budget categories.
const (
	CategoryDevelopment = "development"
	CategoryHosting     = "hosting"
	CategoryMarketing   = "marketing"
	CategoryTools       = "tools"
	CategoryDesign      = "design"
	CategoryDomain      = "domain"
	CategoryOther       = "other"
)

// BudgetType distinguishes expense from income budget lines.
type BudgetType string

const (
	BudgetExpense BudgetType = "expense"
	BudgetIncome  BudgetType = "income"
)

// Frequency is how often a report schedule fires.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// Cents is a monetary amount in minor units of the single fixed currency.
// Decoding is forgiving: numbers, numeric strings, null, and malformed values
// all decode, with anything unparseable coerced to 0. Summaries are best-effort
// over possibly-partial user data, so a bad amount must never fault a report.
type Cents int64

// UnmarshalJSON implements forgiving numeric decoding.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*c = Cents(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*c = Cents(int64(f))
		return nil
	}
	*c = 0
	return nil
}

// Tags is a set of free-text labels. Storage may hold them either as a JSON
// array or as a JSON-encoded string containing an array; both decode to the
// same sequence. Absent or invalid input decodes to empty.
type Tags []string

// UnmarshalJSON accepts ["a","b"] as well as "[\"a\",\"b\"]".
func (t *Tags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = nil
		return nil
	}
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			*t = nil
			return nil
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			*t = nil
			return nil
		}
		data = []byte(inner)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		*t = nil
		return nil
	}
	*t = out
	return nil
}

// Link is a user-managed titled URL attached to a project.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Date is a calendar date. It decodes from "2006-01-02" or RFC 3339 and
// encodes as "2006-01-02"; zero dates encode as null.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		d.Time = t
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		d.Time = t
		return nil
	}
	d.Time = time.Time{}
	return nil
}

type (
	// Project is a unit of planning work owned by a workspace.
	Project struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Client string `json:"client,omitempty"`
		// PlanStatus and ReportStatus are independent vocabularies; see the
		// type docs above.
		PlanStatus   PlanningStatus  `json:"planStatus"`
		ReportStatus ReportingStatus `json:"reportStatus"`
		// Color doubles as a chart grouping key, so it is an opaque
		// identifier rather than a purely cosmetic value.
		Color     string `json:"color,omitempty"`
		Progress  int    `json:"progress"`
		StartDate Date   `json:"startDate"`
		EndDate   Date   `json:"endDate"`
		Tags      Tags   `json:"tags,omitempty"`
		Links     []Link `json:"links,omitempty"`
	}

	// Budget is a planned spend line, optionally linked to a project.
	// Amount and Spent are independently user-editable; spent > amount is a
	// derived display condition, never a write-time constraint.
	Budget struct {
		ID        int64      `json:"id"`
		ProjectID *int64     `json:"projectId"`
		Name      string     `json:"name"`
		Amount    Cents      `json:"amount"`
		Spent     Cents      `json:"spent"`
		Category  string     `json:"category"`
		Type      BudgetType `json:"type"`
		Date      Date       `json:"date"`
		Notes     string     `json:"notes,omitempty"`
	}

	// Expense is an individual outflow. Reporting sums expenses by project;
	// it does not read Budget.Spent.
	Expense struct {
		ID        int64  `json:"id"`
		ProjectID *int64 `json:"projectId"`
		Category  string `json:"category"`
		Amount    Cents  `json:"amount"`
		Date      Date   `json:"date"`
	}

	// Task is only ever aggregated; reports count completion, nothing more.
	Task struct {
		ID        int64  `json:"id"`
		ProjectID *int64 `json:"projectId"`
		Completed bool   `json:"completed"`
		Date      Date   `json:"date"`
	}

	// ReportSchedule triggers periodic report generation for a scope.
	ReportSchedule struct {
		ID      int64     `json:"id"`
		Scope   string    `json:"scope"`
		Every   Frequency `json:"every"`
		LastRun time.Time `json:"lastRun"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidProgress = errors.New("progress out of range")
	ErrUnknownProject  = errors.New("unknown project")
)

// Validate checks fields a create or update must satisfy. Defaults are filled
// by Normalize, so validation only rejects values that are present and wrong.
func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if p.PlanStatus != "" && !p.PlanStatus.Valid() {
		return ErrInvalidStatus
	}
	if p.ReportStatus != "" && !p.ReportStatus.Valid() {
		return ErrInvalidStatus
	}
	if p.Progress < 0 || p.Progress > 100 {
		return ErrInvalidProgress
	}
	return nil
}

// Normalize fills creation defaults: status idea, reporting status active,
// progress left at zero.
func (p *Project) Normalize() {
	if p.PlanStatus == "" {
		p.PlanStatus = StatusIdea
	}
	if p.ReportStatus == "" {
		p.ReportStatus = StatusActive
	}
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	switch b.Category {
	case CategoryDevelopment, CategoryHosting, CategoryMarketing, CategoryTools, CategoryDesign, CategoryDomain, CategoryOther:
	default:
		return ErrInvalidCategory
	}
	switch b.Type {
	case BudgetExpense, BudgetIncome:
	default:
		return errors.New("invalid budget type")
	}
	return nil
}

// Normalize fills budget defaults.
func (b *Budget) Normalize() {
	if b.Category == "" {
		b.Category = CategoryOther
	}
	if b.Type == "" {
		b.Type = BudgetExpense
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Category) == "" {
		return ErrInvalidCategory
	}
	return nil
}

func (s ReportSchedule) Validate() error {
	switch s.Every {
	case Daily, Weekly, Monthly:
	default:
		return errors.New("invalid frequency")
	}
	return nil
}
