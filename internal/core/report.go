// Package core holds the planboard domain model and the report aggregation
// engine. Everything here is pure: no I/O, no clocks other than the instant
// passed in, no mutation of the inputs.
package core

import (
	"math"
	"strconv"
	"time"
)

// Scope selects the projects a report is computed over: every project, or a
// single one addressed by id. An id that matches no project yields an empty
// report, never an error.
type Scope struct {
	all       bool
	projectID int64
}

// ScopeAll covers every project.
func ScopeAll() Scope { return Scope{all: true} }

// ScopeProject covers the single project with the given id.
func ScopeProject(id int64) Scope { return Scope{projectID: id} }

// ParseScope decodes the wire form of a scope: "all" (or empty) selects all
// projects, a decimal integer selects one. Anything else selects nothing,
// matching the engine's forgiving treatment of malformed input.
func ParseScope(s string) Scope {
	if s == "" || s == "all" {
		return ScopeAll()
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return ScopeProject(0)
	}
	return ScopeProject(id)
}

// All reports whether the scope covers every project.
func (s Scope) All() bool { return s.all }

// ProjectID returns the addressed project id; meaningless when All is true.
func (s Scope) ProjectID() int64 { return s.projectID }

func (s Scope) String() string {
	if s.all {
		return "all"
	}
	return strconv.FormatInt(s.projectID, 10)
}

// ProjectDetail is the derived per-project row of a report.
type ProjectDetail struct {
	ProjectID     int64  `json:"projectId"`
	Name          string `json:"name"`
	Color         string `json:"color,omitempty"`
	BudgetAmount  Cents  `json:"budgetAmount"`
	Spent         Cents  `json:"spent"`
	Remaining     Cents  `json:"remaining"`
	Progress      int    `json:"progress"`
	DaysRemaining int    `json:"daysRemaining"`
	IsOverBudget  bool   `json:"isOverBudget"`
	IsOverdue     bool   `json:"isOverdue"`
}

// ReportData is the computed view-model for one report run. It is never
// mutated after computation; archived copies stay as they were generated.
type ReportData struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Scope       string    `json:"scope"`

	TotalProjects     int `json:"totalProjects"`
	ActiveProjects    int `json:"activeProjects"`
	ReviewProjects    int `json:"reviewProjects"`
	CompletedProjects int `json:"completedProjects"`

	TotalBudget       Cents   `json:"totalBudget"`
	TotalExpenses     Cents   `json:"totalExpenses"`
	RemainingBudget   Cents   `json:"remainingBudget"`
	BudgetUsedPercent float64 `json:"budgetUsedPercent"`

	CompletedTasks     int     `json:"completedTasks"`
	PendingTasks       int     `json:"pendingTasks"`
	TaskCompletionRate float64 `json:"taskCompletionRate"`

	ProjectDetails    []ProjectDetail  `json:"projectDetails"`
	ExpenseByCategory map[string]Cents `json:"expenseByCategory"`
}

// ReportInput is the snapshot of entity collections a report is computed
// from. The caller fetches it before invoking ComputeReport; the engine never
// reaches back into a store.
type ReportInput struct {
	Projects []Project
	Budgets  []Budget
	Expenses []Expense
	Tasks    []Task
}

// ComputeReport aggregates the input collections into a ReportData for the
// given scope. Empty inputs yield zeros and empty collections.
//
// Per-project spend sums raw expense records; Budget.Spent is a separately
// maintained rollup and is deliberately not consulted here. When several
// budget rows reference the same project only the first encountered is used;
// the planning UI writes at most one per project and extra rows are silently
// ignored rather than summed.
func ComputeReport(in ReportInput, scope Scope, now time.Time) ReportData {
	r := ReportData{
		GeneratedAt:       now,
		Scope:             scope.String(),
		ExpenseByCategory: make(map[string]Cents),
	}

	var projects []Project
	if scope.All() {
		projects = in.Projects
	} else {
		for _, p := range in.Projects {
			if p.ID == scope.ProjectID() {
				projects = append(projects, p)
			}
		}
	}

	r.TotalProjects = len(projects)
	inScope := make(map[int64]bool, len(projects))
	for _, p := range projects {
		inScope[p.ID] = true
		switch p.ReportStatus {
		case StatusActive:
			r.ActiveProjects++
		case StatusReview:
			r.ReviewProjects++
		case StatusCompleted:
			r.CompletedProjects++
		}
	}

	linked := func(id *int64) bool { return id != nil && inScope[*id] }

	for _, b := range in.Budgets {
		if linked(b.ProjectID) {
			r.TotalBudget += b.Amount
		}
	}
	for _, e := range in.Expenses {
		if linked(e.ProjectID) {
			r.TotalExpenses += e.Amount
			r.ExpenseByCategory[e.Category] += e.Amount
		}
	}
	r.RemainingBudget = r.TotalBudget - r.TotalExpenses
	if r.TotalBudget > 0 {
		r.BudgetUsedPercent = float64(r.TotalExpenses) / float64(r.TotalBudget) * 100
	}

	var taskCount int
	for _, t := range in.Tasks {
		if !linked(t.ProjectID) {
			continue
		}
		taskCount++
		if t.Completed {
			r.CompletedTasks++
		} else {
			r.PendingTasks++
		}
	}
	if taskCount > 0 {
		r.TaskCompletionRate = float64(r.CompletedTasks) / float64(taskCount) * 100
	}

	for _, p := range projects {
		d := ProjectDetail{
			ProjectID: p.ID,
			Name:      p.Name,
			Color:     p.Color,
			Progress:  p.Progress,
		}
		for _, b := range in.Budgets {
			if b.ProjectID != nil && *b.ProjectID == p.ID {
				d.BudgetAmount = b.Amount
				break
			}
		}
		for _, e := range in.Expenses {
			if e.ProjectID != nil && *e.ProjectID == p.ID {
				d.Spent += e.Amount
			}
		}
		d.Remaining = d.BudgetAmount - d.Spent
		d.IsOverBudget = d.Remaining < 0
		if !p.EndDate.IsZero() {
			d.DaysRemaining = daysRemaining(p.EndDate.Time, now)
			d.IsOverdue = d.DaysRemaining < 0
		}
		r.ProjectDetails = append(r.ProjectDetails, d)
	}

	return r
}

// daysRemaining counts whole days from now until end, rounding partial days
// up toward more-remaining. Ten days past due is -10, not -11.
func daysRemaining(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
