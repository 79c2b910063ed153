// Package storage is the SQLite-backed entity store and report archive.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"planboard/internal/core"
	"planboard/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ store.EntityStore   = (*SQLiteRepository)(nil)
	_ store.ReportArchive = (*SQLiteRepository)(nil)
	_ store.ScheduleStore = (*SQLiteRepository)(nil)
	_ store.AlertStore    = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Dates persist as "2006-01-02" text; empty means unset.
func dateToDB(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func dateFromDB(s string) core.Date {
	if s == "" {
		return core.Date{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}

func projectIDToDB(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func projectIDFromDB(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, client, plan_status, report_status, color, progress,
		       start_date, end_date, tags, links
		FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		var p core.Project
		var start, end, tags, links string
		if err := rows.Scan(&p.ID, &p.Name, &p.Client, &p.PlanStatus, &p.ReportStatus,
			&p.Color, &p.Progress, &start, &end, &tags, &links); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.StartDate = dateFromDB(start)
		p.EndDate = dateFromDB(end)
		// Tags tolerates both array and string-wrapped storage shapes.
		_ = json.Unmarshal([]byte(tags), &p.Tags)
		_ = json.Unmarshal([]byte(links), &p.Links)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p core.Project) (core.Project, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return core.Project{}, err
	}

	tags, _ := json.Marshal(p.Tags)
	links, _ := json.Marshal(p.Links)
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (name, client, plan_status, report_status, color, progress,
		                      start_date, end_date, tags, links)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Client, p.PlanStatus, p.ReportStatus, p.Color, p.Progress,
		dateToDB(p.StartDate), dateToDB(p.EndDate), string(tags), string(links))
	if err != nil {
		return core.Project{}, fmt.Errorf("create project: %w", err)
	}

	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Project{}, fmt.Errorf("project insert id: %w", err)
	}

	slog.InfoContext(ctx, "Project created",
		"id", p.ID,
		"name", p.Name,
		"plan_status", p.PlanStatus)
	return p, nil
}

func (r *SQLiteRepository) UpdateProject(ctx context.Context, p core.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tags, _ := json.Marshal(p.Tags)
	links, _ := json.Marshal(p.Links)
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET name = ?, client = ?, plan_status = ?, report_status = ?, color = ?,
		    progress = ?, start_date = ?, end_date = ?, tags = ?, links = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.Name, p.Client, p.PlanStatus, p.ReportStatus, p.Color,
		p.Progress, dateToDB(p.StartDate), dateToDB(p.EndDate), string(tags), string(links),
		p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

// SetProjectProgress updates the progress column and nothing else.
// Last write wins.
func (r *SQLiteRepository) SetProjectProgress(ctx context.Context, id int64, progress int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET progress = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		progress, id)
	if err != nil {
		return fmt.Errorf("set project progress: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, name, amount_cents, spent_cents, category, type, date, notes
		FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		var b core.Budget
		var pid sql.NullInt64
		var date string
		if err := rows.Scan(&b.ID, &pid, &b.Name, &b.Amount, &b.Spent,
			&b.Category, &b.Type, &date, &b.Notes); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.ProjectID = projectIDFromDB(pid)
		b.Date = dateFromDB(date)
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.Normalize()
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (project_id, name, amount_cents, spent_cents, category, type, date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		projectIDToDB(b.ProjectID), b.Name, b.Amount, b.Spent, b.Category, b.Type,
		dateToDB(b.Date), b.Notes)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget insert id: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, category, amount_cents, date FROM expenses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		var pid sql.NullInt64
		var date string
		if err := rows.Scan(&e.ID, &pid, &e.Category, &e.Amount, &date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.ProjectID = projectIDFromDB(pid)
		e.Date = dateFromDB(date)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (project_id, category, amount_cents, date) VALUES (?, ?, ?, ?)`,
		projectIDToDB(e.ProjectID), e.Category, e.Amount, dateToDB(e.Date))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense insert id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context) ([]core.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, project_id, completed, date FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []core.Task
	for rows.Next() {
		var t core.Task
		var pid sql.NullInt64
		var date string
		if err := rows.Scan(&t.ID, &pid, &t.Completed, &date); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.ProjectID = projectIDFromDB(pid)
		t.Date = dateFromDB(date)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, t core.Task) (core.Task, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (project_id, completed, date) VALUES (?, ?, ?)`,
		projectIDToDB(t.ProjectID), t.Completed, dateToDB(t.Date))
	if err != nil {
		return core.Task{}, fmt.Errorf("create task: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.Task{}, fmt.Errorf("task insert id: %w", err)
	}
	return t, nil
}

// AppendSnapshot stores the report as an opaque JSON blob and trims the
// archive to the newest ArchiveLimit rows in the same transaction.
func (r *SQLiteRepository) AppendSnapshot(ctx context.Context, report core.ReportData) (core.Snapshot, error) {
	blob, err := json.Marshal(report)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("marshal report: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO report_snapshots (report, created_at) VALUES (?, ?)`,
		string(blob), now)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("snapshot insert id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM report_snapshots
		WHERE id NOT IN (SELECT id FROM report_snapshots ORDER BY id DESC LIMIT ?)`,
		core.ArchiveLimit)
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("trim archive: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Snapshot{}, fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Report snapshot archived",
		"id", id,
		"scope", report.Scope,
		"total_projects", report.TotalProjects)
	return core.Snapshot{ID: id, CreatedAt: now, Report: report}, nil
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]core.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, report, created_at FROM report_snapshots ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []core.Snapshot
	for rows.Next() {
		var s core.Snapshot
		var blob string
		if err := rows.Scan(&s.ID, &blob, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(blob), &s.Report); err != nil {
			return nil, fmt.Errorf("decode snapshot %d: %w", s.ID, err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id int64) (core.Snapshot, error) {
	var s core.Snapshot
	var blob string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, report, created_at FROM report_snapshots WHERE id = ?`, id).
		Scan(&s.ID, &blob, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Snapshot{}, store.ErrNotFound
	}
	if err != nil {
		return core.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(blob), &s.Report); err != nil {
		return core.Snapshot{}, fmt.Errorf("decode snapshot %d: %w", id, err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSchedules(ctx context.Context) ([]core.ReportSchedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, scope, every, last_run FROM report_schedules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []core.ReportSchedule
	for rows.Next() {
		var s core.ReportSchedule
		var lastRun sql.NullTime
		if err := rows.Scan(&s.ID, &s.Scope, &s.Every, &lastRun); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		if lastRun.Valid {
			s.LastRun = lastRun.Time
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *SQLiteRepository) CreateSchedule(ctx context.Context, s core.ReportSchedule) (core.ReportSchedule, error) {
	if err := s.Validate(); err != nil {
		return core.ReportSchedule{}, err
	}
	if s.Scope == "" {
		s.Scope = "all"
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO report_schedules (scope, every) VALUES (?, ?)`, s.Scope, s.Every)
	if err != nil {
		return core.ReportSchedule{}, fmt.Errorf("create schedule: %w", err)
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return core.ReportSchedule{}, fmt.Errorf("schedule insert id: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) MarkScheduleRun(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE report_schedules SET last_run = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark schedule run: %w", err)
	}
	return requireRow(res)
}

// CreateAlert inserts the alert unless the (snapshot, project, kind) triple
// already exists.
func (r *SQLiteRepository) CreateAlert(ctx context.Context, a core.Alert) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (snapshot_id, project_id, kind, message)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (snapshot_id, project_id, kind) DO NOTHING`,
		a.SnapshotID, a.ProjectID, a.Kind, a.Message)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListAlerts(ctx context.Context) ([]core.Alert, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, snapshot_id, project_id, kind, message, created_at
		FROM alerts ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		var a core.Alert
		if err := rows.Scan(&a.ID, &a.SnapshotID, &a.ProjectID, &a.Kind, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
