package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tempo/internal/core"
)

const (
	createProjectSQL    = `INSERT INTO projects (client_id, name, hourly_rate_cents, billable, archived, color, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	updateProjectSQL    = `UPDATE projects SET client_id = ?, name = ?, hourly_rate_cents = ?, billable = ?, archived = ?, color = ? WHERE id = ?`
	deleteProjectSQL    = `DELETE FROM projects WHERE id = ?`
	getProjectSQL       = `SELECT id, client_id, name, hourly_rate_cents, billable, archived, color FROM projects WHERE id = ?`
	getProjectByNameSQL = `SELECT id, client_id, name, hourly_rate_cents, billable, archived, color FROM projects WHERE lower(name) = lower(?)`
	listProjectsSQL     = `SELECT id, client_id, name, hourly_rate_cents, billable, archived, color FROM projects ORDER BY lower(name)`
)

func scanProject(row interface{ Scan(...any) error }) (core.Project, error) {
	var p core.Project
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.HourlyRate.Cents, &p.Billable, &p.Archived, &p.Color)
	return p, err
}

func (r *Repository) CreateProject(ctx context.Context, p core.Project) (int64, error) {
	res, err := r.db.ExecContext(ctx, createProjectSQL, p.ClientID, p.Name, p.HourlyRate.Cents, p.Billable, p.Archived, p.Color, nowUnix())
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateProject(ctx context.Context, p core.Project) error {
	res, err := r.db.ExecContext(ctx, updateProjectSQL, p.ClientID, p.Name, p.HourlyRate.Cents, p.Billable, p.Archived, p.Color, p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteProjectSQL, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) GetProject(ctx context.Context, id int64) (core.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, getProjectSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// GetProjectByName looks a project up case-insensitively, for CSV import
// reconciliation.
func (r *Repository) GetProjectByName(ctx context.Context, name string) (core.Project, error) {
	p, err := scanProject(r.db.QueryRowContext(ctx, getProjectByNameSQL, name))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Project{}, ErrNotFound
	}
	if err != nil {
		return core.Project{}, fmt.Errorf("get project by name: %w", err)
	}
	return p, nil
}

func (r *Repository) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := r.db.QueryContext(ctx, listProjectsSQL)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []core.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ProjectMap returns all projects keyed by id, for aggregation lookups.
func (r *Repository) ProjectMap(ctx context.Context) (map[int64]core.Project, error) {
	projects, err := r.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[int64]core.Project, len(projects))
	for _, p := range projects {
		m[p.ID] = p
	}
	return m, nil
}
