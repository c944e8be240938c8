package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tempo/internal/core"
)

const (
	createGoalSQL = `INSERT INTO goals (kind, period, year, month, target) VALUES (?, ?, ?, ?, ?)`
	updateGoalSQL = `UPDATE goals SET kind = ?, period = ?, year = ?, month = ?, target = ? WHERE id = ?`
	deleteGoalSQL = `DELETE FROM goals WHERE id = ?`
	getGoalSQL    = `SELECT id, kind, period, year, month, target FROM goals WHERE id = ?`
	listGoalsSQL  = `SELECT id, kind, period, year, month, target FROM goals ORDER BY year, month, kind`
)

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var g core.Goal
	err := row.Scan(&g.ID, &g.Kind, &g.Period, &g.Year, &g.Month, &g.Target)
	return g, err
}

func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := r.db.ExecContext(ctx, createGoalSQL, g.Kind, g.Period, g.Year, g.Month, g.Target)
	if err != nil {
		return 0, fmt.Errorf("create goal: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, updateGoalSQL, g.Kind, g.Period, g.Year, g.Month, g.Target, g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteGoalSQL, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx, getGoalSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, listGoalsSQL)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
