package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tempo/internal/core"
)

const (
	createEntrySQL  = `INSERT INTO time_entries (project_id, description, start_time, end_time, billable, tags, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	updateEntrySQL  = `UPDATE time_entries SET project_id = ?, description = ?, start_time = ?, end_time = ?, billable = ?, tags = ? WHERE id = ?`
	deleteEntrySQL  = `DELETE FROM time_entries WHERE id = ?`
	getEntrySQL     = `SELECT id, project_id, description, start_time, end_time, billable, tags FROM time_entries WHERE id = ?`
	listEntriesSQL  = `SELECT id, project_id, description, start_time, end_time, billable, tags FROM time_entries WHERE start_time >= ? AND start_time < ? ORDER BY start_time`
	runningEntrySQL = `SELECT id, project_id, description, start_time, end_time, billable, tags FROM time_entries WHERE end_time IS NULL LIMIT 1`
	stopRunningSQL  = `UPDATE time_entries SET end_time = ? WHERE end_time IS NULL`
	entryExistsSQL  = `SELECT EXISTS(SELECT 1 FROM time_entries WHERE project_id = ? AND start_time = ? AND end_time IS ? AND description = ?)`
)

func scanEntry(row interface{ Scan(...any) error }) (core.TimeEntry, error) {
	var (
		e     core.TimeEntry
		start int64
		end   sql.NullInt64
		tags  string
	)
	if err := row.Scan(&e.ID, &e.ProjectID, &e.Description, &start, &end, &e.Billable, &tags); err != nil {
		return core.TimeEntry{}, err
	}
	e.StartTime = time.Unix(start, 0).UTC()
	e.EndTime = unixOrZero(end)
	e.Tags = splitTags(tags)
	return e, nil
}

func (r *Repository) CreateEntry(ctx context.Context, e core.TimeEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, createEntrySQL,
		e.ProjectID, e.Description, e.StartTime.Unix(), nullableUnix(e.EndTime), e.Billable, joinTags(e.Tags), nowUnix())
	if err != nil {
		return 0, fmt.Errorf("create entry: %w", err)
	}
	return res.LastInsertId()
}

func (r *Repository) UpdateEntry(ctx context.Context, e core.TimeEntry) error {
	res, err := r.db.ExecContext(ctx, updateEntrySQL,
		e.ProjectID, e.Description, e.StartTime.Unix(), nullableUnix(e.EndTime), e.Billable, joinTags(e.Tags), e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) DeleteEntry(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteEntrySQL, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return requireRow(res)
}

func (r *Repository) GetEntry(ctx context.Context, id int64) (core.TimeEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, getEntrySQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TimeEntry{}, ErrNotFound
	}
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns entries starting inside the half-open [from, to)
// interval, ordered by start time.
func (r *Repository) ListEntries(ctx context.Context, from, to time.Time) ([]core.TimeEntry, error) {
	rows, err := r.db.QueryContext(ctx, listEntriesSQL, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []core.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RunningEntry returns the currently running entry, if any.
func (r *Repository) RunningEntry(ctx context.Context) (core.TimeEntry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, runningEntrySQL))
	if errors.Is(err, sql.ErrNoRows) {
		return core.TimeEntry{}, core.ErrNoRunningEntry
	}
	if err != nil {
		return core.TimeEntry{}, fmt.Errorf("get running entry: %w", err)
	}
	return e, nil
}

// StartTimer stops any running entry at startTime and inserts a new running
// entry, in one transaction so there is never more than one open timer.
func (r *Repository) StartTimer(ctx context.Context, e core.TimeEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stopRunningSQL, e.StartTime.Unix()); err != nil {
		return 0, fmt.Errorf("stop running entry: %w", err)
	}

	res, err := tx.ExecContext(ctx, createEntrySQL,
		e.ProjectID, e.Description, e.StartTime.Unix(), sql.NullInt64{}, e.Billable, joinTags(e.Tags), nowUnix())
	if err != nil {
		return 0, fmt.Errorf("start entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// StopTimer ends the running entry at endTime and returns it.
func (r *Repository) StopTimer(ctx context.Context, endTime time.Time) (core.TimeEntry, error) {
	running, err := r.RunningEntry(ctx)
	if err != nil {
		return core.TimeEntry{}, err
	}
	if endTime.Before(running.StartTime) {
		return core.TimeEntry{}, core.ErrEndBeforeStart
	}
	running.EndTime = endTime.UTC()
	if err := r.UpdateEntry(ctx, running); err != nil {
		return core.TimeEntry{}, err
	}
	return running, nil
}

// EntryExists reports whether an entry with the same project, start, end
// and description is already stored. This backs the CSV import dedupe.
func (r *Repository) EntryExists(ctx context.Context, projectID int64, start, end time.Time, description string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, entryExistsSQL, projectID, start.Unix(), nullableUnix(end), description).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check entry exists: %w", err)
	}
	return exists, nil
}
