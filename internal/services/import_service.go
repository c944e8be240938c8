package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"tempo/internal/core"
	"tempo/internal/csvio"
	"tempo/internal/storage"
)

// ImportReport summarizes one CSV import run.
type ImportReport struct {
	Imported        int              `json:"imported"`
	Duplicates      int              `json:"duplicates"`
	ClientsCreated  int              `json:"clients_created"`
	ProjectsCreated int              `json:"projects_created"`
	RowErrors       []csvio.RowError `json:"row_errors,omitempty"`
}

// ImportService reconciles CSV rows against the database: clients and
// projects are matched by name and created when missing, and rows whose
// project, timestamps and description already exist are skipped.
type ImportService struct {
	storage *storage.Repository
}

func NewImportService(storage *storage.Repository) *ImportService {
	return &ImportService{storage: storage}
}

// Import parses r and inserts the rows that are not already stored.
// Rejected lines are reported, not fatal; a parse failure of the whole
// stream is.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	rows, rowErrs, err := csvio.Parse(r)
	if err != nil {
		return ImportReport{}, fmt.Errorf("parse csv: %w", err)
	}

	report := ImportReport{RowErrors: rowErrs}
	clientIDs := map[string]int64{}
	projectIDs := map[string]int64{}

	for _, row := range rows {
		clientID, err := s.resolveClient(ctx, row.Client, clientIDs, &report)
		if err != nil {
			report.RowErrors = append(report.RowErrors, csvio.RowError{Line: row.Line, Err: err})
			continue
		}

		projectID, err := s.resolveProject(ctx, row.Project, clientID, projectIDs, &report)
		if err != nil {
			report.RowErrors = append(report.RowErrors, csvio.RowError{Line: row.Line, Err: err})
			continue
		}

		exists, err := s.storage.EntryExists(ctx, projectID, row.Start, row.End, strings.TrimSpace(row.Description))
		if err != nil {
			report.RowErrors = append(report.RowErrors, csvio.RowError{Line: row.Line, Err: err})
			continue
		}
		if exists {
			report.Duplicates++
			continue
		}

		entry := core.TimeEntry{
			ProjectID:   projectID,
			Description: strings.TrimSpace(row.Description),
			StartTime:   row.Start,
			EndTime:     row.End,
			Billable:    row.Billable,
			Tags:        row.Tags,
		}
		if _, err := s.storage.CreateEntry(ctx, entry); err != nil {
			report.RowErrors = append(report.RowErrors, csvio.RowError{Line: row.Line, Err: err})
			continue
		}
		report.Imported++
	}

	slog.InfoContext(ctx, "CSV import finished",
		"imported", report.Imported,
		"duplicates", report.Duplicates,
		"clients_created", report.ClientsCreated,
		"projects_created", report.ProjectsCreated,
		"rejected", len(report.RowErrors))
	return report, nil
}

// resolveClient returns the id for a client name, creating the client on
// first sight. An empty name means no client.
func (s *ImportService) resolveClient(ctx context.Context, name string, seen map[string]int64, report *ImportReport) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, nil
	}

	key := strings.ToLower(name)
	if id, ok := seen[key]; ok {
		return id, nil
	}

	client, err := s.storage.GetClientByName(ctx, name)
	if err == nil {
		seen[key] = client.ID
		return client.ID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	id, err := s.storage.CreateClient(ctx, core.Client{Name: name})
	if err != nil {
		return 0, fmt.Errorf("create client %q: %w", name, err)
	}
	report.ClientsCreated++
	seen[key] = id
	return id, nil
}

// resolveProject returns the id for a project name, creating a billable
// project under clientID on first sight. Rows without a project name go to
// a catch-all "Imported" project so nothing is dropped.
func (s *ImportService) resolveProject(ctx context.Context, name string, clientID int64, seen map[string]int64, report *ImportReport) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Imported"
	}

	key := strings.ToLower(name)
	if id, ok := seen[key]; ok {
		return id, nil
	}

	project, err := s.storage.GetProjectByName(ctx, name)
	if err == nil {
		seen[key] = project.ID
		return project.ID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	id, err := s.storage.CreateProject(ctx, core.Project{
		Name:     name,
		ClientID: clientID,
		Billable: true,
	})
	if err != nil {
		return 0, fmt.Errorf("create project %q: %w", name, err)
	}
	report.ProjectsCreated++
	seen[key] = id
	return id, nil
}
