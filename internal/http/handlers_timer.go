package http

import (
	"net/http"
	"time"

	"tempo/internal/core"
	applog "tempo/internal/log"
)

type startTimerRequest struct {
	ProjectID   int64    `json:"project_id"`
	Description string   `json:"description"`
	Billable    *bool    `json:"billable"`
	Tags        []string `json:"tags"`
}

func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	entry := core.TimeEntry{
		ProjectID:   req.ProjectID,
		Description: sanitizeInput(req.Description),
		StartTime:   time.Now().UTC().Truncate(time.Second),
		Billable:    true,
		Tags:        req.Tags,
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}
	if entry.ProjectID != 0 {
		if _, err := s.repo.GetProject(r.Context(), entry.ProjectID); err != nil {
			writeError(w, err)
			return
		}
	}

	id, err := s.repo.StartTimer(r.Context(), entry)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Start timer error", "error", err)
		writeError(w, err)
		return
	}
	entry.ID = id
	s.invalidateReports()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Timer started",
		"entry_id", id,
		"project_id", entry.ProjectID)
	writeJSON(w, http.StatusCreated, toEntryJSON(entry, time.Now()))
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	entry, err := s.repo.StopTimer(r.Context(), time.Now().UTC().Truncate(time.Second))
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Timer stopped",
		"entry_id", entry.ID,
		"seconds", entry.DurationSeconds(time.Now()))
	writeJSON(w, http.StatusOK, toEntryJSON(entry, time.Now()))
}

func (s *Server) handleCurrentTimer(w http.ResponseWriter, r *http.Request) {
	entry, err := s.repo.RunningEntry(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(entry, time.Now()))
}

type entryRequest struct {
	ProjectID   int64    `json:"project_id"`
	Description string   `json:"description"`
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Billable    bool     `json:"billable"`
	Tags        []string `json:"tags"`
}

func (req entryRequest) toEntry() (core.TimeEntry, error) {
	start, err := parseDate(req.Start)
	if err != nil {
		return core.TimeEntry{}, err
	}
	entry := core.TimeEntry{
		ProjectID:   req.ProjectID,
		Description: sanitizeInput(req.Description),
		StartTime:   start,
		Billable:    req.Billable,
		Tags:        req.Tags,
	}
	if req.End != "" {
		end, err := parseDate(req.End)
		if err != nil {
			return core.TimeEntry{}, err
		}
		entry.EndTime = end
	}
	return entry, entry.Validate()
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r, time.Now())
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	entries, err := s.repo.ListEntries(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntriesJSON(entries, time.Now()))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.repo.CreateEntry(r.Context(), entry)
	if err != nil {
		writeError(w, err)
		return
	}
	entry.ID = id
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toEntryJSON(entry, time.Now()))
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	entry, err := s.repo.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryJSON(entry, time.Now()))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	entry, err := req.toEntry()
	if err != nil {
		writeError(w, err)
		return
	}
	entry.ID = id

	if err := s.repo.UpdateEntry(r.Context(), entry); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toEntryJSON(entry, time.Now()))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.repo.DeleteEntry(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}
