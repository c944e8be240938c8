package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	applog "tempo/internal/log"
	"tempo/internal/report"
)

func reportCacheKey(from, to time.Time) string {
	return "report:" + from.Format("2006-01-02") + ":" + to.Format("2006-01-02")
}

// buildSummary aggregates the range, going through the report cache first.
func (s *Server) buildSummary(ctx context.Context, from, to time.Time) (report.Summary, error) {
	key := reportCacheKey(from, to)

	if summary, found := s.reportCache.Get(key); found {
		applog.FromContext(ctx).DebugContext(ctx, "Report cache hit", "from", from, "to", to)
		return summary, nil
	}

	entries, err := s.repo.ListEntries(ctx, from, to)
	if err != nil {
		return report.Summary{}, fmt.Errorf("list entries: %w", err)
	}
	projects, err := s.repo.ProjectMap(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("load projects: %w", err)
	}
	clients, err := s.repo.ClientMap(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("load clients: %w", err)
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("load settings: %w", err)
	}

	summary := report.Build(entries, projects, clients, settings, from, to, time.Now())

	s.reportCache.Set(key, summary)
	applog.FromContext(ctx).DebugContext(ctx, "Report cached",
		"from", from, "to", to,
		"total_seconds", summary.TotalSeconds,
		"revenue_cents", summary.Revenue.Cents)
	return summary, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r, time.Now())
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	summary, err := s.buildSummary(r.Context(), from, to)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Report error", "error", err, "from", from, "to", to)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(summary))
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	goal, err := s.repo.GetGoal(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	from, to := goal.Range()
	entries, err := s.repo.ListEntries(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	projects, err := s.repo.ProjectMap(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	clients, err := s.repo.ClientMap(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	settings, err := s.repo.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	progress := report.GoalProgress(goal, entries, projects, clients, settings, time.Now())
	writeJSON(w, http.StatusOK, progressJSON{
		Goal:    toGoalJSON(progress.Goal),
		Current: progress.Current,
		Percent: progress.Percent,
	})
}
