package http

import (
	"net/http"

	"tempo/internal/core"
	applog "tempo/internal/log"
)

type clientRequest struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	DefaultRateCents int64  `json:"default_rate_cents"`
}

func (req clientRequest) toClient() (core.Client, error) {
	c := core.Client{
		Name:        sanitizeInput(req.Name),
		Email:       sanitizeInput(req.Email),
		Address:     sanitizeInput(req.Address),
		DefaultRate: core.Money{Cents: req.DefaultRateCents},
	}
	return c, c.Validate()
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.repo.ListClients(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]clientJSON, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := req.toClient()
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := s.repo.CreateClient(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	c.ID = id
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Client created", "client_id", id, "name", c.Name)
	writeJSON(w, http.StatusCreated, toClientJSON(c))
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := s.repo.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClientJSON(c))
}

func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req clientRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	c, err := req.toClient()
	if err != nil {
		writeError(w, err)
		return
	}
	c.ID = id

	if err := s.repo.UpdateClient(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toClientJSON(c))
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.repo.DeleteClient(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

type projectRequest struct {
	ClientID        int64  `json:"client_id"`
	Name            string `json:"name"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	Billable        bool   `json:"billable"`
	Archived        bool   `json:"archived"`
	Color           string `json:"color"`
}

func (req projectRequest) toProject() (core.Project, error) {
	p := core.Project{
		ClientID:   req.ClientID,
		Name:       sanitizeInput(req.Name),
		HourlyRate: core.Money{Cents: req.HourlyRateCents},
		Billable:   req.Billable,
		Archived:   req.Archived,
		Color:      sanitizeInput(req.Color),
	}
	return p, p.Validate()
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.repo.ListProjects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]projectJSON, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectJSON(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := req.toProject()
	if err != nil {
		writeError(w, err)
		return
	}
	if p.ClientID != 0 {
		if _, err := s.repo.GetClient(r.Context(), p.ClientID); err != nil {
			writeError(w, err)
			return
		}
	}

	id, err := s.repo.CreateProject(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	p.ID = id
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Project created", "project_id", id, "name", p.Name)
	writeJSON(w, http.StatusCreated, toProjectJSON(p))
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.repo.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectJSON(p))
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := req.toProject()
	if err != nil {
		writeError(w, err)
		return
	}
	p.ID = id

	if err := s.repo.UpdateProject(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toProjectJSON(p))
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.repo.DeleteProject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

type goalRequest struct {
	Kind   string `json:"kind"`
	Period string `json:"period"`
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Target int64  `json:"target"`
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.repo.ListGoals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]goalJSON, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalJSON(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	g := core.Goal{
		Kind:   core.GoalKind(req.Kind),
		Period: core.GoalPeriod(req.Period),
		Year:   req.Year,
		Month:  req.Month,
		Target: req.Target,
	}
	if err := g.Validate(); err != nil {
		writeError(w, err)
		return
	}

	id, err := s.repo.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, err)
		return
	}
	g.ID = id
	writeJSON(w, http.StatusCreated, toGoalJSON(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req goalRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	g := core.Goal{
		ID:     id,
		Kind:   core.GoalKind(req.Kind),
		Period: core.GoalPeriod(req.Period),
		Year:   req.Year,
		Month:  req.Month,
		Target: req.Target,
	}
	if err := g.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.repo.UpdateGoal(r.Context(), g); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalJSON(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.repo.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.repo.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsJSON(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsJSON
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	settings := core.Settings{
		Currency:        sanitizeInput(req.Currency),
		TaxRateBps:      req.TaxRateBps,
		InvoicePrefix:   sanitizeInput(req.InvoicePrefix),
		NextInvoiceSeq:  req.NextInvoiceSeq,
		RoundingMinutes: req.RoundingMinutes,
	}
	if err := settings.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := s.repo.UpdateSettings(r.Context(), settings); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, toSettingsJSON(settings))
}
