// Package report computes duration and revenue summaries over time entries.
// All functions are pure: they take already-loaded rows plus the project and
// client lookup tables and never touch storage.
package report

import (
	"sort"
	"time"

	"tempo/internal/core"
)

type (
	ProjectRow struct {
		ProjectID int64
		Name      string
		Seconds   int64
		Amount    core.Money
	}

	ClientRow struct {
		ClientID int64
		Name     string
		Seconds  int64
		Amount   core.Money
	}

	DayRow struct {
		Date    time.Time // midnight UTC
		Seconds int64
		Amount  core.Money
	}

	// Summary is the aggregated view for a date range.
	Summary struct {
		From         time.Time
		To           time.Time
		TotalSeconds int64
		Revenue      core.Money
		ByProject    []ProjectRow
		ByClient     []ClientRow
		ByDay        []DayRow
	}

	// Progress reports how far along a goal is.
	Progress struct {
		Goal    core.Goal
		Current int64 // cents or seconds, matching the goal kind
		Percent int   // clamped to [0, 100]
	}
)

// BilledSeconds rounds a duration up to the configured billing increment.
// A zero increment bills the exact duration.
func BilledSeconds(seconds int64, roundingMinutes int) int64 {
	if seconds <= 0 {
		return 0
	}
	if roundingMinutes <= 0 {
		return seconds
	}
	inc := int64(roundingMinutes) * 60
	return (seconds + inc - 1) / inc * inc
}

// EntryAmount prices a duration at an hourly rate, after rounding the
// duration up to the billing increment. Half-up rounding on the cent.
func EntryAmount(seconds int64, rate core.Money, roundingMinutes int) core.Money {
	billed := BilledSeconds(seconds, roundingMinutes)
	product := billed * rate.Cents
	cents := product / 3600
	if product%3600 >= 1800 {
		cents++
	}
	return core.Money{Cents: cents}
}

// EntryRate resolves the rate used to price an entry: the project rate, or
// the client default when the project carries none.
func EntryRate(p core.Project, c core.Client) core.Money {
	if p.HourlyRate.Cents > 0 {
		return p.HourlyRate
	}
	return c.DefaultRate
}

// InRange keeps entries that start inside the half-open interval [from, to).
func InRange(entries []core.TimeEntry, from, to time.Time) []core.TimeEntry {
	var out []core.TimeEntry
	for _, e := range entries {
		if e.StartTime.Before(from) || !e.StartTime.Before(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Build aggregates entries into per-project, per-client and per-day rows.
// Running entries are measured up to now. Revenue only accrues for billable
// entries on billable projects.
func Build(entries []core.TimeEntry, projects map[int64]core.Project, clients map[int64]core.Client, settings core.Settings, from, to, now time.Time) Summary {
	s := Summary{From: from, To: to}

	byProject := make(map[int64]*ProjectRow)
	byClient := make(map[int64]*ClientRow)
	byDay := make(map[time.Time]*DayRow)

	for _, e := range InRange(entries, from, to) {
		seconds := e.DurationSeconds(now)
		s.TotalSeconds += seconds

		project := projects[e.ProjectID]
		client := clients[project.ClientID]

		var amount core.Money
		if e.Billable && project.Billable {
			amount = EntryAmount(seconds, EntryRate(project, client), settings.RoundingMinutes)
			s.Revenue = s.Revenue.Add(amount)
		}

		pr, ok := byProject[e.ProjectID]
		if !ok {
			name := project.Name
			if name == "" {
				name = "(no project)"
			}
			pr = &ProjectRow{ProjectID: e.ProjectID, Name: name}
			byProject[e.ProjectID] = pr
		}
		pr.Seconds += seconds
		pr.Amount = pr.Amount.Add(amount)

		cr, ok := byClient[project.ClientID]
		if !ok {
			name := client.Name
			if name == "" {
				name = "(no client)"
			}
			cr = &ClientRow{ClientID: project.ClientID, Name: name}
			byClient[project.ClientID] = cr
		}
		cr.Seconds += seconds
		cr.Amount = cr.Amount.Add(amount)

		day := time.Date(e.StartTime.Year(), e.StartTime.Month(), e.StartTime.Day(), 0, 0, 0, 0, time.UTC)
		dr, ok := byDay[day]
		if !ok {
			dr = &DayRow{Date: day}
			byDay[day] = dr
		}
		dr.Seconds += seconds
		dr.Amount = dr.Amount.Add(amount)
	}

	for _, r := range byProject {
		s.ByProject = append(s.ByProject, *r)
	}
	sort.Slice(s.ByProject, func(i, j int) bool {
		if s.ByProject[i].Seconds != s.ByProject[j].Seconds {
			return s.ByProject[i].Seconds > s.ByProject[j].Seconds
		}
		return s.ByProject[i].Name < s.ByProject[j].Name
	})

	for _, r := range byClient {
		s.ByClient = append(s.ByClient, *r)
	}
	sort.Slice(s.ByClient, func(i, j int) bool {
		if s.ByClient[i].Seconds != s.ByClient[j].Seconds {
			return s.ByClient[i].Seconds > s.ByClient[j].Seconds
		}
		return s.ByClient[i].Name < s.ByClient[j].Name
	})

	for _, r := range byDay {
		s.ByDay = append(s.ByDay, *r)
	}
	sort.Slice(s.ByDay, func(i, j int) bool { return s.ByDay[i].Date.Before(s.ByDay[j].Date) })

	return s
}

// GoalProgress measures a goal against the entries in its period.
func GoalProgress(g core.Goal, entries []core.TimeEntry, projects map[int64]core.Project, clients map[int64]core.Client, settings core.Settings, now time.Time) Progress {
	from, to := g.Range()
	summary := Build(entries, projects, clients, settings, from, to, now)

	p := Progress{Goal: g}
	switch g.Kind {
	case core.GoalHours:
		p.Current = summary.TotalSeconds
	default:
		p.Current = summary.Revenue.Cents
	}
	if g.Target > 0 {
		pct := p.Current * 100 / g.Target
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
		p.Percent = int(pct)
	}
	return p
}
