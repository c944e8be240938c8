package report

import (
	"testing"
	"time"

	"tempo/internal/core"
)

func TestBilledSeconds(t *testing.T) {
	cases := []struct {
		seconds int64
		inc     int
		want    int64
	}{
		{0, 15, 0},
		{-5, 15, 0},
		{1, 15, 900},   // rounds up to a full increment
		{900, 15, 900}, // exact increment stays
		{901, 15, 1800},
		{3600, 15, 3600},
		{1234, 0, 1234}, // no rounding configured
		{59, 1, 60},
	}
	for _, tc := range cases {
		if got := BilledSeconds(tc.seconds, tc.inc); got != tc.want {
			t.Errorf("BilledSeconds(%d, %d) = %d, want %d", tc.seconds, tc.inc, got, tc.want)
		}
	}
}

func TestEntryAmount(t *testing.T) {
	rate := core.Money{Cents: 9000} // 90.00/h
	cases := []struct {
		seconds int64
		inc     int
		want    int64
	}{
		{3600, 0, 9000},  // one hour
		{1800, 0, 4500},  // half hour
		{1, 0, 3},        // 2.5 cents rounds up
		{1700, 15, 4500}, // 28m20s billed as 30m
		{0, 15, 0},
	}
	for _, tc := range cases {
		got := EntryAmount(tc.seconds, rate, tc.inc)
		if got.Cents != tc.want {
			t.Errorf("EntryAmount(%d, %d) = %d, want %d", tc.seconds, tc.inc, got.Cents, tc.want)
		}
	}
}

func TestEntryRate(t *testing.T) {
	p := core.Project{HourlyRate: core.Money{Cents: 8000}}
	c := core.Client{DefaultRate: core.Money{Cents: 6000}}
	if got := EntryRate(p, c); got.Cents != 8000 {
		t.Fatalf("project rate should win, got %d", got.Cents)
	}
	if got := EntryRate(core.Project{}, c); got.Cents != 6000 {
		t.Fatalf("client default should apply, got %d", got.Cents)
	}
}

func fixtureData() ([]core.TimeEntry, map[int64]core.Project, map[int64]core.Client, core.Settings) {
	day1 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	entries := []core.TimeEntry{
		{ID: 1, ProjectID: 1, StartTime: day1, EndTime: day1.Add(2 * time.Hour), Billable: true},
		{ID: 2, ProjectID: 1, StartTime: day1.Add(3 * time.Hour), EndTime: day1.Add(4 * time.Hour), Billable: true},
		{ID: 3, ProjectID: 2, StartTime: day2, EndTime: day2.Add(time.Hour), Billable: true},
		{ID: 4, ProjectID: 0, StartTime: day2.Add(2 * time.Hour), EndTime: day2.Add(3 * time.Hour), Billable: false},
		// outside the queried range
		{ID: 5, ProjectID: 1, StartTime: day1.AddDate(0, 1, 0), EndTime: day1.AddDate(0, 1, 0).Add(time.Hour), Billable: true},
	}
	projects := map[int64]core.Project{
		1: {ID: 1, ClientID: 1, Name: "Website", HourlyRate: core.Money{Cents: 8000}, Billable: true},
		2: {ID: 2, ClientID: 1, Name: "Support", Billable: true}, // falls back to client rate
	}
	clients := map[int64]core.Client{
		1: {ID: 1, Name: "Acme", DefaultRate: core.Money{Cents: 6000}},
	}
	settings := core.Settings{Currency: "EUR", NextInvoiceSeq: 1}
	return entries, projects, clients, settings
}

func TestBuild(t *testing.T) {
	entries, projects, clients, settings := fixtureData()
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	s := Build(entries, projects, clients, settings, from, to, now)

	if s.TotalSeconds != 5*3600 {
		t.Fatalf("total seconds = %d, want %d", s.TotalSeconds, 5*3600)
	}
	// 3h * 80.00 + 1h * 60.00 = 300.00
	if s.Revenue.Cents != 30000 {
		t.Fatalf("revenue = %d, want 30000", s.Revenue.Cents)
	}

	if len(s.ByProject) != 3 {
		t.Fatalf("project rows = %d, want 3", len(s.ByProject))
	}
	if s.ByProject[0].Name != "Website" || s.ByProject[0].Seconds != 3*3600 || s.ByProject[0].Amount.Cents != 24000 {
		t.Fatalf("top project row = %+v", s.ByProject[0])
	}

	if len(s.ByClient) != 2 {
		t.Fatalf("client rows = %d, want 2", len(s.ByClient))
	}
	if s.ByClient[0].Name != "Acme" || s.ByClient[0].Amount.Cents != 30000 {
		t.Fatalf("client row = %+v", s.ByClient[0])
	}

	if len(s.ByDay) != 2 {
		t.Fatalf("day rows = %d, want 2", len(s.ByDay))
	}
	if !s.ByDay[0].Date.Before(s.ByDay[1].Date) {
		t.Fatalf("day rows not sorted ascending")
	}
}

func TestBuildRunningEntry(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start.Add(30 * time.Minute)
	entries := []core.TimeEntry{{ID: 1, ProjectID: 1, StartTime: start, Billable: true}}
	projects := map[int64]core.Project{1: {ID: 1, Name: "P", HourlyRate: core.Money{Cents: 6000}, Billable: true}}

	s := Build(entries, projects, nil, core.Settings{}, start.AddDate(0, 0, -1), start.AddDate(0, 0, 1), now)
	if s.TotalSeconds != 1800 {
		t.Fatalf("running entry seconds = %d, want 1800", s.TotalSeconds)
	}
	if s.Revenue.Cents != 3000 {
		t.Fatalf("running entry revenue = %d, want 3000", s.Revenue.Cents)
	}
}

func TestGoalProgress(t *testing.T) {
	entries, projects, clients, settings := fixtureData()
	now := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	revGoal := core.Goal{Kind: core.GoalRevenue, Period: core.PeriodMonth, Year: 2025, Month: 3, Target: 60000}
	p := GoalProgress(revGoal, entries, projects, clients, settings, now)
	if p.Current != 30000 || p.Percent != 50 {
		t.Fatalf("revenue progress = %+v", p)
	}

	hourGoal := core.Goal{Kind: core.GoalHours, Period: core.PeriodMonth, Year: 2025, Month: 3, Target: 4 * 3600}
	p = GoalProgress(hourGoal, entries, projects, clients, settings, now)
	if p.Current != 5*3600 || p.Percent != 100 {
		t.Fatalf("hours progress = %+v (percent should clamp)", p)
	}
}
