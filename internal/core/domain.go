package core

import (
	"errors"
	"strings"
	"time"
)

const (
	GoalRevenue GoalKind = "revenue"
	GoalHours   GoalKind = "hours"

	PeriodMonth GoalPeriod = "month"
	PeriodYear  GoalPeriod = "year"

	InvoiceDraft    InvoiceStatus = "draft"
	InvoiceRendered InvoiceStatus = "rendered"
	InvoiceSent     InvoiceStatus = "sent"
	InvoicePaid     InvoiceStatus = "paid"
)

type (
	GoalKind      string
	GoalPeriod    string
	InvoiceStatus string

	Money struct {
		Cents int64
	}

	// TimeEntry is a single tracked block of work. A running entry has a
	// zero EndTime; its duration is measured against the clock.
	TimeEntry struct {
		ID          int64
		ProjectID   int64 // 0 when not assigned to a project
		Description string
		StartTime   time.Time
		EndTime     time.Time
		Billable    bool
		Tags        []string
	}

	Project struct {
		ID         int64
		ClientID   int64 // 0 when not linked to a client
		Name       string
		HourlyRate Money
		Billable   bool
		Archived   bool
		Color      string
	}

	Client struct {
		ID          int64
		Name        string
		Email       string
		Address     string
		DefaultRate Money
	}

	// Settings holds the single row of user-level billing configuration.
	Settings struct {
		Currency        string
		TaxRateBps      int64 // tax rate in basis points, 2150 = 21.50%
		InvoicePrefix   string
		NextInvoiceSeq  int64
		RoundingMinutes int // billed minutes round up to this increment, 0 = exact
	}

	// Goal is a revenue or hours target for a month or a whole year.
	Goal struct {
		ID     int64
		Kind   GoalKind
		Period GoalPeriod
		Year   int
		Month  int   // 1-12, ignored for yearly goals
		Target int64 // cents for revenue goals, seconds for hours goals
	}

	InvoiceLine struct {
		ProjectID   int64
		ProjectName string
		Seconds     int64
		Rate        Money
		Amount      Money
	}

	Invoice struct {
		ID          int64
		Number      string
		ClientID    int64
		ClientName  string
		PeriodStart time.Time
		PeriodEnd   time.Time
		Lines       []InvoiceLine
		Subtotal    Money
		Tax         Money
		Total       Money
		Status      InvoiceStatus
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrZeroStart        = errors.New("start time cannot be zero")
	ErrEndBeforeStart   = errors.New("end time before start time")
	ErrInvalidTaxRate   = errors.New("invalid tax rate")
	ErrInvalidGoal      = errors.New("invalid goal")
	ErrNoRunningEntry   = errors.New("no running entry")
	ErrEntryRunning     = errors.New("an entry is already running")
)

// Running reports whether the entry has not been stopped yet.
func (e TimeEntry) Running() bool {
	return e.EndTime.IsZero()
}

// Duration returns the entry length. Running entries are measured up to now.
func (e TimeEntry) Duration(now time.Time) time.Duration {
	if e.Running() {
		if now.Before(e.StartTime) {
			return 0
		}
		return now.Sub(e.StartTime)
	}
	return e.EndTime.Sub(e.StartTime)
}

// DurationSeconds returns the entry length in whole seconds.
func (e TimeEntry) DurationSeconds(now time.Time) int64 {
	return int64(e.Duration(now) / time.Second)
}

func (e TimeEntry) Validate() error {
	if e.StartTime.IsZero() {
		return ErrZeroStart
	}
	if !e.EndTime.IsZero() && e.EndTime.Before(e.StartTime) {
		return ErrEndBeforeStart
	}
	if len(e.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if p.HourlyRate.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return errors.New("invalid email")
	}
	if c.DefaultRate.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Settings) Validate() error {
	if s.TaxRateBps < 0 || s.TaxRateBps > 10000 {
		return ErrInvalidTaxRate
	}
	if s.NextInvoiceSeq < 1 {
		return errors.New("invoice sequence must be positive")
	}
	if s.RoundingMinutes < 0 || s.RoundingMinutes > 60 {
		return errors.New("rounding increment must be between 0 and 60 minutes")
	}
	return nil
}

func (g Goal) Validate() error {
	switch g.Kind {
	case GoalRevenue, GoalHours:
	default:
		return ErrInvalidGoal
	}
	switch g.Period {
	case PeriodMonth:
		if g.Month < 1 || g.Month > 12 {
			return ErrInvalidGoal
		}
	case PeriodYear:
	default:
		return ErrInvalidGoal
	}
	if g.Year < 2000 || g.Year > 2200 {
		return ErrInvalidGoal
	}
	if g.Target <= 0 {
		return ErrInvalidGoal
	}
	return nil
}

// Range returns the half-open [start, end) interval covered by the goal.
func (g Goal) Range() (time.Time, time.Time) {
	if g.Period == PeriodYear {
		start := time.Date(g.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
	start := time.Date(g.Year, time.Month(g.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
