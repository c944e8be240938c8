// Package csvio reads and writes the flat CSV interchange format for time
// entries. Import recognizes a fixed set of column aliases and produces
// normalized rows; the reconciliation against existing data happens in the
// import service, keyed by EntryKey.
package csvio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"tempo/internal/core"
)

// ExportHeader is the fixed column set written by Export and accepted,
// among aliases, by Parse.
var ExportHeader = []string{"project", "client", "description", "start", "end", "duration_seconds", "billable", "tags"}

// columnAliases maps recognized header spellings to canonical columns.
// Headers are normalized (lowercase, spaces/dashes collapsed to underscore)
// before lookup.
var columnAliases = map[string]string{
	"project":          "project",
	"project_name":     "project",
	"client":           "client",
	"client_name":      "client",
	"customer":         "client",
	"description":      "description",
	"note":             "description",
	"notes":            "description",
	"task":             "description",
	"start":            "start",
	"start_time":       "start",
	"started_at":       "start",
	"begin":            "start",
	"end":              "end",
	"end_time":         "end",
	"ended_at":         "end",
	"stop":             "end",
	"duration":         "duration",
	"duration_seconds": "duration",
	"seconds":          "duration",
	"billable":         "billable",
	"is_billable":      "billable",
	"tags":             "tags",
	"labels":           "tags",
}

// timeLayouts are tried in order when parsing start/end cells.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

var (
	ErrNoHeader      = errors.New("missing header row")
	ErrNoStartColumn = errors.New("no recognized start column")
)

type (
	// Row is one normalized imported entry before reconciliation.
	Row struct {
		Line        int
		Project     string
		Client      string
		Description string
		Start       time.Time
		End         time.Time
		Billable    bool
		Tags        []string
	}

	// RowError records why a line was rejected.
	RowError struct {
		Line int
		Err  error
	}
)

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// MarshalJSON flattens the wrapped error to its message so import reports
// stay readable over the wire.
func (e RowError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
	}{Line: e.Line, Message: e.Err.Error()})
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

// Parse reads CSV data and returns the valid rows plus per-line errors.
// The first record must be a header; unknown columns are ignored. A row
// needs a start time, and either an end time or a duration to derive one.
// Rows with neither are imported as stopped zero-length entries only when
// explicitly zero-duration, otherwise rejected.
func Parse(r io.Reader) ([]Row, []RowError, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, ErrNoHeader
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	// Strip a UTF-8 BOM left by spreadsheet exports.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	columns := make(map[string]int)
	for i, h := range header {
		if canonical, ok := columnAliases[normalizeHeader(h)]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	if _, ok := columns["start"]; !ok {
		return nil, nil, ErrNoStartColumn
	}

	cell := func(record []string, name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []Row
	var rowErrs []RowError
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		start, err := parseTime(cell(record, "start"))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: fmt.Errorf("start: %w", err)})
			continue
		}
		if start.IsZero() {
			rowErrs = append(rowErrs, RowError{Line: line, Err: errors.New("missing start time")})
			continue
		}

		end, err := parseTime(cell(record, "end"))
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: fmt.Errorf("end: %w", err)})
			continue
		}
		if end.IsZero() {
			durStr := cell(record, "duration")
			if durStr == "" {
				rowErrs = append(rowErrs, RowError{Line: line, Err: errors.New("neither end time nor duration")})
				continue
			}
			seconds, err := strconv.ParseInt(durStr, 10, 64)
			if err != nil || seconds < 0 {
				rowErrs = append(rowErrs, RowError{Line: line, Err: fmt.Errorf("invalid duration %q", durStr)})
				continue
			}
			end = start.Add(time.Duration(seconds) * time.Second)
		}
		if end.Before(start) {
			rowErrs = append(rowErrs, RowError{Line: line, Err: core.ErrEndBeforeStart})
			continue
		}

		row := Row{
			Line:        line,
			Project:     cell(record, "project"),
			Client:      cell(record, "client"),
			Description: cell(record, "description"),
			Start:       start,
			End:         end,
			Billable:    parseBool(cell(record, "billable")),
		}
		if tags := cell(record, "tags"); tags != "" {
			for _, t := range strings.Split(tags, ";") {
				if t = strings.TrimSpace(t); t != "" {
					row.Tags = append(row.Tags, t)
				}
			}
		}
		rows = append(rows, row)
	}

	return rows, rowErrs, nil
}

// EntryKey is the dedupe key used during import reconciliation: same
// project, same start and end instants, same description means the row is
// already present.
func EntryKey(projectID int64, start, end time.Time, description string) string {
	return strconv.FormatInt(projectID, 10) + "|" +
		start.UTC().Format(time.RFC3339) + "|" +
		end.UTC().Format(time.RFC3339) + "|" +
		strings.TrimSpace(description)
}

// Export writes entries in the fixed column order of ExportHeader.
// Running entries are written with an empty end cell and their duration
// measured against now.
func Export(w io.Writer, entries []core.TimeEntry, projects map[int64]core.Project, clients map[int64]core.Client, now time.Time) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		project := projects[e.ProjectID]
		client := clients[project.ClientID]

		endCell := ""
		if !e.Running() {
			endCell = e.EndTime.UTC().Format(time.RFC3339)
		}
		record := []string{
			project.Name,
			client.Name,
			e.Description,
			e.StartTime.UTC().Format(time.RFC3339),
			endCell,
			strconv.FormatInt(e.DurationSeconds(now), 10),
			strconv.FormatBool(e.Billable),
			strings.Join(e.Tags, ";"),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
