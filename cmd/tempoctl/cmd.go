package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type entry struct {
	ID              int64    `json:"id"`
	ProjectID       int64    `json:"project_id,omitempty"`
	Description     string   `json:"description"`
	Start           string   `json:"start"`
	End             string   `json:"end,omitempty"`
	Billable        bool     `json:"billable"`
	Tags            []string `json:"tags,omitempty"`
	Running         bool     `json:"running"`
	DurationSeconds int64    `json:"duration_seconds"`
}

type project struct {
	ID              int64  `json:"id"`
	ClientID        int64  `json:"client_id,omitempty"`
	Name            string `json:"name"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	Billable        bool   `json:"billable"`
	Archived        bool   `json:"archived"`
}

type client struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email,omitempty"`
	DefaultRateCents int64  `json:"default_rate_cents"`
}

type invoice struct {
	ID            int64  `json:"id"`
	Number        string `json:"number"`
	ClientName    string `json:"client_name"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	SubtotalCents int64  `json:"subtotal_cents"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`
	Status        string `json:"status"`
}

type summaryRow struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Seconds     int64  `json:"seconds"`
	AmountCents int64  `json:"amount_cents"`
}

type summary struct {
	From         string       `json:"from"`
	To           string       `json:"to"`
	TotalSeconds int64        `json:"total_seconds"`
	RevenueCents int64        `json:"revenue_cents"`
	ByProject    []summaryRow `json:"by_project"`
	ByClient     []summaryRow `json:"by_client"`
}

type importReport struct {
	Imported        int `json:"imported"`
	Duplicates      int `json:"duplicates"`
	ClientsCreated  int `json:"clients_created"`
	ProjectsCreated int `json:"projects_created"`
	RowErrors       []struct {
		Line    int    `json:"line"`
		Message string `json:"message"`
	} `json:"row_errors,omitempty"`
}

func formatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	return fmt.Sprintf("%d:%02d", h, m)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func rangeQuery(from, to string) string {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func newStartCmd(api *apiClient) *cobra.Command {
	var projectID int64
	var billable bool
	var tags []string

	cmd := &cobra.Command{
		Use:   "start [description]",
		Short: "Start a timer, stopping any running one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"billable": billable}
			if len(args) > 0 {
				body["description"] = args[0]
			}
			if projectID > 0 {
				body["project_id"] = projectID
			}
			if len(tags) > 0 {
				body["tags"] = tags
			}
			var e entry
			if err := api.do("POST", "/api/timer/start", body, &e); err != nil {
				return err
			}
			fmt.Printf("started timer #%d at %s\n", e.ID, e.Start)
			return nil
		},
	}
	cmd.Flags().Int64VarP(&projectID, "project", "p", 0, "project id")
	cmd.Flags().BoolVar(&billable, "billable", true, "mark the entry billable")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "tags for the entry")
	return cmd
}

func newStopCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		RunE: func(cmd *cobra.Command, args []string) error {
			var e entry
			if err := api.do("POST", "/api/timer/stop", nil, &e); err != nil {
				return err
			}
			fmt.Printf("stopped timer #%d after %s\n", e.ID, formatDuration(e.DurationSeconds))
			return nil
		},
	}
}

func newStatusCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running timer, if any",
		RunE: func(cmd *cobra.Command, args []string) error {
			var e entry
			err := api.do("GET", "/api/timer", nil, &e)
			if err != nil {
				var apiErr *apiError
				if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
					fmt.Println("no timer running")
					return nil
				}
				return err
			}
			desc := e.Description
			if desc == "" {
				desc = "(no description)"
			}
			fmt.Printf("running: %s for %s (since %s)\n", desc, formatDuration(e.DurationSeconds), e.Start)
			return nil
		},
	}
}

func newClientsCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			var clients []client
			if err := api.do("GET", "/api/clients", nil, &clients); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRATE\tEMAIL")
			for _, c := range clients {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, formatCents(c.DefaultRateCents), c.Email)
			}
			return w.Flush()
		},
	}
}

func newProjectsCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			var projects []project
			if err := api.do("GET", "/api/projects", nil, &projects); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tRATE\tBILLABLE\tARCHIVED")
			for _, p := range projects {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", p.ID, p.Name, formatCents(p.HourlyRateCents), p.Billable, p.Archived)
			}
			return w.Flush()
		},
	}
}

func newReportCmd(api *apiClient) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show tracked time and revenue for a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			var s summary
			if err := api.do("GET", "/api/report"+rangeQuery(from, to), nil, &s); err != nil {
				return err
			}
			fmt.Printf("%s to %s: %s tracked, %s earned\n", s.From, s.To, formatDuration(s.TotalSeconds), formatCents(s.RevenueCents))
			if len(s.ByProject) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PROJECT\tTIME\tAMOUNT")
				for _, row := range s.ByProject {
					fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, formatDuration(row.Seconds), formatCents(row.AmountCents))
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "period end, exclusive (YYYY-MM-DD)")
	return cmd
}

func newInvoiceCmd(api *apiClient) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Create, list and download invoices",
	}

	var clientID int64
	var from, to string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invoice for a client and period",
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"client_id":    clientID,
				"period_start": from,
				"period_end":   to,
			}
			var inv invoice
			if err := api.do("POST", "/api/invoices", body, &inv); err != nil {
				return err
			}
			fmt.Printf("created %s: subtotal %s, tax %s, total %s\n",
				inv.Number, formatCents(inv.SubtotalCents), formatCents(inv.TaxCents), formatCents(inv.TotalCents))
			return nil
		},
	}
	createCmd.Flags().Int64VarP(&clientID, "client", "c", 0, "client id")
	createCmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	createCmd.Flags().StringVar(&to, "to", "", "period end, exclusive (YYYY-MM-DD)")
	createCmd.MarkFlagRequired("client")
	createCmd.MarkFlagRequired("from")
	createCmd.MarkFlagRequired("to")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			var invoices []invoice
			if err := api.do("GET", "/api/invoices", nil, &invoices); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tCLIENT\tPERIOD\tTOTAL\tSTATUS")
			for _, inv := range invoices {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s/%s\t%s\t%s\n",
					inv.ID, inv.Number, inv.ClientName, inv.PeriodStart, inv.PeriodEnd, formatCents(inv.TotalCents), inv.Status)
			}
			return w.Flush()
		},
	}

	var format, out string
	downloadCmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a rendered invoice document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := out
			if dest == "" {
				ext := format
				if ext == "text" {
					ext = "txt"
				}
				dest = fmt.Sprintf("invoice-%s.%s", args[0], ext)
			}
			path := fmt.Sprintf("/api/invoices/%s/document?format=%s", args[0], url.QueryEscape(format))
			if err := api.download(path, dest); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", dest)
			return nil
		},
	}
	downloadCmd.Flags().StringVarP(&format, "format", "f", "pdf", "document format (text, csv, pdf, xlsx)")
	downloadCmd.Flags().StringVarP(&out, "out", "o", "", "output file")

	cmd.AddCommand(createCmd, listCmd, downloadCmd)
	return cmd
}

func newImportCmd(api *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import time entries from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rep importReport
			if err := api.upload("/api/import", args[0], &rep); err != nil {
				return err
			}
			fmt.Printf("imported %d entries (%d duplicates skipped, %d clients and %d projects created)\n",
				rep.Imported, rep.Duplicates, rep.ClientsCreated, rep.ProjectsCreated)
			for _, re := range rep.RowErrors {
				fmt.Fprintf(os.Stderr, "line %d: %s\n", re.Line, re.Message)
			}
			return nil
		},
	}
}

func newExportCmd(api *apiClient) *cobra.Command {
	var from, to, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export time entries for a period as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := out
			if dest == "" {
				dest = "entries.csv"
			}
			if err := api.download("/api/export"+rangeQuery(from, to), dest); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "period end, exclusive (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file")
	return cmd
}

func setupCommands(api *apiClient) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tempoctl",
		Short:         "Command line client for the tempo time tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newStartCmd(api),
		newStopCmd(api),
		newStatusCmd(api),
		newClientsCmd(api),
		newProjectsCmd(api),
		newReportCmd(api),
		newInvoiceCmd(api),
		newImportCmd(api),
		newExportCmd(api),
	)
	return rootCmd
}
