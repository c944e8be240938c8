package http

import (
	"net/http"

	"tempo/internal/core"
	"tempo/internal/invoice"
	applog "tempo/internal/log"
)

type createInvoiceRequest struct {
	ClientID    int64  `json:"client_id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.ClientID < 1 {
		badRequest(w, "client_id is required")
		return
	}
	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		badRequest(w, "period_start: "+err.Error())
		return
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		badRequest(w, "period_end: "+err.Error())
		return
	}
	if !periodEnd.After(periodStart) {
		badRequest(w, "empty invoice period")
		return
	}

	inv, err := s.invoices.CreateInvoice(r.Context(), req.ClientID, periodStart, periodEnd)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Create invoice error",
			"error", err, "client_id", req.ClientID)
		writeError(w, err)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Invoice created",
		"invoice_id", inv.ID,
		"invoice_number", inv.Number,
		"amount_cents", inv.Total.Cents)
	writeJSON(w, http.StatusCreated, toInvoiceJSON(inv))
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.repo.ListInvoices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]invoiceJSON, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceJSON(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	inv, err := s.repo.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceJSON(inv))
}

// handleInvoiceDocument streams the rendered document. The format comes
// from the "format" query parameter and defaults to text.
func (s *Server) handleInvoiceDocument(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	format, err := invoice.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	doc, inv, err := s.invoices.RenderInvoice(r.Context(), id, format)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Render invoice error",
			"error", err, "invoice_id", id, "format", string(format))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+inv.Number+"."+format.FileExtension()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

type invoiceStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req invoiceStatusRequest
	if err := decodeBody(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	status := core.InvoiceStatus(req.Status)
	switch status {
	case core.InvoiceDraft, core.InvoiceRendered, core.InvoiceSent, core.InvoicePaid:
	default:
		badRequest(w, "unknown status "+req.Status)
		return
	}

	if err := s.repo.SetInvoiceStatus(r.Context(), id, status); err != nil {
		writeError(w, err)
		return
	}
	inv, err := s.repo.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceJSON(inv))
}
