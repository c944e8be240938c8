package http

import (
	"io"
	"net/http"
	"strings"
	"time"

	"tempo/internal/csvio"
	applog "tempo/internal/log"
)

const maxImportSize = 10 << 20 // 10 MiB

// handleImport accepts CSV data either as a multipart upload under the
// "file" field or as a raw text/csv body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var reader io.Reader

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			badRequest(w, "invalid multipart upload: "+err.Error())
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			badRequest(w, `missing "file" field`)
			return
		}
		defer file.Close()
		reader = file
	} else {
		reader = http.MaxBytesReader(w, r.Body, maxImportSize)
	}

	report, err := s.importer.Import(r.Context(), reader)
	if err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Import error", "error", err)
		writeError(w, err)
		return
	}
	s.invalidateReports()

	writeJSON(w, http.StatusOK, report)
}

// handleExport streams the entries of a date range as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
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

	filename := "entries_" + from.Format("2006-01-02") + "_" + to.Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := csvio.Export(w, entries, projects, clients, time.Now()); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export error", "error", err)
	}
}
