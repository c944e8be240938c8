package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tempo/internal/amqp"
	"tempo/internal/invoice"
	"tempo/internal/sheets"
	"tempo/internal/storage"
)

// RenderFormats is the document set written for every invoice.
var RenderFormats = []invoice.Format{
	invoice.FormatText,
	invoice.FormatCSV,
	invoice.FormatPDF,
	invoice.FormatXLSX,
}

// RenderWorker writes invoice documents to disk and optionally appends a
// summary row to an external spreadsheet.
type RenderWorker struct {
	storage   *storage.Repository
	writer    sheets.InvoiceWriter
	outputDir string
	batchSize int
}

func NewRenderWorker(storage *storage.Repository, writer sheets.InvoiceWriter, outputDir string, batchSize int) *RenderWorker {
	return &RenderWorker{
		storage:   storage,
		writer:    writer,
		outputDir: outputDir,
		batchSize: batchSize,
	}
}

// HandleRenderMessage processes a single invoice render message from AMQP
func (w *RenderWorker) HandleRenderMessage(ctx context.Context, msg *amqp.InvoiceRenderMessage) error {
	slog.InfoContext(ctx, "Processing render message", "invoice_id", msg.InvoiceID)
	return w.renderInvoice(ctx, msg.InvoiceID)
}

// ProcessPendingRenders renders any invoices that haven't been rendered yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *RenderWorker) ProcessPendingRenders(ctx context.Context) error {
	pending, err := w.storage.PendingRenders(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending renders: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending renders", "count", len(pending))

	for _, id := range pending {
		if err := w.renderInvoice(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to render invoice", "invoice_id", id, "error", err)
			continue
		}
	}

	return nil
}

// StartupRenderCheck renders pending invoices at worker startup. This is
// useful to recover from missed AMQP messages or worker downtime.
func (w *RenderWorker) StartupRenderCheck(ctx context.Context) error {
	pending, err := w.storage.PendingRenders(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending renders for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending renders found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending renders on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, id := range pending {
		if err := w.renderInvoice(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to render invoice during startup",
				"invoice_id", id, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup render check completed",
		"total", len(pending),
		"rendered", successCount,
		"errors", errorCount)

	return nil
}

// renderInvoice writes every document format for one invoice, marks the
// invoice rendered and appends the spreadsheet summary row.
func (w *RenderWorker) renderInvoice(ctx context.Context, id int64) error {
	inv, err := w.storage.GetInvoice(ctx, id)
	if err != nil {
		return fmt.Errorf("get invoice from storage: %w", err)
	}

	settings, err := w.storage.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, format := range RenderFormats {
		doc, err := invoice.Render(inv, settings, format)
		if err != nil {
			w.markError(ctx, id)
			return fmt.Errorf("render %s document: %w", format, err)
		}

		path := filepath.Join(w.outputDir, inv.Number+"."+format.FileExtension())
		if err := os.WriteFile(path, doc, 0644); err != nil {
			w.markError(ctx, id)
			return fmt.Errorf("write %s document: %w", format, err)
		}
	}

	if err := w.storage.MarkRendered(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark invoice rendered", "invoice_id", id, "error", err)
		// Don't return error here - the documents were written
	}

	if w.writer != nil {
		ref, err := w.writer.Append(ctx, inv)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to append invoice to spreadsheet",
				"invoice_id", id, "error", err)
			// Documents are on disk; the spreadsheet row is best effort
		} else {
			slog.InfoContext(ctx, "Appended invoice to spreadsheet",
				"invoice_id", id, "row_ref", ref)
		}
	}

	slog.InfoContext(ctx, "Successfully rendered invoice",
		"invoice_id", id,
		"number", inv.Number,
		"formats", len(RenderFormats))

	return nil
}

func (w *RenderWorker) markError(ctx context.Context, id int64) {
	if err := w.storage.MarkRenderError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark render error", "invoice_id", id, "error", err)
	}
}
