package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/amqp"
	"tempo/internal/core"
	"tempo/internal/invoice"
	"tempo/internal/storage"
)

// InvoiceService orchestrates invoice creation across SQLite and AMQP
type InvoiceService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewInvoiceService(storage *storage.Repository, amqpClient *amqp.Client) *InvoiceService {
	return &InvoiceService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateInvoice builds an invoice for a client over [periodStart, periodEnd),
// stores it, and publishes a render request. The invoice is saved even when
// publishing fails; the periodic render scan picks it up later.
func (s *InvoiceService) CreateInvoice(ctx context.Context, clientID int64, periodStart, periodEnd time.Time) (core.Invoice, error) {
	client, err := s.storage.GetClient(ctx, clientID)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("load client: %w", err)
	}

	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("load settings: %w", err)
	}

	entries, err := s.storage.ListEntries(ctx, periodStart, periodEnd)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("load entries: %w", err)
	}

	projects, err := s.storage.ProjectMap(ctx)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("load projects: %w", err)
	}

	// Build first: a period without billable entries must not consume a
	// number from the sequence.
	inv, err := invoice.Build("", client, entries, projects, settings, periodStart, periodEnd, time.Now())
	if err != nil {
		return core.Invoice{}, err
	}

	seq, err := s.storage.ClaimInvoiceSeq(ctx)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("claim invoice number: %w", err)
	}
	inv.Number = invoice.FormatNumber(settings.InvoicePrefix, seq)

	id, err := s.storage.CreateInvoice(ctx, inv)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("save invoice: %w", err)
	}
	inv.ID = id

	// Publish async render message (non-blocking)
	if err := s.publishRenderMessage(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish render message",
			"invoice_id", id, "error", err)
		// Don't fail the request - invoice is saved locally
	}

	return inv, nil
}

// RenderInvoice loads a stored invoice and produces its document in the
// requested format.
func (s *InvoiceService) RenderInvoice(ctx context.Context, id int64, format invoice.Format) ([]byte, core.Invoice, error) {
	inv, err := s.storage.GetInvoice(ctx, id)
	if err != nil {
		return nil, core.Invoice{}, err
	}

	settings, err := s.storage.GetSettings(ctx)
	if err != nil {
		return nil, core.Invoice{}, fmt.Errorf("load settings: %w", err)
	}

	doc, err := invoice.Render(inv, settings, format)
	if err != nil {
		return nil, core.Invoice{}, err
	}
	return doc, inv, nil
}

func (s *InvoiceService) publishRenderMessage(ctx context.Context, id int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping render message")
		return nil
	}

	return s.amqpClient.PublishInvoiceRender(ctx, id)
}

// Close closes both storage and AMQP connections
func (s *InvoiceService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close invoice service: %v", errs)
	}

	return nil
}
