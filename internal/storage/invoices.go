package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tempo/internal/core"
)

// Render states track the async document generation, mirroring invoice
// lifecycle: pending until the worker has written the documents.
const (
	RenderPending = "pending"
	RenderDone    = "done"
	RenderError   = "error"
)

const (
	createInvoiceSQL     = `INSERT INTO invoices (number, client_id, client_name, period_start, period_end, subtotal_cents, tax_cents, total_cents, status, render_state, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	createInvoiceLineSQL = `INSERT INTO invoice_lines (invoice_id, project_id, project_name, seconds, rate_cents, amount_cents) VALUES (?, ?, ?, ?, ?, ?)`
	deleteInvoiceSQL     = `DELETE FROM invoices WHERE id = ?`
	getInvoiceSQL        = `SELECT id, number, client_id, client_name, period_start, period_end, subtotal_cents, tax_cents, total_cents, status, created_at FROM invoices WHERE id = ?`
	listInvoicesSQL      = `SELECT id, number, client_id, client_name, period_start, period_end, subtotal_cents, tax_cents, total_cents, status, created_at FROM invoices ORDER BY id DESC`
	getInvoiceLinesSQL   = `SELECT project_id, project_name, seconds, rate_cents, amount_cents FROM invoice_lines WHERE invoice_id = ? ORDER BY project_name`
	setInvoiceStatusSQL  = `UPDATE invoices SET status = ? WHERE id = ?`
	setRenderStateSQL    = `UPDATE invoices SET render_state = ? WHERE id = ?`
	pendingRendersSQL    = `SELECT id FROM invoices WHERE render_state = ? ORDER BY id LIMIT ?`
)

func scanInvoice(row interface{ Scan(...any) error }) (core.Invoice, error) {
	var (
		inv                           core.Invoice
		periodStart, periodEnd, birth int64
	)
	err := row.Scan(&inv.ID, &inv.Number, &inv.ClientID, &inv.ClientName,
		&periodStart, &periodEnd, &inv.Subtotal.Cents, &inv.Tax.Cents, &inv.Total.Cents,
		&inv.Status, &birth)
	if err != nil {
		return core.Invoice{}, err
	}
	inv.PeriodStart = time.Unix(periodStart, 0).UTC()
	inv.PeriodEnd = time.Unix(periodEnd, 0).UTC()
	inv.CreatedAt = time.Unix(birth, 0).UTC()
	return inv, nil
}

// CreateInvoice stores the invoice and its lines in one transaction and
// marks it pending for the render worker.
func (r *Repository) CreateInvoice(ctx context.Context, inv core.Invoice) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, createInvoiceSQL,
		inv.Number, inv.ClientID, inv.ClientName,
		inv.PeriodStart.Unix(), inv.PeriodEnd.Unix(),
		inv.Subtotal.Cents, inv.Tax.Cents, inv.Total.Cents,
		string(inv.Status), RenderPending, inv.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("create invoice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, l := range inv.Lines {
		if _, err := tx.ExecContext(ctx, createInvoiceLineSQL,
			id, l.ProjectID, l.ProjectName, l.Seconds, l.Rate.Cents, l.Amount.Cents); err != nil {
			return 0, fmt.Errorf("create invoice line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Invoice stored",
		"id", id,
		"number", inv.Number,
		"client", inv.ClientName,
		"total_cents", inv.Total.Cents)
	return id, nil
}

func (r *Repository) DeleteInvoice(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteInvoiceSQL, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRow(res)
}

// GetInvoice loads an invoice with its lines.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (core.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, getInvoiceSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, getInvoiceLinesSQL, id)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l core.InvoiceLine
		if err := rows.Scan(&l.ProjectID, &l.ProjectName, &l.Seconds, &l.Rate.Cents, &l.Amount.Cents); err != nil {
			return core.Invoice{}, fmt.Errorf("scan invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, l)
	}
	return inv, rows.Err()
}

// ListInvoices returns invoice headers without lines, newest first.
func (r *Repository) ListInvoices(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, listInvoicesSQL)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *Repository) SetInvoiceStatus(ctx context.Context, id int64, status core.InvoiceStatus) error {
	res, err := r.db.ExecContext(ctx, setInvoiceStatusSQL, string(status), id)
	if err != nil {
		return fmt.Errorf("set invoice status: %w", err)
	}
	return requireRow(res)
}

// MarkRendered records that the worker wrote the document set.
func (r *Repository) MarkRendered(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, setRenderStateSQL, RenderDone, id); err != nil {
		return fmt.Errorf("mark invoice rendered: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, setInvoiceStatusSQL, string(core.InvoiceRendered), id); err != nil {
		return fmt.Errorf("mark invoice rendered status: %w", err)
	}
	slog.InfoContext(ctx, "Invoice marked rendered", "id", id)
	return nil
}

// MarkRenderError records a failed render so the periodic scan retries it.
func (r *Repository) MarkRenderError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, setRenderStateSQL, RenderError, id); err != nil {
		return fmt.Errorf("mark invoice render error: %w", err)
	}
	slog.WarnContext(ctx, "Invoice marked with render error", "id", id)
	return nil
}

// PendingRenders returns ids of invoices the worker has not rendered yet.
// Errored invoices are re-listed so a broken render is retried on the next
// periodic scan.
func (r *Repository) PendingRenders(ctx context.Context, limit int) ([]int64, error) {
	var ids []int64
	for _, state := range []string{RenderPending, RenderError} {
		rows, err := r.db.QueryContext(ctx, pendingRendersSQL, state, limit-len(ids))
		if err != nil {
			return nil, fmt.Errorf("list pending renders: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan pending render: %w", err)
			}
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
		if len(ids) >= limit {
			break
		}
	}
	return ids, nil
}
