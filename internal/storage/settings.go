package storage

import (
	"context"
	"fmt"

	"tempo/internal/core"
)

const (
	getSettingsSQL    = `SELECT currency, tax_rate_bps, invoice_prefix, next_invoice_seq, rounding_minutes FROM settings WHERE id = 1`
	updateSettingsSQL = `UPDATE settings SET currency = ?, tax_rate_bps = ?, invoice_prefix = ?, next_invoice_seq = ?, rounding_minutes = ? WHERE id = 1`
	bumpInvoiceSeqSQL = `UPDATE settings SET next_invoice_seq = next_invoice_seq + 1 WHERE id = 1`
)

// GetSettings returns the single settings row, seeded by the migration.
func (r *Repository) GetSettings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx, getSettingsSQL).Scan(
		&s.Currency, &s.TaxRateBps, &s.InvoicePrefix, &s.NextInvoiceSeq, &s.RoundingMinutes)
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx, updateSettingsSQL,
		s.Currency, s.TaxRateBps, s.InvoicePrefix, s.NextInvoiceSeq, s.RoundingMinutes)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// ClaimInvoiceSeq returns the next invoice sequence number and advances the
// counter, in one transaction so concurrent invoice creation cannot issue
// the same number twice.
func (r *Repository) ClaimInvoiceSeq(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT next_invoice_seq FROM settings WHERE id = 1`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("read invoice seq: %w", err)
	}
	if _, err := tx.ExecContext(ctx, bumpInvoiceSeqSQL); err != nil {
		return 0, fmt.Errorf("bump invoice seq: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return seq, nil
}
