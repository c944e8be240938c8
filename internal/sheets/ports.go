package sheets

import (
	"context"

	"tempo/internal/core"
)

// Ports for outbound adapters.
type (
	// InvoiceWriter appends an invoice summary row to an external ledger.
	InvoiceWriter interface {
		Append(ctx context.Context, inv core.Invoice) (rowRef string, err error)
	}
)
