// Package ledger defines the ports a record store must satisfy. Backends:
// kvfile (flat JSON document, whole-list rewrite) and storage (SQLite).
package ledger

import (
	"context"
	"errors"

	"reinf/internal/core"
)

// ErrNotFound is returned when an invoice id does not exist in the store.
var ErrNotFound = errors.New("invoice not found")

// Ports for outbound adapters.
type (
	InvoiceWriter interface {
		// Append stores a new invoice and returns its id.
		Append(ctx context.Context, inv core.Invoice) (string, error)
	}

	InvoiceReader interface {
		Get(ctx context.Context, id string) (core.Invoice, error)
		// List returns all invoices in creation order.
		List(ctx context.Context) ([]core.Invoice, error)
	}

	InvoiceEditor interface {
		// Update replaces the invoice with the given id in place.
		Update(ctx context.Context, id string, inv core.Invoice) error
		// SetStatus flips the payment status. Setting the current status is a no-op.
		SetStatus(ctx context.Context, id string, status core.Status) error
		Delete(ctx context.Context, id string) error
	}
)

// Repository is the full store contract used by the service layer.
type Repository interface {
	InvoiceWriter
	InvoiceReader
	InvoiceEditor
}
