// Package services orchestrates invoice operations across the record store
// and the optional AMQP sync queue.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"reinf/internal/amqp"
	"reinf/internal/core"
	"reinf/internal/ledger"
)

// Publisher is the slice of the AMQP client the service needs.
type Publisher interface {
	PublishInvoiceSync(ctx context.Context, id string, action amqp.Action) error
	Close() error
}

// InvoiceService owns the invoice lifecycle: derived fields are recomputed
// here on every write, so no caller can store a stale withholding or due date.
type InvoiceService struct {
	repo      ledger.Repository
	publisher Publisher
}

func NewInvoiceService(repo ledger.Repository, publisher Publisher) *InvoiceService {
	return &InvoiceService{
		repo:      repo,
		publisher: publisher,
	}
}

// Create validates and stores a new invoice. The invoice gets a generated id,
// so later edits and deletes are not tied to list position.
func (s *InvoiceService) Create(ctx context.Context, inv core.Invoice) (string, error) {
	inv.ID = uuid.NewString()
	inv.Status = core.StatusOpen
	inv.CreatedAt = core.Today()
	inv.Recalculate()

	if err := inv.Validate(); err != nil {
		return "", err
	}

	id, err := s.repo.Append(ctx, inv)
	if err != nil {
		return "", fmt.Errorf("save invoice: %w", err)
	}

	s.publish(ctx, id, amqp.ActionUpsert)
	return id, nil
}

// Update replaces the invoice with the given id, re-deriving computed fields.
// The stored status is preserved; pay/unpay are the only status mutations.
func (s *InvoiceService) Update(ctx context.Context, id string, inv core.Invoice) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	inv.ID = id
	inv.Status = current.Status
	inv.CreatedAt = current.CreatedAt
	inv.Recalculate()

	if err := inv.Validate(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, inv); err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	s.publish(ctx, id, amqp.ActionUpsert)
	return nil
}

// Delete removes the invoice from the store.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionDelete)
	return nil
}

// Pay marks the invoice paid. Paying a paid invoice is a no-op.
func (s *InvoiceService) Pay(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, core.StatusPaid)
}

// Unpay reverts the invoice to open. Unpaying an open invoice is a no-op.
func (s *InvoiceService) Unpay(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, core.StatusOpen)
}

func (s *InvoiceService) setStatus(ctx context.Context, id string, status core.Status) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return err
	}
	s.publish(ctx, id, amqp.ActionUpsert)
	return nil
}

// Get returns a single invoice by id.
func (s *InvoiceService) Get(ctx context.Context, id string) (core.Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns every invoice in creation order.
func (s *InvoiceService) List(ctx context.Context) ([]core.Invoice, error) {
	return s.repo.List(ctx)
}

// ListPeriod returns the invoices whose due dates fall in the referenced
// period, plus the period totals. An empty reference means "everything":
// that choice belongs to the caller's screen, not to the matcher, and the
// list view wants the full ledger.
func (s *InvoiceService) ListPeriod(ctx context.Context, ref string) ([]core.Invoice, core.Totals, error) {
	invs, err := s.repo.List(ctx)
	if err != nil {
		return nil, core.Totals{}, err
	}
	if ref != "" {
		invs = core.FilterPeriod(invs, core.ParsePeriod(ref))
	}
	return invs, core.TotalsFor(invs), nil
}

// publish enqueues a sheet-sync message. The local write already succeeded,
// so publish failures are logged and dropped instead of failing the action.
func (s *InvoiceService) publish(ctx context.Context, id string, action amqp.Action) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishInvoiceSync(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"invoice_id", id,
			"action", action,
			"error", err)
	}
}

// Close releases the publisher connection, if any.
func (s *InvoiceService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
