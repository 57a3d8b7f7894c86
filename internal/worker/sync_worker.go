// Package worker consumes invoice sync messages and mirrors the ledger into
// the configured Google Sheets worksheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reinf/internal/amqp"
	"reinf/internal/core"
	"reinf/internal/ledger"
)

// SheetTarget is the slice of the sheets client the worker needs.
type SheetTarget interface {
	UpsertInvoice(ctx context.Context, inv core.Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
}

// SyncWorker replays ledger mutations into the sheet. Messages carry only the
// invoice id; the current record is always fetched from the store so the sheet
// converges on the latest state even when messages are redelivered.
type SyncWorker struct {
	reader ledger.InvoiceReader
	target SheetTarget
}

func NewSyncWorker(reader ledger.InvoiceReader, target SheetTarget) *SyncWorker {
	return &SyncWorker{
		reader: reader,
		target: target,
	}
}

// HandleMessage processes a single sync message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.InvoiceSyncMessage) error {
	switch msg.Action {
	case amqp.ActionDelete:
		if err := w.target.DeleteInvoice(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete invoice from sheet: %w", err)
		}
		return nil

	case amqp.ActionUpsert:
		inv, err := w.reader.Get(ctx, msg.ID)
		if errors.Is(err, ledger.ErrNotFound) {
			// Deleted locally before the upsert was consumed; converge by
			// removing the sheet row instead.
			slog.WarnContext(ctx, "Invoice gone from store, deleting sheet row",
				"invoice_id", msg.ID)
			return w.target.DeleteInvoice(ctx, msg.ID)
		}
		if err != nil {
			return fmt.Errorf("get invoice from store: %w", err)
		}
		if err := w.target.UpsertInvoice(ctx, inv); err != nil {
			return fmt.Errorf("upsert invoice to sheet: %w", err)
		}
		return nil
	}

	return fmt.Errorf("unknown sync action: %q", msg.Action)
}
