package services

import (
	"context"
	"errors"
	"testing"

	"reinf/internal/amqp"
	"reinf/internal/core"
	"reinf/internal/ledger"
)

// fakeRepo is an in-memory ledger.Repository.
type fakeRepo struct {
	invs []core.Invoice
}

func (f *fakeRepo) Append(_ context.Context, inv core.Invoice) (string, error) {
	f.invs = append(f.invs, inv)
	return inv.ID, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (core.Invoice, error) {
	for _, inv := range f.invs {
		if inv.ID == id {
			return inv, nil
		}
	}
	return core.Invoice{}, ledger.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context) ([]core.Invoice, error) {
	return append([]core.Invoice(nil), f.invs...), nil
}

func (f *fakeRepo) Update(_ context.Context, id string, inv core.Invoice) error {
	for i := range f.invs {
		if f.invs[i].ID == id {
			f.invs[i] = inv
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (f *fakeRepo) SetStatus(_ context.Context, id string, status core.Status) error {
	for i := range f.invs {
		if f.invs[i].ID == id {
			f.invs[i].Status = status
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	for i := range f.invs {
		if f.invs[i].ID == id {
			f.invs = append(f.invs[:i], f.invs[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

// failingPublisher always errors; sync failures must never fail user actions.
type failingPublisher struct{ calls int }

func (p *failingPublisher) PublishInvoiceSync(context.Context, string, amqp.Action) error {
	p.calls++
	return errors.New("broker down")
}
func (p *failingPublisher) Close() error { return nil }

func draftInvoice(number string) core.Invoice {
	return core.Invoice{
		Number:        number,
		IssueDate:     core.NewDate(2024, 12, 5),
		PaymentDate:   core.NewDate(2024, 12, 10),
		Gross:         core.Money{Cents: 100000},
		ProviderTaxID: "12345678000195",
	}
}

func TestCreateAssignsIDAndDerives(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewInvoiceService(repo, nil)

	id, err := svc.Create(ctx, draftInvoice("1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected generated id")
	}

	inv, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if inv.Status != core.StatusOpen {
		t.Fatalf("new invoices start open, got %s", inv.Status)
	}
	if inv.IR.Cents != 1500 || inv.CSRF.Cents != 4650 {
		t.Fatalf("withholdings not derived: IR=%d CSRF=%d", inv.IR.Cents, inv.CSRF.Cents)
	}
	if !inv.IRDue.Equal(core.NewDate(2025, 1, 20).Time) {
		t.Fatalf("year-rollover due date wrong: %s", inv.IRDue.Display())
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := NewInvoiceService(&fakeRepo{}, nil)

	inv := draftInvoice("1")
	inv.ProviderTaxID = ""
	if _, err := svc.Create(context.Background(), inv); !errors.Is(err, core.ErrMissingTaxID) {
		t.Fatalf("expected ErrMissingTaxID, got %v", err)
	}
}

func TestUpdatePreservesStatusAndRederives(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewInvoiceService(repo, nil)

	id, _ := svc.Create(ctx, draftInvoice("1"))
	if err := svc.Pay(ctx, id); err != nil {
		t.Fatalf("pay: %v", err)
	}

	edited := draftInvoice("1")
	edited.Gross = core.Money{Cents: 10000}
	// A tampered derived field must be overwritten by Recalculate.
	edited.IR = core.Money{Cents: 999999}
	if err := svc.Update(ctx, id, edited); err != nil {
		t.Fatalf("update: %v", err)
	}

	inv, _ := svc.Get(ctx, id)
	if inv.Status != core.StatusPaid {
		t.Fatalf("update must preserve status, got %s", inv.Status)
	}
	if !inv.IR.IsZero() {
		t.Fatalf("derived IR not recomputed, got %d", inv.IR.Cents)
	}
}

func TestPayUnpayIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(&fakeRepo{}, nil)
	id, _ := svc.Create(ctx, draftInvoice("1"))

	if err := svc.Pay(ctx, id); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if err := svc.Pay(ctx, id); err != nil {
		t.Fatalf("second pay must not fail: %v", err)
	}
	inv, _ := svc.Get(ctx, id)
	if inv.Status != core.StatusPaid {
		t.Fatalf("expected paid, got %s", inv.Status)
	}

	if err := svc.Unpay(ctx, id); err != nil {
		t.Fatalf("unpay: %v", err)
	}
	if err := svc.Unpay(ctx, id); err != nil {
		t.Fatalf("unpay of open invoice must not fail: %v", err)
	}
}

func TestPublisherFailureDoesNotFailAction(t *testing.T) {
	ctx := context.Background()
	pub := &failingPublisher{}
	svc := NewInvoiceService(&fakeRepo{}, pub)

	id, err := svc.Create(ctx, draftInvoice("1"))
	if err != nil {
		t.Fatalf("create must succeed despite broker failure: %v", err)
	}
	if err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("delete must succeed despite broker failure: %v", err)
	}
	if pub.calls != 2 {
		t.Fatalf("expected 2 publish attempts, got %d", pub.calls)
	}
}

func TestListPeriod(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(&fakeRepo{}, nil)

	_, _ = svc.Create(ctx, draftInvoice("jan-1")) // dues Jan 2025
	feb := draftInvoice("feb")
	feb.IssueDate = core.NewDate(2025, 1, 10)
	feb.PaymentDate = core.NewDate(2025, 1, 12)
	_, _ = svc.Create(ctx, feb) // dues Feb 2025
	_, _ = svc.Create(ctx, draftInvoice("jan-2"))

	invs, totals, err := svc.ListPeriod(ctx, "2025-01")
	if err != nil {
		t.Fatalf("list period: %v", err)
	}
	if len(invs) != 2 {
		t.Fatalf("expected 2 invoices in Jan 2025, got %d", len(invs))
	}
	if invs[0].Number != "jan-1" || invs[1].Number != "jan-2" {
		t.Fatalf("order lost: %s, %s", invs[0].Number, invs[1].Number)
	}
	if totals.Gross.Cents != 200000 {
		t.Fatalf("expected gross total 200000, got %d", totals.Gross.Cents)
	}

	// Empty reference lists everything on this surface.
	all, _, err := svc.ListPeriod(ctx, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected full ledger for empty ref, got %d (err=%v)", len(all), err)
	}

	// Malformed references match nothing.
	none, _, err := svc.ListPeriod(ctx, "january")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no matches for malformed ref, got %d (err=%v)", len(none), err)
	}
}
