package http

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"reinf/internal/core"
	"reinf/internal/export"
	"reinf/internal/ledger"
)

// fakeService is an in-memory InvoiceService for handler tests. It mirrors
// the real service's derivation step so rendered rows carry computed values.
type fakeService struct {
	invs    []core.Invoice
	nextID  int
	listErr error
}

func (f *fakeService) Create(_ context.Context, inv core.Invoice) (string, error) {
	f.nextID++
	inv.ID = fmt.Sprintf("id-%d", f.nextID)
	inv.Status = core.StatusOpen
	inv.Recalculate()
	if err := inv.Validate(); err != nil {
		return "", err
	}
	f.invs = append(f.invs, inv)
	return inv.ID, nil
}

func (f *fakeService) Update(_ context.Context, id string, inv core.Invoice) error {
	for i := range f.invs {
		if f.invs[i].ID == id {
			inv.ID = id
			inv.Status = f.invs[i].Status
			inv.Recalculate()
			f.invs[i] = inv
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	for i := range f.invs {
		if f.invs[i].ID == id {
			f.invs = append(f.invs[:i], f.invs[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (f *fakeService) setStatus(id string, status core.Status) error {
	for i := range f.invs {
		if f.invs[i].ID == id {
			f.invs[i].Status = status
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (f *fakeService) Pay(_ context.Context, id string) error {
	return f.setStatus(id, core.StatusPaid)
}

func (f *fakeService) Unpay(_ context.Context, id string) error {
	return f.setStatus(id, core.StatusOpen)
}

func (f *fakeService) Get(_ context.Context, id string) (core.Invoice, error) {
	for _, inv := range f.invs {
		if inv.ID == id {
			return inv, nil
		}
	}
	return core.Invoice{}, ledger.ErrNotFound
}

func (f *fakeService) ListPeriod(_ context.Context, ref string) ([]core.Invoice, core.Totals, error) {
	if f.listErr != nil {
		return nil, core.Totals{}, f.listErr
	}
	invs := f.invs
	if ref != "" {
		invs = core.FilterPeriod(invs, core.ParsePeriod(ref))
	}
	return invs, core.TotalsFor(invs), nil
}

func newTestServer(t *testing.T) (*Server, *fakeService) {
	t.Helper()
	svc := &fakeService{}
	s := NewServer(":0", svc, export.DefaultColumns(), "")
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s, svc
}

func seedInvoice(t *testing.T, svc *fakeService, number, issue, payment, amount string) string {
	t.Helper()
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		t.Fatalf("bad seed amount %q: %v", amount, err)
	}
	id, err := svc.Create(context.Background(), core.Invoice{
		Number:        number,
		IssueDate:     core.ParseDate(issue),
		PaymentDate:   core.ParseDate(payment),
		Gross:         core.Money{Cents: cents},
		ProviderTaxID: "11222333000144",
		ProviderName:  "Oficina Central",
	})
	if err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	return id
}

func TestIndexListsInvoices(t *testing.T) {
	s, svc := newTestServer(t)
	seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"101", "1000,00", "15,00", "46,50", "20/01/2025"} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}
}

func TestIndexPeriodFilter(t *testing.T) {
	s, svc := newTestServer(t)
	seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00") // due 2025-01-20
	seedInvoice(t, svc, "202", "2025-02-03", "2025-02-07", "2000.00") // due 2025-03-20

	req := httptest.NewRequest(http.MethodGet, "/?period=2025-01", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "101") {
		t.Error("expected invoice 101 in january listing")
	}
	if strings.Contains(body, "202") {
		t.Error("invoice 202 should not match january")
	}
}

func TestCreateInvoice(t *testing.T) {
	s, svc := newTestServer(t)

	form := url.Values{
		"numero":         {"301"},
		"data_nota":      {"2025-03-05"},
		"data_pagamento": {"2025-03-10"},
		"valor":          {"1500.00"},
		"cnpj_prestador": {"11222333000144"},
		"period":         {"2025-04"},
	}
	req := httptest.NewRequest(http.MethodPost, "/notas", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303, body: %s", rec.Code, rec.Body.String())
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "period=2025-04") || !strings.Contains(loc, "notice=criada") {
		t.Errorf("redirect location = %q", loc)
	}
	if len(svc.invs) != 1 {
		t.Fatalf("stored %d invoices; want 1", len(svc.invs))
	}
	if got := svc.invs[0].IR.Cents; got != 2250 {
		t.Errorf("derived IR = %d cents; want 2250", got)
	}
}

func TestCreateInvoiceRejectsBadInput(t *testing.T) {
	s, svc := newTestServer(t)

	form := url.Values{
		"numero":         {"301"},
		"data_nota":      {"2025-03-05"},
		"data_pagamento": {"2025-03-10"},
		"valor":          {"abc"},
		"cnpj_prestador": {"11222333000144"},
		"prestador":      {"Oficina Central"},
	}
	req := httptest.NewRequest(http.MethodPost, "/notas", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d; want 422", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Valor bruto invalido") {
		t.Error("expected amount error message")
	}
	// Submitted values survive the round trip.
	if !strings.Contains(body, "Oficina Central") {
		t.Error("expected form values to be preserved")
	}
	if len(svc.invs) != 0 {
		t.Errorf("stored %d invoices; want 0", len(svc.invs))
	}
}

func TestPayAndUnpay(t *testing.T) {
	s, svc := newTestServer(t)
	id := seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00")

	req := httptest.NewRequest(http.MethodPost, "/notas/"+id+"/pay", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("pay status = %d; want 303", rec.Code)
	}
	if svc.invs[0].Status != core.StatusPaid {
		t.Fatalf("status after pay = %q; want paid", svc.invs[0].Status)
	}

	req = httptest.NewRequest(http.MethodPost, "/notas/"+id+"/unpay", nil)
	rec = httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unpay status = %d; want 303", rec.Code)
	}
	if svc.invs[0].Status != core.StatusOpen {
		t.Fatalf("status after unpay = %q; want open", svc.invs[0].Status)
	}
}

func TestPayUnknownInvoice(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/notas/nope/pay", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestDeleteInvoice(t *testing.T) {
	s, svc := newTestServer(t)
	id := seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00")

	req := httptest.NewRequest(http.MethodPost, "/notas/"+id+"/delete", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want 303", rec.Code)
	}
	if len(svc.invs) != 0 {
		t.Errorf("stored %d invoices; want 0", len(svc.invs))
	}
}

func TestExportCSV(t *testing.T) {
	s, svc := newTestServer(t)
	seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00")

	req := httptest.NewRequest(http.MethodGet, "/export/csv?period=2025-01", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "notas-2025-01.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"Numero","Data Nota"`) {
		t.Errorf("missing CSV header, got: %s", body)
	}
	if !strings.Contains(body, `"101","05/12/2024"`) {
		t.Errorf("missing CSV row, got: %s", body)
	}
}

func TestExportEmptyRedirectsWithNotice(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/export/csv", "/export/pdf", "/export/xlsx"} {
		req := httptest.NewRequest(http.MethodGet, path+"?period=2030-01", nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("%s status = %d; want 303", path, rec.Code)
		}
		loc := rec.Header().Get("Location")
		if !strings.Contains(loc, "notice=sem-registros") {
			t.Errorf("%s redirect = %q; want sem-registros notice", path, loc)
		}
	}
}

func TestExportPDF(t *testing.T) {
	s, svc := newTestServer(t)
	seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00")

	req := httptest.NewRequest(http.MethodGet, "/export/pdf", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("body is not a PDF document")
	}
}

func TestListingCachePurgedOnMutation(t *testing.T) {
	s, svc := newTestServer(t)
	seedInvoice(t, svc, "101", "2024-12-05", "2024-12-10", "1000.00")

	// Prime the cache.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	form := url.Values{
		"numero":         {"999"},
		"data_nota":      {"2025-06-01"},
		"data_pagamento": {"2025-06-05"},
		"valor":          {"500.00"},
		"cnpj_prestador": {"11222333000144"},
	}
	req = httptest.NewRequest(http.MethodPost, "/notas", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d; want 303", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "999") {
		t.Error("listing still serving stale cache after create")
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d; want 200", path, rec.Code)
		}
	}
}
