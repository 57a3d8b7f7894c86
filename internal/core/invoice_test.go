package core

import (
	"errors"
	"testing"
)

func validInvoice() Invoice {
	inv := Invoice{
		Number:        "123",
		IssueDate:     NewDate(2025, 1, 10),
		PaymentDate:   NewDate(2025, 1, 15),
		Gross:         Money{Cents: 100000},
		ProviderTaxID: "12.345.678/0001-95",
	}
	inv.Recalculate()
	return inv
}

func TestRecalculateDerivesEverything(t *testing.T) {
	inv := validInvoice()
	if inv.IR.Cents != 1500 || inv.CSRF.Cents != 4650 {
		t.Fatalf("unexpected withholdings IR=%d CSRF=%d", inv.IR.Cents, inv.CSRF.Cents)
	}
	if !inv.IRDue.Equal(NewDate(2025, 2, 20).Time) || !inv.CSRFDue.Equal(NewDate(2025, 2, 20).Time) {
		t.Fatalf("unexpected due dates %s / %s", inv.IRDue.Display(), inv.CSRFDue.Display())
	}
	if inv.DueLabel != "IR: 20/02/2025 | CSRF: 20/02/2025" {
		t.Fatalf("unexpected label %q", inv.DueLabel)
	}

	// Changing a source field and recalculating replaces the derived fields.
	inv.Gross = Money{Cents: 10000}
	inv.Recalculate()
	if !inv.IR.IsZero() || !inv.CSRF.IsZero() {
		t.Fatalf("withholdings not re-derived after gross change")
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Invoice)
		want   error
	}{
		{"missing number", func(i *Invoice) { i.Number = " " }, ErrMissingNumber},
		{"missing issue date", func(i *Invoice) { i.IssueDate = Date{} }, ErrMissingIssueDate},
		{"missing payment date", func(i *Invoice) { i.PaymentDate = Date{} }, ErrMissingPaymentDate},
		{"zero gross", func(i *Invoice) { i.Gross = Money{} }, ErrInvalidAmount},
		{"missing tax id", func(i *Invoice) { i.ProviderTaxID = "" }, ErrMissingTaxID},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inv := validInvoice()
			tc.mutate(&inv)
			if err := inv.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if err := validInvoice().Validate(); err != nil {
		t.Fatalf("valid invoice rejected: %v", err)
	}
}

func TestIsOverdue(t *testing.T) {
	today := NewDate(2025, 3, 1)

	inv := validInvoice() // dues 20/02/2025, before today
	if !inv.IsOverdue(today) {
		t.Fatalf("open invoice past due should be overdue")
	}

	inv.Status = StatusPaid
	if inv.IsOverdue(today) {
		t.Fatalf("paid invoices are never overdue")
	}

	future := validInvoice()
	if future.IsOverdue(NewDate(2025, 1, 1)) {
		t.Fatalf("invoice due in the future is not overdue")
	}
	if future.IsOverdue(NewDate(2025, 2, 20)) {
		t.Fatalf("due day itself is not overdue, strictly before only")
	}

	var blank Invoice
	if blank.IsOverdue(today) {
		t.Fatalf("zero due dates must never be overdue")
	}
}

func TestBothBelowFloor(t *testing.T) {
	inv := validInvoice()
	if inv.BothBelowFloor() {
		t.Fatalf("withheld invoice flagged below floor")
	}

	inv.Gross = Money{Cents: 10000}
	inv.Recalculate()
	if !inv.BothBelowFloor() {
		t.Fatalf("expected below-floor flag for gross 100.00")
	}

	var blank Invoice
	if blank.BothBelowFloor() {
		t.Fatalf("zero gross is not below floor")
	}
}

func TestFormatCNPJ(t *testing.T) {
	cases := []struct{ in, out string }{
		{"12345678000195", "12.345.678/0001-95"},
		{"12.345.678/0001-95", "12.345.678/0001-95"},
		{"123", "123"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := FormatCNPJ(tc.in); got != tc.out {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.out, got)
		}
	}
}
