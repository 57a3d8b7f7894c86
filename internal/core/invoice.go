package core

import (
	"errors"
	"strings"
)

// Status is the payment state of an invoice's withholdings.
type Status string

const (
	StatusOpen Status = "open"
	StatusPaid Status = "paid"
)

// Label returns the user-facing status text.
func (s Status) Label() string {
	if s == StatusPaid {
		return "Paga"
	}
	return "Aberta"
}

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingNumber      = errors.New("missing invoice number")
	ErrMissingIssueDate   = errors.New("missing issue date")
	ErrMissingPaymentDate = errors.New("missing payment date")
	ErrMissingTaxID       = errors.New("missing provider tax id")
)

// Invoice is one row of the ledger: a service invoice subject to IR and CSRF
// withholding. IR, CSRF, the due dates and the due label are derived from the
// source fields by Recalculate and are never entered directly.
type Invoice struct {
	ID          string
	Number      string
	IssueDate   Date
	PaymentDate Date
	Gross       Money

	IR   Money // derived
	CSRF Money // derived

	ServiceCode   string
	ProviderTaxID string
	ProviderName  string
	ClientName    string
	Company       string
	Notes         string

	IRDue    Date   // derived
	CSRFDue  Date   // derived
	DueLabel string // derived, display-only

	Status    Status
	CreatedAt Date
}

// Recalculate re-derives the withheld amounts, due dates and due label from
// the source fields. Call after any change to Gross, IssueDate or PaymentDate.
func (inv *Invoice) Recalculate() {
	inv.IR, inv.CSRF = ComputeWithholdings(inv.Gross)
	inv.IRDue, inv.CSRFDue = DueDates(inv.IssueDate, inv.PaymentDate)
	inv.DueLabel = DueLabel(inv.IRDue, inv.CSRFDue)
}

// Validate checks required-field presence only: number, both source dates, a
// positive gross amount and the provider tax id. Descriptive fields are free
// text and never validated.
func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.Number) == "" {
		return ErrMissingNumber
	}
	if inv.IssueDate.IsZero() {
		return ErrMissingIssueDate
	}
	if inv.PaymentDate.IsZero() {
		return ErrMissingPaymentDate
	}
	if inv.Gross.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(inv.ProviderTaxID) == "" {
		return ErrMissingTaxID
	}
	return nil
}

// InPeriod reports whether either derived due date falls in the period.
// Matching is against the due dates, not the source dates.
func (inv Invoice) InPeriod(p Period) bool {
	return p.Contains(inv.IRDue) || p.Contains(inv.CSRFDue)
}

// IsOverdue reports whether an unpaid invoice has a due date strictly before
// today. Paid invoices are never overdue, nor are invoices whose due dates
// are the zero sentinel.
func (inv Invoice) IsOverdue(today Date) bool {
	if inv.Status == StatusPaid {
		return false
	}
	if !inv.IRDue.IsZero() && inv.IRDue.Before(today) {
		return true
	}
	if !inv.CSRFDue.IsZero() && inv.CSRFDue.Before(today) {
		return true
	}
	return false
}

// BothBelowFloor reports whether a positive gross amount produced no
// withholding at all because both computed amounts fell under the collection
// floor. Exported reports flag these rows.
func (inv Invoice) BothBelowFloor() bool {
	return inv.Gross.Cents > 0 && inv.IR.IsZero() && inv.CSRF.IsZero()
}

// FormatCNPJ masks a 14-digit national tax id as 00.000.000/0000-00.
// Input that is not exactly 14 digits is returned unchanged.
func FormatCNPJ(s string) string {
	var digits []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) != 14 {
		return s
	}
	d := string(digits)
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}
