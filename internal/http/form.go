package http

import (
	"net/url"
	"strings"

	"reinf/internal/core"
)

// invoiceForm echoes the submitted values back into the template so a
// rejected submission does not lose what was typed.
type invoiceForm struct {
	Number        string
	IssueDate     string
	PaymentDate   string
	Gross         string
	ServiceCode   string
	ProviderTaxID string
	ProviderName  string
	ClientName    string
	Company       string
	Notes         string
}

func readInvoiceForm(form url.Values) invoiceForm {
	return invoiceForm{
		Number:        sanitizeInput(form.Get("numero")),
		IssueDate:     strings.TrimSpace(form.Get("data_nota")),
		PaymentDate:   strings.TrimSpace(form.Get("data_pagamento")),
		Gross:         strings.TrimSpace(form.Get("valor")),
		ServiceCode:   sanitizeInput(form.Get("codigo_servico")),
		ProviderTaxID: sanitizeInput(form.Get("cnpj_prestador")),
		ProviderName:  sanitizeInput(form.Get("prestador")),
		ClientName:    sanitizeInput(form.Get("tomador")),
		Company:       sanitizeInput(form.Get("empresa")),
		Notes:         sanitizeInput(form.Get("observacoes")),
	}
}

// toInvoice converts the form into an invoice, collecting every user-facing
// problem instead of stopping at the first one. The returned invoice is only
// meaningful when the error list is empty.
func (f invoiceForm) toInvoice(defaultCompany string) (core.Invoice, []string) {
	var errs []string

	if f.Number == "" {
		errs = append(errs, "Numero da nota e obrigatorio")
	}

	issue := core.ParseDate(f.IssueDate)
	if f.IssueDate == "" {
		errs = append(errs, "Data da nota e obrigatoria")
	} else if issue.IsZero() {
		errs = append(errs, "Data da nota invalida")
	}

	payment := core.ParseDate(f.PaymentDate)
	if f.PaymentDate == "" {
		errs = append(errs, "Data de pagamento e obrigatoria")
	} else if payment.IsZero() {
		errs = append(errs, "Data de pagamento invalida")
	}

	var gross core.Money
	if cents, err := core.ParseDecimalToCents(f.Gross); err != nil || cents <= 0 {
		errs = append(errs, "Valor bruto invalido")
	} else {
		gross = core.Money{Cents: cents}
	}

	if f.ProviderTaxID == "" {
		errs = append(errs, "CNPJ do prestador e obrigatorio")
	}

	company := f.Company
	if company == "" {
		company = defaultCompany
	}

	inv := core.Invoice{
		Number:        f.Number,
		IssueDate:     issue,
		PaymentDate:   payment,
		Gross:         gross,
		ServiceCode:   f.ServiceCode,
		ProviderTaxID: f.ProviderTaxID,
		ProviderName:  f.ProviderName,
		ClientName:    f.ClientName,
		Company:       company,
		Notes:         f.Notes,
	}
	return inv, errs
}

// formFromInvoice pre-fills the edit form from a stored invoice.
func formFromInvoice(inv core.Invoice) invoiceForm {
	return invoiceForm{
		Number:        inv.Number,
		IssueDate:     inv.IssueDate.ISO(),
		PaymentDate:   inv.PaymentDate.ISO(),
		Gross:         inv.Gross.Plain(),
		ServiceCode:   inv.ServiceCode,
		ProviderTaxID: inv.ProviderTaxID,
		ProviderName:  inv.ProviderName,
		ClientName:    inv.ClientName,
		Company:       inv.Company,
		Notes:         inv.Notes,
	}
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
