package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"reinf/internal/core"
	"reinf/internal/ledger"
	"reinf/internal/log"
)

// rowView is one rendered table row.
type rowView struct {
	ID          string
	Number      string
	IssueDate   string
	PaymentDate string
	Provider    string
	TaxID       string
	Gross       string
	IR          string
	CSRF        string
	DueLabel    string
	StatusLabel string
	Paid        bool
	Overdue     bool
	BelowFloor  bool
}

type totalsView struct {
	Gross string
	IR    string
	CSRF  string
}

// pageData feeds the index template: the entry form, the filtered listing
// and the period totals.
type pageData struct {
	Period string
	Notice string
	Form   invoiceForm
	Errors []string
	Rows   []rowView
	Totals totalsView
	Count  int
}

// editData feeds the edit template.
type editData struct {
	ID     string
	Period string
	Form   invoiceForm
	Errors []string
}

var notices = map[string]string{
	"sem-registros": "Nenhuma nota no periodo selecionado para exportar",
	"criada":        "Nota registrada",
	"atualizada":    "Nota atualizada",
	"removida":      "Nota removida",
}

func buildRows(invs []core.Invoice) []rowView {
	today := core.Today()
	rows := make([]rowView, 0, len(invs))
	for _, inv := range invs {
		rows = append(rows, rowView{
			ID:          inv.ID,
			Number:      inv.Number,
			IssueDate:   inv.IssueDate.Display(),
			PaymentDate: inv.PaymentDate.Display(),
			Provider:    inv.ProviderName,
			TaxID:       core.FormatCNPJ(inv.ProviderTaxID),
			Gross:       inv.Gross.String(),
			IR:          inv.IR.String(),
			CSRF:        inv.CSRF.String(),
			DueLabel:    inv.DueLabel,
			StatusLabel: inv.Status.Label(),
			Paid:        inv.Status == core.StatusPaid,
			Overdue:     inv.IsOverdue(today),
			BelowFloor:  inv.BothBelowFloor(),
		})
	}
	return rows
}

func (s *Server) buildPage(r *http.Request, period string, form invoiceForm, formErrs []string) (pageData, error) {
	l, err := s.listPeriod(r.Context(), period)
	if err != nil {
		return pageData{}, err
	}

	return pageData{
		Period: period,
		Notice: notices[r.URL.Query().Get("notice")],
		Form:   form,
		Errors: formErrs,
		Rows:   buildRows(l.Invoices),
		Count:  len(l.Invoices),
		Totals: totalsView{
			Gross: l.Totals.Gross.String(),
			IR:    l.Totals.IR.String(),
			CSRF:  l.Totals.CSRF.String(),
		},
	}, nil
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, period string, form invoiceForm, formErrs []string) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data, err := s.buildPage(r, period, form, formErrs)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list invoices", log.FieldError, err)
		http.Error(w, "erro ao carregar as notas", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	period := strings.TrimSpace(r.URL.Query().Get("period"))
	s.renderIndex(w, r, http.StatusOK, period, invoiceForm{Company: s.company}, nil)
}

// redirectTo sends the browser back to the listing, preserving the period
// filter and attaching a notice code.
func redirectTo(w http.ResponseWriter, r *http.Request, period, notice string) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", log.FieldError, err, log.FieldPath, r.URL.Path)
		http.Error(w, "requisicao invalida", http.StatusBadRequest)
		return
	}

	form := readInvoiceForm(r.Form)
	period := strings.TrimSpace(r.Form.Get("period"))

	inv, formErrs := form.toInvoice(s.company)
	if len(formErrs) > 0 {
		s.renderIndex(w, r, http.StatusUnprocessableEntity, period, form, formErrs)
		return
	}

	id, err := s.svc.Create(r.Context(), inv)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create invoice",
			log.FieldError, err,
			log.FieldNumber, inv.Number,
			log.FieldGrossCents, inv.Gross.Cents)
		http.Error(w, "erro ao registrar a nota", http.StatusInternalServerError)
		return
	}

	s.invalidate()
	s.logger.InfoContext(r.Context(), "Invoice created",
		log.FieldInvoiceID, id,
		log.FieldNumber, inv.Number)
	redirectTo(w, r, period, "criada")
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	inv, err := s.svc.Get(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to load invoice", log.FieldError, err, log.FieldInvoiceID, id)
		http.Error(w, "erro ao carregar a nota", http.StatusInternalServerError)
		return
	}

	s.renderEdit(w, r, http.StatusOK, editData{
		ID:     id,
		Period: strings.TrimSpace(r.URL.Query().Get("period")),
		Form:   formFromInvoice(inv),
	})
}

func (s *Server) renderEdit(w http.ResponseWriter, r *http.Request, status int, data editData) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "edit.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Edit template execution failed", log.FieldError, err)
	}
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := r.ParseForm(); err != nil {
		s.logger.ErrorContext(r.Context(), "Parse form error", log.FieldError, err, log.FieldPath, r.URL.Path)
		http.Error(w, "requisicao invalida", http.StatusBadRequest)
		return
	}

	form := readInvoiceForm(r.Form)
	period := strings.TrimSpace(r.Form.Get("period"))

	inv, formErrs := form.toInvoice(s.company)
	if len(formErrs) > 0 {
		s.renderEdit(w, r, http.StatusUnprocessableEntity, editData{
			ID:     id,
			Period: period,
			Form:   form,
			Errors: formErrs,
		})
		return
	}

	err := s.svc.Update(r.Context(), id, inv)
	if errors.Is(err, ledger.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to update invoice", log.FieldError, err, log.FieldInvoiceID, id)
		http.Error(w, "erro ao atualizar a nota", http.StatusInternalServerError)
		return
	}

	s.invalidate()
	redirectTo(w, r, period, "atualizada")
}

// setStatus is shared by pay and unpay: same parsing, same redirect.
func (s *Server) setStatus(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id string) error) {
	id := r.PathValue("id")
	period := formPeriod(r)

	err := action(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to change invoice status", log.FieldError, err, log.FieldInvoiceID, id)
		http.Error(w, "erro ao atualizar a nota", http.StatusInternalServerError)
		return
	}

	s.invalidate()
	redirectTo(w, r, period, "atualizada")
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, s.svc.Pay)
}

func (s *Server) handleUnpay(w http.ResponseWriter, r *http.Request) {
	s.setStatus(w, r, s.svc.Unpay)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	period := formPeriod(r)

	err := s.svc.Delete(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete invoice", log.FieldError, err, log.FieldInvoiceID, id)
		http.Error(w, "erro ao remover a nota", http.StatusInternalServerError)
		return
	}

	s.invalidate()
	redirectTo(w, r, period, "removida")
}

func formPeriod(r *http.Request) string {
	if err := r.ParseForm(); err != nil {
		return ""
	}
	return strings.TrimSpace(r.Form.Get("period"))
}
