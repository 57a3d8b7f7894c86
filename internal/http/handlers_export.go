package http

import (
	"bytes"
	"net/http"
	"strings"

	"reinf/internal/core"
	"reinf/internal/export"
	"reinf/internal/log"
)

// exportParams are shared by the three download endpoints.
type exportParams struct {
	period   string
	detailed bool
}

func readExportParams(r *http.Request) exportParams {
	q := r.URL.Query()
	return exportParams{
		period:   strings.TrimSpace(q.Get("period")),
		detailed: q.Get("detail") == "detailed",
	}
}

// exportInvoices loads the period's rows, redirecting back to the listing
// with a notice when there is nothing to export. The bool reports whether
// the caller should proceed.
func (s *Server) exportInvoices(w http.ResponseWriter, r *http.Request, p exportParams) ([]core.Invoice, bool) {
	l, err := s.listPeriod(r.Context(), p.period)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to list invoices for export",
			log.FieldError, err, log.FieldPeriod, p.period)
		http.Error(w, "erro ao carregar as notas", http.StatusInternalServerError)
		return nil, false
	}
	if len(l.Invoices) == 0 {
		redirectTo(w, r, p.period, "sem-registros")
		return nil, false
	}
	return l.Invoices, true
}

func exportFilename(period, ext string) string {
	ref := core.ParsePeriod(period).String()
	if ref == "" {
		return "notas." + ext
	}
	return "notas-" + ref + "." + ext
}

func serveDownload(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(body)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	p := readExportParams(r)
	invs, ok := s.exportInvoices(w, r, p)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, invs, s.columns.Set(p.detailed)); err != nil {
		s.logger.ErrorContext(r.Context(), "CSV export failed", log.FieldError, err, log.FieldPeriod, p.period)
		http.Error(w, "erro ao gerar o CSV", http.StatusInternalServerError)
		return
	}
	serveDownload(w, "text/csv; charset=utf-8", exportFilename(p.period, "csv"), buf.Bytes())
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	p := readExportParams(r)
	invs, ok := s.exportInvoices(w, r, p)
	if !ok {
		return
	}

	label := p.period
	if label == "" {
		label = "todas"
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, invs, s.columns.Set(p.detailed), label); err != nil {
		s.logger.ErrorContext(r.Context(), "PDF export failed", log.FieldError, err, log.FieldPeriod, p.period)
		http.Error(w, "erro ao gerar o PDF", http.StatusInternalServerError)
		return
	}
	serveDownload(w, "application/pdf", exportFilename(p.period, "pdf"), buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	p := readExportParams(r)
	invs, ok := s.exportInvoices(w, r, p)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, invs); err != nil {
		s.logger.ErrorContext(r.Context(), "XLSX export failed", log.FieldError, err, log.FieldPeriod, p.period)
		http.Error(w, "erro ao gerar a planilha", http.StatusInternalServerError)
		return
	}
	serveDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		exportFilename(p.period, "xlsx"), buf.Bytes())
}
