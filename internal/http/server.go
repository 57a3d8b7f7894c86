// Package http serves the invoice ledger UI: a single page with the entry
// form, the filtered listing with totals, and the export downloads.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"reinf/internal/cache"
	"reinf/internal/core"
	"reinf/internal/export"
	"reinf/internal/log"
	appweb "reinf/web"
)

// InvoiceService is the slice of the service layer the handlers need.
type InvoiceService interface {
	Create(ctx context.Context, inv core.Invoice) (string, error)
	Update(ctx context.Context, id string, inv core.Invoice) error
	Delete(ctx context.Context, id string) error
	Pay(ctx context.Context, id string) error
	Unpay(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Invoice, error)
	ListPeriod(ctx context.Context, ref string) ([]core.Invoice, core.Totals, error)
}

// listing is the cached result of a period query.
type listing struct {
	Invoices []core.Invoice
	Totals   core.Totals
}

type Server struct {
	http.Server
	templates *template.Template
	svc       InvoiceService
	columns   export.ColumnConfig
	company   string

	rateLimiter *rateLimiter
	logger      *log.Logger

	// Listing cache keyed by period reference. Any mutation purges it:
	// a due-date change can move an invoice between period keys.
	listCache *cache.LRU[listing]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc InvoiceService, columns export.ColumnConfig, company string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:              svc,
		columns:          columns,
		company:          company,
		rateLimiter:      newRateLimiter(),
		logger:           log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP),
		listCache:        cache.NewLRU[listing](100, 5*time.Minute),
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.withSecurity(s.handleIndex))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /notas", s.withSecurity(s.handleCreate))
	mux.HandleFunc("GET /notas/{id}/edit", s.withSecurity(s.handleEditForm))
	mux.HandleFunc("POST /notas/{id}/edit", s.withSecurity(s.handleEdit))
	mux.HandleFunc("POST /notas/{id}/pay", s.withSecurity(s.handlePay))
	mux.HandleFunc("POST /notas/{id}/unpay", s.withSecurity(s.handleUnpay))
	mux.HandleFunc("POST /notas/{id}/delete", s.withSecurity(s.handleDelete))

	mux.HandleFunc("GET /export/csv", s.withSecurity(s.handleExportCSV))
	mux.HandleFunc("GET /export/pdf", s.withSecurity(s.handleExportPDF))
	mux.HandleFunc("GET /export/xlsx", s.withSecurity(s.handleExportXLSX))

	return s
}

// listPeriod serves period listings from the cache, falling back to the
// service on a miss.
func (s *Server) listPeriod(ctx context.Context, ref string) (listing, error) {
	if cached, ok := s.listCache.Get(ref); ok {
		return cached, nil
	}

	invs, totals, err := s.svc.ListPeriod(ctx, ref)
	if err != nil {
		return listing{}, err
	}

	l := listing{Invoices: invs, Totals: totals}
	s.listCache.Set(ref, l)
	return l, nil
}

// invalidate drops every cached listing after a write.
func (s *Server) invalidate() {
	s.listCache.Purge()
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := s.listCache.CleanExpired(); n > 0 {
				s.logger.Debug("Cache cleanup completed", "entries_removed", n)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
