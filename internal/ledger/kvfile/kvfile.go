// Package kvfile stores the whole invoice list as a single JSON document on
// disk, rewritten in full after every mutation, which is plenty for a
// single-user ledger. The document is reloaded whenever the file changes on
// disk, so a long-lived reader in another process sees fresh writes.
package kvfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reinf/internal/core"
	"reinf/internal/ledger"
)

// document is the on-disk shape: one constant key holding the record list.
type document struct {
	Notas []record `json:"notas"`
}

type record struct {
	ID            string `json:"id"`
	Number        string `json:"number"`
	IssueDate     string `json:"issue_date"`
	PaymentDate   string `json:"payment_date"`
	Gross         string `json:"gross"`
	IR            string `json:"ir"`
	CSRF          string `json:"csrf"`
	ServiceCode   string `json:"service_code,omitempty"`
	ProviderTaxID string `json:"provider_tax_id,omitempty"`
	ProviderName  string `json:"provider_name,omitempty"`
	ClientName    string `json:"client_name,omitempty"`
	Company       string `json:"company,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type Store struct {
	mu      sync.Mutex
	path    string
	invs    []core.Invoice
	modTime time.Time
	size    int64
}

// Open loads the document at path. A missing file means an empty ledger.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	slog.Info("Loaded ledger file", "path", path, "invoices", len(s.invs))
	return s, nil
}

// load reads the document from disk and records the file stat the snapshot
// was taken from. Callers hold s.mu, except Open which owns the store alone.
func (s *Store) load() error {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		s.invs = nil
		s.modTime = time.Time{}
		s.size = 0
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat ledger file: %w", err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read ledger file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode ledger file: %w", err)
	}

	s.invs = make([]core.Invoice, len(doc.Notas))
	for i, r := range doc.Notas {
		s.invs[i] = fromRecord(r)
	}
	s.modTime = info.ModTime()
	s.size = info.Size()
	return nil
}

// refresh reloads the document when another process rewrote the file since
// the last load. Detection is by mtime and size, which the atomic rename in
// persist always bumps. Callers hold s.mu.
func (s *Store) refresh() error {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		if len(s.invs) == 0 {
			return nil
		}
		return s.load()
	}
	if err != nil {
		return fmt.Errorf("stat ledger file: %w", err)
	}
	if info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return nil
	}
	return s.load()
}

// Append implements ledger.InvoiceWriter.
func (s *Store) Append(_ context.Context, inv core.Invoice) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return "", err
	}
	s.invs = append(s.invs, inv)
	if err := s.persist(); err != nil {
		s.invs = s.invs[:len(s.invs)-1]
		return "", err
	}
	return inv.ID, nil
}

// Get implements ledger.InvoiceReader.
func (s *Store) Get(_ context.Context, id string) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return core.Invoice{}, err
	}
	for _, inv := range s.invs {
		if inv.ID == id {
			return inv, nil
		}
	}
	return core.Invoice{}, ledger.ErrNotFound
}

// List implements ledger.InvoiceReader. The returned slice is a copy in
// creation order.
func (s *Store) List(_ context.Context) ([]core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return nil, err
	}
	return append([]core.Invoice(nil), s.invs...), nil
}

// Update implements ledger.InvoiceEditor, replacing the record in place so
// list order is stable.
func (s *Store) Update(_ context.Context, id string, inv core.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return err
	}
	for i := range s.invs {
		if s.invs[i].ID == id {
			inv.ID = id
			inv.CreatedAt = s.invs[i].CreatedAt
			prev := s.invs[i]
			s.invs[i] = inv
			if err := s.persist(); err != nil {
				s.invs[i] = prev
				return err
			}
			return nil
		}
	}
	return ledger.ErrNotFound
}

// SetStatus implements ledger.InvoiceEditor.
func (s *Store) SetStatus(_ context.Context, id string, status core.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return err
	}
	for i := range s.invs {
		if s.invs[i].ID == id {
			if s.invs[i].Status == status {
				return nil
			}
			prev := s.invs[i].Status
			s.invs[i].Status = status
			if err := s.persist(); err != nil {
				s.invs[i].Status = prev
				return err
			}
			return nil
		}
	}
	return ledger.ErrNotFound
}

// Delete implements ledger.InvoiceEditor.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refresh(); err != nil {
		return err
	}
	for i := range s.invs {
		if s.invs[i].ID == id {
			prev := append([]core.Invoice(nil), s.invs...)
			s.invs = append(s.invs[:i], s.invs[i+1:]...)
			if err := s.persist(); err != nil {
				s.invs = prev
				return err
			}
			return nil
		}
	}
	return ledger.ErrNotFound
}

// persist rewrites the whole document. Write-to-temp plus rename keeps the
// previous file intact if the write fails midway. Callers hold s.mu.
func (s *Store) persist() error {
	doc := document{Notas: make([]record, len(s.invs))}
	for i, inv := range s.invs {
		doc.Notas[i] = toRecord(inv)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger file: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
		s.size = info.Size()
	} else {
		// Force a reload on the next access rather than serve a stale stat.
		s.modTime = time.Time{}
		s.size = 0
	}
	return nil
}

func toRecord(inv core.Invoice) record {
	return record{
		ID:            inv.ID,
		Number:        inv.Number,
		IssueDate:     inv.IssueDate.ISO(),
		PaymentDate:   inv.PaymentDate.ISO(),
		Gross:         inv.Gross.Plain(),
		IR:            inv.IR.Plain(),
		CSRF:          inv.CSRF.Plain(),
		ServiceCode:   inv.ServiceCode,
		ProviderTaxID: inv.ProviderTaxID,
		ProviderName:  inv.ProviderName,
		ClientName:    inv.ClientName,
		Company:       inv.Company,
		Notes:         inv.Notes,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt.ISO(),
	}
}

func fromRecord(r record) core.Invoice {
	inv := core.Invoice{
		ID:            r.ID,
		Number:        r.Number,
		IssueDate:     core.ParseDate(r.IssueDate),
		PaymentDate:   core.ParseDate(r.PaymentDate),
		// Lenient on purpose: a malformed stored amount degrades to zero
		// instead of failing the whole load.
		Gross:         core.ParseAmount(r.Gross),
		ServiceCode:   r.ServiceCode,
		ProviderTaxID: r.ProviderTaxID,
		ProviderName:  r.ProviderName,
		ClientName:    r.ClientName,
		Company:       r.Company,
		Notes:         r.Notes,
		Status:        core.Status(r.Status),
		CreatedAt:     core.ParseDate(r.CreatedAt),
	}
	if inv.Status == "" {
		inv.Status = core.StatusOpen
	}
	// Derived fields are never trusted from disk.
	inv.Recalculate()
	return inv
}
