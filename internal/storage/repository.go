package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reinf/internal/core"
	"reinf/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements the ledger ports on a local SQLite database.
// Rows are returned in insertion order (rowid), matching the kvfile backend.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const invoiceColumns = `id, number, issue_date, payment_date, gross_cents, ir_cents, csrf_cents,
	service_code, provider_tax_id, provider_name, client_name, company, notes, status, created_at`

// Append implements ledger.InvoiceWriter.
func (r *SQLiteRepository) Append(ctx context.Context, inv core.Invoice) (string, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Number, inv.IssueDate.ISO(), inv.PaymentDate.ISO(),
		inv.Gross.Cents, inv.IR.Cents, inv.CSRF.Cents,
		inv.ServiceCode, inv.ProviderTaxID, inv.ProviderName, inv.ClientName,
		inv.Company, inv.Notes, string(inv.Status), inv.CreatedAt.ISO())
	if err != nil {
		return "", fmt.Errorf("insert invoice: %w", err)
	}

	slog.InfoContext(ctx, "Invoice saved to SQLite",
		"id", inv.ID,
		"number", inv.Number,
		"gross_cents", inv.Gross.Cents)

	return inv.ID, nil
}

// Get implements ledger.InvoiceReader.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Invoice, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List implements ledger.InvoiceReader.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invs []core.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invs = append(invs, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invs, nil
}

// Update implements ledger.InvoiceEditor.
func (r *SQLiteRepository) Update(ctx context.Context, id string, inv core.Invoice) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET
		number = ?, issue_date = ?, payment_date = ?, gross_cents = ?,
		ir_cents = ?, csrf_cents = ?, service_code = ?, provider_tax_id = ?,
		provider_name = ?, client_name = ?, company = ?, notes = ?, status = ?
		WHERE id = ?`,
		inv.Number, inv.IssueDate.ISO(), inv.PaymentDate.ISO(), inv.Gross.Cents,
		inv.IR.Cents, inv.CSRF.Cents, inv.ServiceCode, inv.ProviderTaxID,
		inv.ProviderName, inv.ClientName, inv.Company, inv.Notes, string(inv.Status),
		id)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return requireRow(res)
}

// SetStatus implements ledger.InvoiceEditor.
func (r *SQLiteRepository) SetStatus(ctx context.Context, id string, status core.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET status = ? WHERE id = ?`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("set invoice status: %w", err)
	}
	return requireRow(res)
}

// Delete implements ledger.InvoiceEditor.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (core.Invoice, error) {
	var (
		inv                        core.Invoice
		issue, payment, createdAt  string
		gross, irCents, csrfCents  int64
		status                     string
	)
	err := row.Scan(&inv.ID, &inv.Number, &issue, &payment, &gross, &irCents, &csrfCents,
		&inv.ServiceCode, &inv.ProviderTaxID, &inv.ProviderName, &inv.ClientName,
		&inv.Company, &inv.Notes, &status, &createdAt)
	if err != nil {
		return core.Invoice{}, err
	}

	inv.IssueDate = core.ParseDate(issue)
	inv.PaymentDate = core.ParseDate(payment)
	inv.Gross = core.Money{Cents: gross}
	inv.Status = core.Status(status)
	if inv.Status == "" {
		inv.Status = core.StatusOpen
	}
	inv.CreatedAt = core.ParseDate(createdAt)
	// Stored withholdings are advisory; derived fields are always recomputed.
	inv.Recalculate()
	return inv, nil
}
