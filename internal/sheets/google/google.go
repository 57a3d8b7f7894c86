// Package google mirrors the ledger into a Google Sheets worksheet so the
// accountant can read it without running anything. Rows are keyed by invoice
// id in column A; the sync worker upserts and deletes by that key.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"reinf/internal/core"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// header is the keyed column layout of the synced worksheet.
var header = []any{
	"ID", "Numero", "Data Nota", "Data Pagamento", "CNPJ Prestador", "Prestador",
	"Tomador", "Valor Total", "Valor IR", "Valor CSRF", "Vencimentos", "Situacao",
	"Abaixo do Piso", "Origem", "Observacoes",
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "Notas"), GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE for
// auth (falls back to GOOGLE_APPLICATION_CREDENTIALS / ADC).
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Notas"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	switch {
	case serviceAccountJSON != "":
		opts = append(opts, goption.WithCredentialsJSON([]byte(serviceAccountJSON)))
	case serviceAccountFile != "":
		opts = append(opts, goption.WithCredentialsFile(serviceAccountFile))
	}
	// With neither set, the client library falls back to ADC.

	return gsheet.NewService(ctx, opts...)
}

// UpsertInvoice writes the invoice row, replacing an existing row with the
// same id or appending a new one. The header row is written on first use.
func (c *Client) UpsertInvoice(ctx context.Context, inv core.Invoice) error {
	ids, err := c.readIDColumn(ctx)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		hdrRange := fmt.Sprintf("%s!A1", c.sheetName)
		vr := &gsheet.ValueRange{Values: [][]any{header}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, hdrRange, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header row: %w", err)
		}
		ids = []string{"ID"}
	}

	row := len(ids) + 1 // append position, 1-based
	for i, id := range ids {
		if id == inv.ID {
			row = i + 1
			break
		}
	}

	rng := fmt.Sprintf("%s!A%d", c.sheetName, row)
	vr := &gsheet.ValueRange{Values: [][]any{rowValues(inv)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write invoice row: %w", err)
	}

	slog.InfoContext(ctx, "Synced invoice to sheet",
		"invoice_id", inv.ID,
		"sheet", c.sheetName,
		"row", row)
	return nil
}

// DeleteInvoice removes the row keyed by the invoice id. A missing row is not
// an error: the delete already converged.
func (c *Client) DeleteInvoice(ctx context.Context, id string) error {
	ids, err := c.readIDColumn(ctx)
	if err != nil {
		return err
	}

	rowIndex := -1
	for i, v := range ids {
		if v == id {
			rowIndex = i // 0-based
			break
		}
	}
	if rowIndex < 0 {
		slog.WarnContext(ctx, "Invoice row not found in sheet, nothing to delete", "invoice_id", id)
		return nil
	}

	sheetID, err := c.sheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete invoice row: %w", err)
	}

	slog.InfoContext(ctx, "Deleted invoice row from sheet", "invoice_id", id, "row", rowIndex+1)
	return nil
}

func (c *Client) readIDColumn(ctx context.Context) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read id column: %w", err)
	}
	ids := make([]string, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) > 0 {
			ids[i] = fmt.Sprint(row[0])
		}
	}
	return ids, nil
}

func (c *Client) sheetID(ctx context.Context) (int64, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, s := range meta.Sheets {
		if s.Properties != nil && s.Properties.Title == c.sheetName {
			return s.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.sheetName)
}

func rowValues(inv core.Invoice) []any {
	belowFloor := "nao"
	if inv.BothBelowFloor() {
		belowFloor = "sim"
	}
	return []any{
		inv.ID,
		inv.Number,
		inv.IssueDate.Display(),
		inv.PaymentDate.Display(),
		core.FormatCNPJ(inv.ProviderTaxID),
		inv.ProviderName,
		inv.ClientName,
		inv.Gross.Decimal().InexactFloat64(),
		inv.IR.Decimal().InexactFloat64(),
		inv.CSRF.Decimal().InexactFloat64(),
		inv.DueLabel,
		inv.Status.Label(),
		belowFloor,
		"reinf",
		inv.Notes,
	}
}
