package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"reinf/internal/core"
)

const xlsxSheet = "Notas"

// xlsxColumns is the keyed (non-positional) column layout of the spreadsheet
// artifact: headers are looked up by name on import, so extra columns are
// additive rather than breaking.
var xlsxColumns = []string{
	"Numero", "Data Nota", "Data Pagamento", "CNPJ Prestador", "Prestador",
	"Tomador", "Valor Total", "Valor IR", "Valor CSRF", "Codigo Servico",
	"Vencimentos", "Situacao", "Abaixo do Piso", "Origem", "Observacoes",
}

// WriteXLSX writes one keyed row per invoice, including the computed
// below-floor flag and the static source marker.
func WriteXLSX(w io.Writer, invs []core.Invoice) error {
	if len(invs) == 0 {
		return ErrNoRecords
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range xlsxColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, inv := range invs {
		values := xlsxRow(inv)
		for col, h := range xlsxColumns {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(xlsxSheet, cell, values[h]); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxRow(inv core.Invoice) map[string]any {
	belowFloor := "nao"
	if inv.BothBelowFloor() {
		belowFloor = "sim"
	}
	return map[string]any{
		"Numero":         inv.Number,
		"Data Nota":      inv.IssueDate.Display(),
		"Data Pagamento": inv.PaymentDate.Display(),
		"CNPJ Prestador": core.FormatCNPJ(inv.ProviderTaxID),
		"Prestador":      inv.ProviderName,
		"Tomador":        inv.ClientName,
		"Valor Total":    inv.Gross.Decimal().InexactFloat64(),
		"Valor IR":       inv.IR.Decimal().InexactFloat64(),
		"Valor CSRF":     inv.CSRF.Decimal().InexactFloat64(),
		"Codigo Servico": inv.ServiceCode,
		"Vencimentos":    inv.DueLabel,
		"Situacao":       inv.Status.Label(),
		"Abaixo do Piso": belowFloor,
		"Origem":         "reinf",
		"Observacoes":    inv.Notes,
	}
}
