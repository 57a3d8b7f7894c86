// Package export serializes a filtered, ordered invoice set into CSV, PDF and
// spreadsheet artifacts. Which columns a report carries is configuration, not
// code: the embedded columns.yaml defines the brief and detailed sets and can
// be overridden by a user-supplied file.
package export

import (
	"errors"
	"fmt"
	"os"

	_ "embed"

	"gopkg.in/yaml.v3"

	"reinf/internal/core"
)

// ErrNoRecords is returned when an export is requested over an empty filtered
// set; no artifact is produced.
var ErrNoRecords = errors.New("no records to export")

//go:embed columns.yaml
var defaultColumnsYAML []byte

// ColumnConfig names the column keys of the two report shapes.
type ColumnConfig struct {
	Brief    []string `yaml:"brief"`
	Detailed []string `yaml:"detailed"`
}

// DefaultColumns parses the embedded column sets.
func DefaultColumns() ColumnConfig {
	cfg, err := parseColumns(defaultColumnsYAML)
	if err != nil {
		// The embedded file ships with the binary; failing to parse it is a
		// packaging bug, not a runtime condition.
		panic(fmt.Sprintf("embedded columns.yaml invalid: %v", err))
	}
	return cfg
}

// LoadColumnsFile reads a column-set override from disk.
func LoadColumnsFile(path string) (ColumnConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ColumnConfig{}, fmt.Errorf("read columns file: %w", err)
	}
	cfg, err := parseColumns(data)
	if err != nil {
		return ColumnConfig{}, fmt.Errorf("parse columns file %s: %w", path, err)
	}
	return cfg, nil
}

func parseColumns(data []byte) (ColumnConfig, error) {
	var cfg ColumnConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ColumnConfig{}, err
	}
	if len(cfg.Brief) == 0 || len(cfg.Detailed) == 0 {
		return ColumnConfig{}, errors.New("both brief and detailed column sets are required")
	}
	for _, keys := range [][]string{cfg.Brief, cfg.Detailed} {
		for _, k := range keys {
			if _, ok := columnHeaders[k]; !ok {
				return ColumnConfig{}, fmt.Errorf("unknown column key %q", k)
			}
		}
	}
	return cfg, nil
}

// Set picks the detailed or brief key list.
func (c ColumnConfig) Set(detailed bool) []string {
	if detailed {
		return c.Detailed
	}
	return c.Brief
}

// columnHeaders maps column keys to their user-facing headers.
var columnHeaders = map[string]string{
	"number":          "Numero",
	"issue_date":      "Data Nota",
	"payment_date":    "Data Pagamento",
	"gross":           "Valor Total",
	"ir":              "Valor IR",
	"csrf":            "Valor CSRF",
	"service_code":    "Codigo Servico",
	"provider_tax_id": "CNPJ Prestador",
	"provider_name":   "Prestador",
	"client_name":     "Tomador",
	"company":         "Empresa",
	"due_label":       "Vencimentos",
	"status":          "Situacao",
	"notes":           "Observacoes",
}

// Headers resolves the header row for a key list.
func Headers(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = columnHeaders[k]
	}
	return out
}

// Row flattens one invoice into column values, in key order.
func Row(inv core.Invoice, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = columnValue(inv, k)
	}
	return out
}

// Rows flattens the whole set.
func Rows(invs []core.Invoice, keys []string) [][]string {
	out := make([][]string, len(invs))
	for i, inv := range invs {
		out[i] = Row(inv, keys)
	}
	return out
}

func columnValue(inv core.Invoice, key string) string {
	switch key {
	case "number":
		return inv.Number
	case "issue_date":
		return inv.IssueDate.Display()
	case "payment_date":
		return inv.PaymentDate.Display()
	case "gross":
		return inv.Gross.Plain()
	case "ir":
		return inv.IR.Plain()
	case "csrf":
		return inv.CSRF.Plain()
	case "service_code":
		return inv.ServiceCode
	case "provider_tax_id":
		return core.FormatCNPJ(inv.ProviderTaxID)
	case "provider_name":
		return inv.ProviderName
	case "client_name":
		return inv.ClientName
	case "company":
		return inv.Company
	case "due_label":
		return inv.DueLabel
	case "status":
		return inv.Status.Label()
	case "notes":
		return inv.Notes
	}
	return ""
}
