package backend

import (
	"context"
	"path/filepath"
	"testing"

	"reinf/internal/config"
	"reinf/internal/core"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"kvfile ok", Options{Type: KVFile, LedgerFilePath: "/tmp/x.json"}, false},
		{"kvfile missing path", Options{Type: KVFile}, true},
		{"sqlite ok", Options{Type: SQLite, SQLiteDBPath: "/tmp/x.db"}, false},
		{"sqlite missing path", Options{Type: SQLite}, true},
		{"unknown type", Options{Type: "sheets"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:    "kvfile",
		LedgerFilePath: "/tmp/notas.json",
		AMQPURL:        "amqp://localhost",
		AMQPExchange:   "reinf",
		AMQPQueue:      "sync_notas",
	}

	opts, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if opts.Type != KVFile {
		t.Errorf("Type = %q; want kvfile", opts.Type)
	}
	if opts.LedgerFilePath != "/tmp/notas.json" {
		t.Errorf("LedgerFilePath = %q", opts.LedgerFilePath)
	}
	if opts.AMQPQueue != "sync_notas" {
		t.Errorf("AMQPQueue = %q", opts.AMQPQueue)
	}
}

func TestFromAppConfigRejectsUnknownBackend(t *testing.T) {
	if _, err := FromAppConfig(&config.Config{DataBackend: "redis"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestCreateKVFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notas.json")

	f := NewFactory(nil)
	res, err := f.Create(Options{Type: KVFile, LedgerFilePath: path})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Repo == nil {
		t.Fatal("expected a repository")
	}
	if res.Publisher != nil {
		t.Error("expected no publisher without AMQP URL")
	}

	inv := core.Invoice{
		Number:        "1",
		IssueDate:     core.ParseDate("2025-01-10"),
		PaymentDate:   core.ParseDate("2025-01-15"),
		Gross:         core.Money{Cents: 100000},
		ProviderTaxID: "11222333000144",
		Status:        core.StatusOpen,
	}
	inv.ID = "b-1"
	inv.Recalculate()

	if _, err := res.Repo.Append(context.Background(), inv); err != nil {
		t.Fatalf("Append through backend: %v", err)
	}
	got, err := res.Repo.Get(context.Background(), "b-1")
	if err != nil {
		t.Fatalf("Get through backend: %v", err)
	}
	if got.Number != "1" {
		t.Errorf("Number = %q; want 1", got.Number)
	}
}
