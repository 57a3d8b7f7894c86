// Package backend selects and assembles the record store behind the ledger:
// the flat key-value file (default) or SQLite, each optionally paired with
// an AMQP publisher for sheet sync.
package backend

import (
	"fmt"

	"reinf/internal/config"
)

// Type identifies a record store implementation.
type Type string

const (
	KVFile Type = "kvfile"
	SQLite Type = "sqlite"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the type names a known store.
func (t Type) IsValid() bool {
	switch t {
	case KVFile, SQLite:
		return true
	default:
		return false
	}
}

// Types returns every valid backend type.
func Types() []Type {
	return []Type{KVFile, SQLite}
}

// Options holds what the factory needs to build a backend.
type Options struct {
	Type Type

	// kvfile
	LedgerFilePath string

	// sqlite
	SQLiteDBPath string

	// AMQP publisher, optional for either store
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// FromAppConfig converts the application config into factory options.
func FromAppConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return Options{}, fmt.Errorf("app config is nil")
	}

	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return Options{}, fmt.Errorf("invalid backend type in config: %s", cfg.DataBackend)
	}

	return Options{
		Type:           t,
		LedgerFilePath: cfg.LedgerFilePath,
		SQLiteDBPath:   cfg.SQLiteDBPath,
		AMQPURL:        cfg.AMQPURL,
		AMQPExchange:   cfg.AMQPExchange,
		AMQPQueue:      cfg.AMQPQueue,
	}, nil
}

// Validate checks that the selected store has what it needs.
func (o Options) Validate() error {
	if !o.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", o.Type)
	}

	switch o.Type {
	case KVFile:
		if o.LedgerFilePath == "" {
			return fmt.Errorf("ledger file path is required for the kvfile backend")
		}
	case SQLite:
		if o.SQLiteDBPath == "" {
			return fmt.Errorf("database path is required for the sqlite backend")
		}
	}
	// AMQP is optional for both stores.
	return nil
}
