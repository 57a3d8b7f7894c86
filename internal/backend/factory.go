package backend

import (
	"fmt"

	"reinf/internal/amqp"
	"reinf/internal/ledger"
	"reinf/internal/ledger/kvfile"
	"reinf/internal/log"
	"reinf/internal/services"
	"reinf/internal/storage"
)

// Result is an assembled backend: the record store, the optional publisher,
// and a cleanup to run at shutdown.
type Result struct {
	Repo      ledger.Repository
	Publisher services.Publisher
	Cleanup   func() error
}

// Factory builds record stores from options.
type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create assembles the record store named by opts, with an AMQP publisher
// when a broker URL is configured.
func (f *Factory) Create(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var (
		repo    ledger.Repository
		cleanup func() error
	)

	switch opts.Type {
	case KVFile:
		store, err := kvfile.Open(opts.LedgerFilePath)
		if err != nil {
			return nil, fmt.Errorf("open ledger file: %w", err)
		}
		repo = store
		f.logger.Info("Initialized kvfile backend", "path", opts.LedgerFilePath)

	case SQLite:
		sqliteRepo, err := storage.NewSQLiteRepository(opts.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		repo = sqliteRepo
		cleanup = sqliteRepo.Close
		f.logger.Info("Initialized sqlite backend", "db_path", opts.SQLiteDBPath)

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", opts.Type)
	}

	// The publisher is optional: without a broker the ledger still works,
	// there is just no sheet sync.
	var publisher services.Publisher
	if opts.AMQPURL != "" {
		client, err := amqp.NewClient(opts.AMQPURL, opts.AMQPExchange, opts.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without sync", log.FieldError, err)
		} else {
			publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", opts.AMQPExchange,
				"queue", opts.AMQPQueue)
		}
	}

	return &Result{
		Repo:      repo,
		Publisher: publisher,
		Cleanup:   cleanup,
	}, nil
}
