package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reinf/internal/backend"
	"reinf/internal/config"
	"reinf/internal/ledger"
)

var (
	flagBackend string
	flagFile    string
	flagDB      string
)

var rootCmd = &cobra.Command{
	Use:   "reinfctl",
	Short: "Consulta e exporta o controle de notas EFD-Reinf",
	Long: `reinfctl opera sobre o mesmo arquivo de notas (ou banco SQLite) usado
pelo servidor web: lista notas por periodo, soma os totais e gera os
relatorios em CSV, PDF ou planilha.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "record store: kvfile or sqlite (default from DATA_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&flagFile, "file", "", "path to the ledger file (kvfile backend)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "path to the database (sqlite backend)")
}

// openRepo builds the record store from env config plus flag overrides.
// The returned cleanup is never nil.
func openRepo() (ledger.Repository, func() error, error) {
	LoadEnvFile()
	cfg := config.Load()

	opts, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if flagBackend != "" {
		opts.Type = backend.Type(flagBackend)
	}
	if flagFile != "" {
		opts.LedgerFilePath = flagFile
	}
	if flagDB != "" {
		opts.SQLiteDBPath = flagDB
	}
	// The CLI never publishes sync messages.
	opts.AMQPURL = ""

	res, err := backend.NewFactory(nil).Create(opts)
	if err != nil {
		return nil, nil, err
	}

	cleanup := res.Cleanup
	if cleanup == nil {
		cleanup = func() error { return nil }
	}
	return res.Repo, cleanup, nil
}

// Execute runs the command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}
