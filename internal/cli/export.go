package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reinf/internal/core"
	"reinf/internal/export"
)

var (
	exportPeriodFlag   string
	exportDetailedFlag bool
	exportOutFlag      string
	exportColumnsFlag  string
)

var exportCmd = &cobra.Command{
	Use:       "export {csv|pdf|xlsx}",
	Short:     "Gera o relatorio das notas do periodo no formato escolhido",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"csv", "pdf", "xlsx"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		repo, cleanup, err := openRepo()
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()

		invs, err := repo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listar notas: %w", err)
		}
		if exportPeriodFlag != "" {
			invs = core.FilterPeriod(invs, core.ParsePeriod(exportPeriodFlag))
		}
		if len(invs) == 0 {
			return fmt.Errorf("nenhuma nota no periodo selecionado")
		}

		columns := export.DefaultColumns()
		if exportColumnsFlag != "" {
			columns, err = export.LoadColumnsFile(exportColumnsFlag)
			if err != nil {
				return fmt.Errorf("carregar colunas: %w", err)
			}
		}
		keys := columns.Set(exportDetailedFlag)

		out := exportOutFlag
		if out == "" {
			out = defaultExportName(format)
		}

		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("criar %s: %w", out, err)
		}
		defer func() { _ = file.Close() }()

		switch format {
		case "csv":
			err = export.WriteCSV(file, invs, keys)
		case "pdf":
			label := exportPeriodFlag
			if label == "" {
				label = "todas"
			}
			err = export.WritePDF(file, invs, keys, label)
		case "xlsx":
			err = export.WriteXLSX(file, invs)
		default:
			err = fmt.Errorf("formato desconhecido: %s", format)
		}
		if err != nil {
			return fmt.Errorf("gerar %s: %w", format, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d notas exportadas para %s\n", len(invs), out)
		return nil
	},
}

func defaultExportName(format string) string {
	ref := core.ParsePeriod(exportPeriodFlag).String()
	if ref == "" {
		return "notas." + format
	}
	return "notas-" + ref + "." + format
}

func init() {
	exportCmd.Flags().StringVar(&exportPeriodFlag, "period", "", "reporting period, e.g. 2025-01, 01/2025 or 2025")
	exportCmd.Flags().BoolVar(&exportDetailedFlag, "detailed", false, "use the detailed column set")
	exportCmd.Flags().StringVar(&exportOutFlag, "out", "", "output file (default notas-<period>.<format>)")
	exportCmd.Flags().StringVar(&exportColumnsFlag, "columns", "", "YAML file overriding the column sets")
	rootCmd.AddCommand(exportCmd)
}
