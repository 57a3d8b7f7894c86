package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"reinf/internal/core"
)

var totalsPeriodFlag string

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Soma valor bruto, IR e CSRF das notas do periodo",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, cleanup, err := openRepo()
		if err != nil {
			return err
		}
		defer func() { _ = cleanup() }()

		invs, err := repo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("listar notas: %w", err)
		}
		if totalsPeriodFlag != "" {
			invs = core.FilterPeriod(invs, core.ParsePeriod(totalsPeriodFlag))
		}

		totals := core.TotalsFor(invs)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Notas:       %d\n", len(invs))
		fmt.Fprintf(out, "Valor bruto: %s\n", totals.Gross.String())
		fmt.Fprintf(out, "Valor IR:    %s\n", totals.IR.String())
		fmt.Fprintf(out, "Valor CSRF:  %s\n", totals.CSRF.String())
		return nil
	},
}

func init() {
	totalsCmd.Flags().StringVar(&totalsPeriodFlag, "period", "", "reporting period, e.g. 2025-01, 01/2025 or 2025")
	rootCmd.AddCommand(totalsCmd)
}
