package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reinf/internal/core"
)

var listPeriodFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista as notas, opcionalmente filtradas por periodo",
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
		if listPeriodFlag != "" {
			invs = core.FilterPeriod(invs, core.ParsePeriod(listPeriodFlag))
		}

		if len(invs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma nota encontrada.")
			return nil
		}

		today := core.Today()
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NUMERO\tDATA NOTA\tPAGAMENTO\tVALOR\tIR\tCSRF\tVENCIMENTOS\tSITUACAO")
		for _, inv := range invs {
			status := inv.Status.Label()
			if inv.IsOverdue(today) {
				status += " (vencida)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				inv.Number,
				inv.IssueDate.Display(),
				inv.PaymentDate.Display(),
				inv.Gross.String(),
				inv.IR.String(),
				inv.CSRF.String(),
				inv.DueLabel,
				status)
		}
		return w.Flush()
	},
}

func init() {
	listCmd.Flags().StringVar(&listPeriodFlag, "period", "", "reporting period, e.g. 2025-01, 01/2025 or 2025")
	rootCmd.AddCommand(listCmd)
}
