package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pocketwise/internal/core"
)

func newAddCmd(o *globalOptions) *cobra.Command {
	var d core.Draft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Long: `Record a transaction. The date defaults to today; an income without a
category is filed under "Income".

Example:
  pocketwise add --type income --amount 1000 --category Salary
  pocketwise add --type expense --amount 12.50 --category Food --note "lunch"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if d.Date == "" {
				d.Date = core.DateOf(time.Now()).String()
			}

			s, err := o.open(cmd.Context())
			if err != nil {
				return err
			}
			defer o.close(s)

			txn, err := s.Controller.Create(cmd.Context(), d)
			if err != nil {
				return err
			}
			f := core.NewFormatter(o.cfg.CurrencySymbol)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s (%s) on %s\n",
				txn.ID, txn.Type, f.Format(txn.Amount), txn.Category, txn.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&d.Type, "type", "expense", "income or expense")
	cmd.Flags().StringVar(&d.Amount, "amount", "", "positive amount (required)")
	cmd.Flags().StringVar(&d.Category, "category", "", "category label (required for expenses)")
	cmd.Flags().StringVar(&d.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&d.Note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}
